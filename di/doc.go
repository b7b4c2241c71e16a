// Package di provides a service registry and resolution engine.
//
// A Table maps contract types to the registrations (Descriptors) that satisfy
// them and answers, for any requested contract, which registration wins:
//
//   - Plain contracts: the most recently registered descriptor wins. Earlier
//     registrations are kept and surface through collection contracts.
//   - Closed generic contracts such as Repository[User]: the latest open
//     registration of Repository ($0 => SqlRepository[$0]) is specialized on
//     demand and cached.
//   - Collection contracts (Enumerable[T], ManyEnumerable[T]): every
//     registration of T, followed by every specializable open registration of
//     T's definition, aggregated once and cached.
//
// Registrations may be wrapped for interception while they enter the table:
// a Validator decides whether an implementation qualifies and a ProxyFactory
// supplies the proxy type. Both are external collaborators.
//
// The package does not construct instances or manage lifetimes. It describes
// what to build; the hosting container builds it.
//
// Types
//
// Go cannot close generic types at run time, so the table works on its own
// Type values. Go types enter through TypeOf, synthetic types through Named,
// and generic definitions through Define:
//
//	var (
//		Logger        = di.TypeOf[Logger]()
//		Repository    = di.Define("Repository", 1, di.AsInterface())
//		SqlRepository = di.Define("SqlRepository", 1)
//	)
//
//	table := di.New()
//	_ = table.Populate([]*di.Descriptor{
//		di.NewDelegate(Logger, di.Singleton, newLogger),
//		di.NewType(Repository.Open(), SqlRepository.Open(), di.Transient),
//	})
//
//	d, ok, err := table.TryGetService(Repository.Of(di.TypeOf[User]()))
//	// d: type(Repository[User] => SqlRepository[User], transient)
//
// Alias ties a compiled instantiation (Repository[User] as a Go type) to the
// table's Type so containers can construct it through reflection.
//
// Concurrency
//
// Tables are safe for concurrent use. Reads are lock-free. Two goroutines may
// specialize the same contract at once; the first cached result wins and both
// results are Equivalent, so callers must compare descriptors with
// Equivalent, not ==.
//
// Import
//
//	"github.com/sghaida/svctable/di"
package di
