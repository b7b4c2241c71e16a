// Package svctable is a service registry and resolution engine for
// dependency-injection containers.
//
// The repository is organized as:
//
//   - di: the service table. Descriptors, population with proxy wrapping,
//     lookup with generic specialization and collection aggregation.
//   - intercept: a glob rule di.Validator.
//   - proxy: a naming di.ProxyFactory and an LRU/singleflight memoizer.
//   - metrics: a Prometheus di.Observer.
//   - config: YAML + .env + SVCTABLE_* configuration.
//   - manifest: YAML service manifests and type expressions.
//   - cmd/svctable: a CLI that loads a manifest and reports resolutions.
//   - examples/basic: a runnable walkthrough.
//
// The table answers "which registration satisfies this contract"; building
// instances and caching them per lifetime is left to the hosting container.
package svctable
