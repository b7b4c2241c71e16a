// Command svctable loads a service manifest into a service table and reports
// how contracts resolve.
//
// Usage
//
//	svctable --manifest services.yaml [--config svctable.yaml] [--env-file .env] [--out report.txt] <command>
//
// Commands
//
//	resolve TYPE...    winning descriptor per contract (origin, implementation,
//	                   lifetime, collection elements)
//	contains TYPE...   whether each contract can be resolved
//	list               registrations held by the table, after proxy wrapping
//
// TYPE is a type expression over the names the manifest declares:
//
//	Logger
//	Repository[User]
//	Enumerable[Handler[Order]]
//
// Configuration
//
// The config file selects interception rules, proxy cache size, metrics and
// logging:
//
//	environment: development
//	log_level: debug
//	proxy:
//	  cache_size: 256
//	intercept:
//	  include: ["Sql*"]
//	  exclude: ["*Fake*"]
//	metrics:
//	  enabled: true
//	  namespace: svctable
//
// Every key can be overridden with SVCTABLE_* variables (SVCTABLE_LOG_LEVEL,
// SVCTABLE_INTERCEPT_INCLUDE as a comma-separated list, ...), either from the
// process environment or from --env-file.
//
// When metrics are enabled the report ends with the table's counters.
//
// Output
//
// The report is printed to stdout. With --out it is also written atomically
// (temp file + rename) to the given path.
package main
