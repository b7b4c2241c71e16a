package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

//
// -----------------------------------------------------------------------------
// Shared fixtures
// -----------------------------------------------------------------------------

// sampleManifestYAML declares the Logger/Repository scenario and a handler
// collection with two declared elements and one generic one.
func sampleManifestYAML() string {
	return `
types:
  - {name: User}
  - {name: Order}
  - {name: Logger, interface: true}
  - {name: SystemClock}
  - {name: Clock}
generics:
  - {name: Repository, arity: 1, interface: true}
  - {name: SqlRepository, arity: 1}
  - {name: Handler, arity: 1, interface: true}
  - {name: AuditHandler, arity: 1}
  - {name: BillingHandler, arity: 1}
services:
  - {contract: Logger, kind: delegate, lifetime: singleton, value: console}
  - {contract: Clock, implementation: SystemClock, lifetime: singleton}
  - {contract: "Repository[]", implementation: "SqlRepository[]", lifetime: transient}
  - {contract: "Handler[Order]", implementation: "AuditHandler[Order]", lifetime: scoped}
  - {contract: "Handler[]", implementation: "BillingHandler[]", lifetime: scoped}
`
}

// interceptConfigYAML proxies every Sql* implementation and enables metrics.
func interceptConfigYAML() string {
	return `
log_level: error
intercept:
  include: ["Sql*"]
metrics:
  enabled: true
  namespace: cli
`
}

//
// -----------------------------------------------------------------------------
// Small helpers
// -----------------------------------------------------------------------------

// writeTempFile writes a file under dir/name and returns its full path.
func writeTempFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

// readFileString reads a file and returns its contents as string (fatal on error).
func readFileString(t *testing.T, p string) string {
	t.Helper()
	b, err := os.ReadFile(p)
	require.NoError(t, err)
	return string(b)
}

// runCLI runs the command with an isolated manifest and no .env lookup.
func runCLI(t *testing.T, dir string, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	manifestPath := writeTempFile(t, dir, "services.yaml", sampleManifestYAML())
	full := append([]string{"--manifest", manifestPath, "--env-file", filepath.Join(dir, "none.env")}, args...)

	var out, errOut bytes.Buffer
	code = run(full, &out, &errOut)
	return code, out.String(), errOut.String()
}
