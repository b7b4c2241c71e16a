// cmd/svctable/main.go
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sghaida/svctable/config"
	"github.com/sghaida/svctable/di"
	"github.com/sghaida/svctable/intercept"
	"github.com/sghaida/svctable/manifest"
	"github.com/sghaida/svctable/metrics"
	"github.com/sghaida/svctable/proxy"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
)

// app is the state shared by every subcommand once flags are parsed.
type app struct {
	cfg      config.Config
	log      *zap.Logger
	manifest *manifest.Manifest
	table    *di.Table
	metrics  *metrics.Collector
}

type rootFlags struct {
	manifest string
	config   string
	envFiles []string
	out      string
}

// run executes the CLI and returns an exit code.
// It exists separately from main to allow unit testing without os.Exit.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdout)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(stderr, "error:", err)
		return exitError
	}
	return exitOK
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	var (
		flags rootFlags
		a     app
	)

	root := &cobra.Command{
		Use:   "svctable",
		Short: "Inspect how a service manifest resolves",
		Long: `svctable loads a YAML service manifest into a service table and answers
which registration satisfies a contract, including generic specialization,
collection aggregation and proxy wrapping.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			loaded, err := setup(flags)
			if err != nil {
				return err
			}
			a = *loaded
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&flags.manifest, "manifest", "m", "", "path to the service manifest (YAML)")
	pf.StringVarP(&flags.config, "config", "c", "", "path to the svctable config (YAML)")
	pf.StringSliceVar(&flags.envFiles, "env-file", []string{".env"}, ".env files to read SVCTABLE_* overrides from")
	pf.StringVarP(&flags.out, "out", "o", "", "also write the report to this file")
	_ = root.MarkPersistentFlagRequired("manifest")

	emit := func(render func(*bytes.Buffer) error) error {
		var buf bytes.Buffer
		if err := render(&buf); err != nil {
			return err
		}
		if a.metrics != nil {
			if err := renderMetrics(&buf, a.metrics); err != nil {
				return err
			}
		}
		if _, err := stdout.Write(buf.Bytes()); err != nil {
			return err
		}
		if flags.out != "" {
			if err := writeFileAtomic(flags.out, buf.Bytes(), 0o644); err != nil {
				return fmt.Errorf("writing report: %w", err)
			}
		}
		return nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "resolve TYPE...",
			Short: "Show the descriptor each contract resolves to",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return emit(func(buf *bytes.Buffer) error { return renderResolve(buf, &a, args) })
			},
		},
		&cobra.Command{
			Use:   "contains TYPE...",
			Short: "Report whether each contract can be resolved",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(_ *cobra.Command, args []string) error {
				return emit(func(buf *bytes.Buffer) error { return renderContains(buf, &a, args) })
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List the registrations held by the table",
			Args:  cobra.NoArgs,
			RunE: func(*cobra.Command, []string) error {
				return emit(func(buf *bytes.Buffer) error { return renderList(buf, &a) })
			},
		},
	)
	return root
}

// setup loads configuration and the manifest and populates the table.
func setup(flags rootFlags) (*app, error) {
	if strings.TrimSpace(flags.manifest) == "" {
		return nil, errors.New("--manifest is required")
	}

	cfg, err := config.Load(flags.config, flags.envFiles...)
	if err != nil {
		return nil, err
	}
	logger, err := cfg.Logger()
	if err != nil {
		return nil, err
	}

	m, err := manifest.Load(flags.manifest)
	if err != nil {
		return nil, err
	}

	table, collector, err := buildTable(cfg, logger)
	if err != nil {
		return nil, err
	}
	if err := table.Populate(m.Descriptors()); err != nil {
		return nil, err
	}
	logger.Debug("manifest loaded",
		zap.String("path", flags.manifest),
		zap.Int("services", len(m.Services)),
		zap.Bool("interception", cfg.Interception()),
	)

	return &app{cfg: cfg, log: logger, manifest: m, table: table, metrics: collector}, nil
}

// buildTable wires the optional collaborators selected by cfg.
func buildTable(cfg config.Config, logger *zap.Logger) (*di.Table, *metrics.Collector, error) {
	opts := []di.Option{di.WithLogger(logger)}

	if cfg.Interception() {
		v, err := intercept.New(cfg.Intercept)
		if err != nil {
			return nil, nil, err
		}
		factory, err := proxy.Memoize(proxy.Factory{}, cfg.Proxy.CacheSize)
		if err != nil {
			return nil, nil, err
		}
		opts = append(opts, di.WithInterception(v, factory))
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(cfg.Metrics.Namespace)
		opts = append(opts, di.WithObserver(collector))
	}

	return di.New(opts...), collector, nil
}
