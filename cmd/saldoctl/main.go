package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"saldo/internal/backend"
	"saldo/internal/cli"
	"saldo/internal/config"
	"saldo/internal/core"
	"saldo/internal/format"
	"saldo/internal/ledger"
	"saldo/internal/log"
)

// app carries what every subcommand needs once the root command has loaded
// configuration.
type app struct {
	cfg       *config.Config
	logger    *log.Logger
	formatter *format.Formatter
	labels    format.Labels
	catalog   *core.Catalog
	now       func() time.Time

	// flags
	owner       string
	backendType string
	language    string
	currency    string

	// newBackend is replaced in tests.
	newBackend func(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.Result, error)
}

func newApp() *app {
	return &app{
		catalog:    core.DefaultCatalog(),
		now:        time.Now,
		newBackend: createBackend,
	}
}

func createBackend(ctx context.Context, cfg *config.Config, logger *log.Logger) (*backend.Result, error) {
	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	return backend.NewFactory(logger).CreateBackend(ctx, backendCfg)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "saldoctl",
		Short: "Personal ledger from the command line",
		Long: `saldoctl reads and edits one owner's ledger on the configured backend
(memory, sqlite or sheets) and prints derived reports.

Configuration comes from the environment and .env, like the server; flags
override it.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}

	root.PersistentFlags().StringVar(&a.owner, "owner", "", "owner id (default: OWNER_ID)")
	root.PersistentFlags().StringVar(&a.backendType, "backend", "",
		"data backend: "+strings.Join(backend.GetBackendTypeStrings(), ", ")+" (default: DATA_BACKEND)")
	root.PersistentFlags().StringVar(&a.language, "lang", "", "label language: en or es (default: LANGUAGE)")
	root.PersistentFlags().StringVar(&a.currency, "currency", "", "ISO 4217 currency code (default: CURRENCY)")

	root.AddCommand(listCmd(a))
	root.AddCommand(addCmd(a))
	root.AddCommand(deleteCmd(a))
	root.AddCommand(budgetCmd(a))
	root.AddCommand(reportCmd(a))
	root.AddCommand(categoriesCmd(a))

	return root
}

func (a *app) setup(_ *cobra.Command, _ []string) error {
	if err := cli.LoadEnvFile(); err != nil {
		return err
	}

	cfg := config.Load()
	if a.owner != "" {
		cfg.OwnerID = a.owner
	}
	if a.backendType != "" {
		cfg.DataBackend = a.backendType
	}
	if a.language != "" {
		cfg.Language = a.language
	}
	if a.currency != "" {
		cfg.Currency = a.currency
	}
	// The CLI always acts for one explicit owner.
	cfg.OwnerHeader = ""
	if err := cfg.Validate(); err != nil {
		return err
	}

	formatter, err := format.NewFormatter(cfg.Currency, cfg.Language)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.logger = cli.SetupLogger(log.ComponentCLI, cfg.LogLevel, os.Stderr)
	a.formatter = formatter
	a.labels = format.NewLabels(cfg.Language)
	return nil
}

// session opens the backend and loads the owner's ledger. The returned
// function releases the backend.
func (a *app) session(ctx context.Context) (*ledger.Store, func(), error) {
	result, err := a.newBackend(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize backend: %w", err)
	}
	release := func() {
		if err := result.Close(); err != nil {
			a.logger.Error("Backend cleanup error", log.FieldError, err)
		}
	}

	st := ledger.New(a.cfg.OwnerID, result.Store,
		ledger.WithCatalog(a.catalog),
		ledger.WithLogger(a.logger))
	if err := st.Load(ctx); err != nil {
		release()
		return nil, nil, fmt.Errorf("failed to load ledger: %w", err)
	}
	return st, release, nil
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(newApp()).ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", describeError(err))
		os.Exit(1)
	}
}

// describeError prefixes err with its kind so scripts can tell a rejected
// input from a backend outage.
func describeError(err error) string {
	switch core.Kind(err) {
	case core.KindValidation:
		return "invalid input: " + err.Error()
	case core.KindAuthorization:
		return "not allowed: " + err.Error()
	case core.KindPersistence:
		return "backend unavailable: " + err.Error()
	default:
		return err.Error()
	}
}
