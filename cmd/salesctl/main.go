package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"salesanalytics/internal/config"
	"salesanalytics/internal/importer"
	"salesanalytics/internal/session"
	"salesanalytics/internal/store"
)

// globalOptions 所有子命令共享的存储参数
type globalOptions struct {
	configPath string
	driver     string
	dsn        string
	dataDir    string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "salesctl",
		Short:         "Sales analytics CLI: import workbooks, inspect customers and records",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to config.toml (default: next to the executable)")
	rootCmd.PersistentFlags().StringVar(&opts.driver, "driver", "", "Store driver override: sqlite3|sqlite|postgres|file|memory")
	rootCmd.PersistentFlags().StringVar(&opts.dsn, "dsn", "", "Store DSN override")
	rootCmd.PersistentFlags().StringVar(&opts.dataDir, "data-dir", "", "Data directory override")

	rootCmd.AddCommand(
		newImportCmd(opts),
		newCustomersCmd(opts),
		newRecordsCmd(opts),
		newExportCmd(opts),
		newStatusCmd(opts),
		newClearCmd(opts),
		newImportsCmd(opts),
	)
	return rootCmd
}

// workspace 打开的存储与控制器
type workspace struct {
	cfg     *config.AppConfig
	backend store.Backend
	ctrl    *session.Controller
}

func (w *workspace) Close() error {
	return w.backend.Close()
}

// open 加载配置、应用命令行覆盖并打开存储
func (o *globalOptions) open() (*workspace, error) {
	var (
		cfg *config.AppConfig
		err error
	)
	if o.configPath != "" {
		cfg, _, err = config.LoadFrom(o.configPath)
	} else {
		cfg, _, err = config.LoadConfigWithInfo()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if o.driver != "" {
		cfg.Store.Driver = o.driver
	}
	if o.dsn != "" {
		cfg.Store.DSN = o.dsn
	}
	if o.dataDir != "" {
		cfg.Data.DataDir = o.dataDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	dataDir, err := config.EnsureDataDir(cfg)
	if err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	backend, err := store.Open(config.StoreOptions(cfg, dataDir))
	if err != nil {
		return nil, err
	}

	coordinator := importer.NewCoordinator(backend, importer.NewExclusionSet(cfg.Ingest.ExcludeCustomers...))
	return &workspace{
		cfg:     cfg,
		backend: backend,
		ctrl:    session.New(backend, coordinator),
	}, nil
}
