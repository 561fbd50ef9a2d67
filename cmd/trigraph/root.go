package main

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/aleksaelezovic/trigraph/internal/config"
	"github.com/aleksaelezovic/trigraph/internal/encoding"
	"github.com/aleksaelezovic/trigraph/internal/observability"
	"github.com/aleksaelezovic/trigraph/internal/observe"
	"github.com/aleksaelezovic/trigraph/internal/storage"
	"github.com/aleksaelezovic/trigraph/pkg/graph"
	"github.com/aleksaelezovic/trigraph/pkg/graph/inmem"
	"github.com/aleksaelezovic/trigraph/pkg/graph/syncgraph"
	"github.com/aleksaelezovic/trigraph/pkg/store"
)

// app carries the state one command invocation shares between its hooks.
type app struct {
	v        *viper.Viper
	cfgFile  string
	cfg      *config.Config
	logger   *zap.Logger
	registry *prometheus.Registry
	graph    graph.MutableGraph
	close    func() error
}

func newRootCmd() *cobra.Command {
	a := &app{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:           "trigraph",
		Short:         "trigraph stores and queries RDF triples.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.initializeConfig(); err != nil {
				return err
			}
			a.logger = observability.NewLogger(a.cfg.Logger, zapcore.AddSync(cmd.ErrOrStderr()))
			if err := a.openGraph(); err != nil {
				_ = a.closeGraph()
				return err
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.shutdown(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&a.cfgFile, "config", "c", "", "config file (default is ./config.yaml)")
	flags.String("backend", config.BackendIndexed, "graph backend: memory, indexed or badger")
	flags.String("db", "./trigraph_data", "badger database directory")
	flags.String("log-level", "info", "log level")
	flags.Bool("metrics", false, "print accessor metrics on exit")

	_ = a.v.BindPFlag("storage.backend", flags.Lookup("backend"))
	_ = a.v.BindPFlag("storage.path", flags.Lookup("db"))
	_ = a.v.BindPFlag("logger.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("metrics.enabled", flags.Lookup("metrics"))

	rootCmd.AddCommand(
		newDemoCmd(a),
		newLoadCmd(a),
		newMatchCmd(a),
		newInsertCmd(a),
		newRemoveCmd(a),
		newRemoveMatchingCmd(a),
		newRetainCmd(a),
		newCountCmd(a),
	)
	return rootCmd
}

// initializeConfig reads the config file and TRIGRAPH_* variables.
func (a *app) initializeConfig() error {
	config.SetDefaults(a.v)
	if a.cfgFile != "" {
		a.v.SetConfigFile(a.cfgFile)
	} else {
		a.v.AddConfigPath(".")
		a.v.SetConfigName("config")
		a.v.SetConfigType("yaml")
	}
	config.BindEnv(a.v)

	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg, err := config.NewConfigFromViper(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// openGraph builds the configured backend with its wrappers.
func (a *app) openGraph() error {
	var g graph.MutableGraph
	a.close = func() error { return nil }

	switch a.cfg.Storage.Backend {
	case config.BackendMemory:
		g = inmem.NewSliceGraph()
	case config.BackendIndexed:
		g = inmem.NewIndexedGraph()
	case config.BackendBadger:
		st, err := storage.OpenBadgerStorage(a.cfg.Storage.Path, storage.Options{
			SyncWrites: a.cfg.Storage.SyncWrites,
			Logger:     a.logger,
		})
		if err != nil {
			return err
		}
		ts := store.NewTripleStore(st, encoding.NewTermEncoder(), encoding.NewTermDecoder(),
			store.WithLogger(a.logger),
			store.WithBatchSize(a.cfg.Storage.BatchSize))
		g, a.close = ts, ts.Close
	}
	a.logger.Debug("opened graph",
		zap.String("backend", a.cfg.Storage.Backend),
		zap.Bool("set", graph.IsSet(g)),
		zap.Stringer("iteration", graph.ModeOf(g)))

	g = syncgraph.Wrap(g)
	if a.cfg.Metrics.Enabled {
		a.registry = prometheus.NewRegistry()
		metrics, err := observe.NewMetrics(a.registry)
		if err != nil {
			return err
		}
		g = observe.Wrap(g, metrics, a.logger)
	}
	a.graph = g
	return nil
}

func (a *app) shutdown(cmd *cobra.Command) error {
	defer func() { _ = a.logger.Sync() }()

	if a.registry != nil {
		families, err := a.registry.Gather()
		if err != nil {
			return fmt.Errorf("failed to gather metrics: %w", err)
		}
		for _, mf := range families {
			if _, err := expfmt.MetricFamilyToText(cmd.ErrOrStderr(), mf); err != nil {
				return err
			}
		}
	}
	return a.closeGraph()
}

// closeGraph releases the backend once.
func (a *app) closeGraph() error {
	if a.close == nil {
		return nil
	}
	closeFn := a.close
	a.close = nil
	if err := closeFn(); err != nil {
		return fmt.Errorf("failed to close graph: %w", err)
	}
	return nil
}

// run adapts a command body so the backend is released when it fails;
// cobra skips the post-run hook on error.
func (a *app) run(body func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := body(cmd, args); err != nil {
			_ = a.closeGraph()
			return err
		}
		return nil
	}
}
