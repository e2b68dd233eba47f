package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"record-serializer/internal/config"
	"record-serializer/internal/engine"
	"record-serializer/internal/logger"
	"record-serializer/internal/mapping"
	"record-serializer/internal/metrics"
	"record-serializer/internal/record"
	"record-serializer/internal/record/gormstore"
	"record-serializer/internal/record/memstore"
	"record-serializer/internal/transform"
)

var (
	configPath   string
	mappingsPath string
)

var errNoMappings = errors.New("no mapping file: use --mappings or SERIALIZER_MAPPINGS")

var rootCmd = &cobra.Command{
	Use:           "serializer",
	Short:         "Convert records to nested JSON and back through declarative mappings",
	SilenceUsage:  true,
	SilenceErrors: false,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to the application config file")
	rootCmd.PersistentFlags().StringVarP(&mappingsPath, "mappings", "m", "", "Path to the mapping file")

	rootCmd.AddCommand(validateCmd, schemaCmd, exportCmd, importCmd, previewCmd, populateCmd)
}

// app holds everything a command needs once configuration is loaded.
type app struct {
	cfg      *config.Config
	log      zerolog.Logger
	file     *mapping.File
	set      *mapping.Set
	store    record.Store
	registry *prometheus.Registry
	facade   *transform.Facade
	close    func() error
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, zerolog.Nop(), err
	}

	if mappingsPath != "" {
		cfg.Mappings = mappingsPath
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})

	if cfg.Mappings == "" {
		return nil, log, errNoMappings
	}

	return cfg, log, nil
}

func setup() (*app, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	mf, err := mapping.LoadFile(cfg.Mappings)
	if err != nil {
		return nil, err
	}

	set, err := mapping.Build(mf)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		file:     mf,
		set:      set,
		registry: prometheus.NewRegistry(),
		close:    func() error { return nil },
	}

	switch cfg.Store.Driver {
	case config.DriverMemory:
		a.store = memstore.New(set.Catalog())
	default:
		s, err := gormstore.Open(cfg.Store.Driver, cfg.Store.DSN, set.Catalog())
		if err != nil {
			return nil, err
		}

		a.store = s
		a.close = s.Close
	}

	log.Debug().
		Str("driver", cfg.Store.Driver).
		Str("mappings", cfg.Mappings).
		Stringer("client_id", cfg.ClientID).
		Msg("configured")

	m := metrics.New(a.registry, cfg.ClientID)
	eng := engine.New(a.store, engine.WithLogger(log))
	a.facade = transform.New(set, eng, transform.WithLogger(log), transform.WithMetrics(m))

	return a, nil
}

// shutdown pushes metrics when a Pushgateway is configured and closes the
// store.
func (a *app) shutdown(ctx context.Context) {
	if a.cfg.Metrics.PushURL != "" {
		if err := metrics.Push(ctx, a.cfg.Metrics.PushURL, a.cfg.Metrics.Job, a.registry); err != nil {
			a.log.Warn().Err(err).Msg("failed to push metrics")
		}
	}

	if err := a.close(); err != nil {
		a.log.Warn().Err(err).Msg("failed to close store")
	}
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return data, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	out, err := transform.Encode(v, true)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))

	return err
}
