package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/virtmock/virtmock/internal/storage"
	"github.com/virtmock/virtmock/pkg/config"
	"github.com/virtmock/virtmock/pkg/engine"
	"github.com/virtmock/virtmock/pkg/event"
	"github.com/virtmock/virtmock/pkg/logging"
	"github.com/virtmock/virtmock/pkg/metrics"
	"github.com/virtmock/virtmock/pkg/script"
)

var (
	serveConfigFile string
	serveAddr       string
	serveMountPath  string
	serveMocksDir   string
	serveCORS       bool
	serveLogLevel   string
	serveLogFormat  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the mock server",
	Long: `Start the mock server.

Service fixtures are loaded from the mocks directory at startup. Each
fixture file declares one service with its operations and responses.`,
	Example: `  # Start with defaults on :8080
  virtmock serve --mocks ./mocks/

  # Start from a configuration file
  virtmock serve --config virtmock.yaml

  # Custom mount path and CORS preflight handling
  virtmock serve --mocks ./mocks/ --mount-path /api --cors`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVarP(&serveConfigFile, "config", "c", "", "Path to YAML configuration file")
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default :8080)")
	serveCmd.Flags().StringVar(&serveMountPath, "mount-path", "", "URL prefix mocks are served under (default /rest)")
	serveCmd.Flags().StringVarP(&serveMocksDir, "mocks", "m", "", "Directory of service fixture files")
	serveCmd.Flags().BoolVar(&serveCORS, "cors", false, "Answer unmatched OPTIONS requests with a CORS preflight")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	serveCmd.Flags().StringVar(&serveLogFormat, "log-format", "", "Log format (text, json)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadServeConfig(cmd)
	if err != nil {
		return err
	}

	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: logging.ParseFormat(cfg.Log.Format),
	})

	services := storage.NewInMemoryServiceStore()
	responses := storage.NewInMemoryResponseStore()

	if cfg.MocksDir != "" {
		fixtures, err := config.LoadFixturesDir(cfg.MocksDir)
		if err != nil {
			return fmt.Errorf("failed to load mock fixtures: %w", err)
		}
		for _, fixture := range fixtures {
			fixture.RegisterInto(services, responses)
		}
		log.Info("loaded mock fixtures",
			"dir", cfg.MocksDir,
			"services", services.Count(),
			"responses", responses.Count(),
		)
	} else {
		log.Warn("no mocks directory configured, starting with an empty registry")
	}

	m := metrics.New()
	publisher := event.NewAsyncPublisher(256, log, event.NewLogSink(log), m)
	defer publisher.Close()

	handler := engine.NewHandler(services, responses)
	handler.SetLogger(log)
	handler.SetScriptEvaluator(script.New())
	handler.SetPublisher(publisher)
	handler.SetMetrics(m)
	handler.SetMountPath(cfg.MountPath)
	handler.SetCORSPolicy(cfg.EnableCORSPolicy)

	server := engine.NewServer(cfg.Addr, cfg.MountPath, handler, m, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}

// loadServeConfig builds the effective configuration: file values when a
// config file is given, overridden by any flag set on the command line.
func loadServeConfig(cmd *cobra.Command) (config.Config, error) {
	cfg := config.Default()
	if serveConfigFile != "" {
		loaded, err := config.LoadFromFile(serveConfigFile)
		if err != nil {
			return cfg, err
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("addr") {
		cfg.Addr = serveAddr
	}
	if cmd.Flags().Changed("mount-path") {
		cfg.MountPath = serveMountPath
	}
	if cmd.Flags().Changed("mocks") {
		cfg.MocksDir = serveMocksDir
	}
	if cmd.Flags().Changed("cors") {
		cfg.EnableCORSPolicy = serveCORS
	}
	if cmd.Flags().Changed("log-level") {
		cfg.Log.Level = serveLogLevel
	}
	if cmd.Flags().Changed("log-format") {
		cfg.Log.Format = serveLogFormat
	}
	return cfg, nil
}
