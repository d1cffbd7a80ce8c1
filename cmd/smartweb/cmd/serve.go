package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/smartweb/internal/web/accesslog"
	"github.com/msto63/smartweb/internal/web/server"
	"github.com/msto63/smartweb/internal/web/workers"
	"github.com/msto63/smartweb/pkg/core/health"
	"github.com/msto63/smartweb/pkg/core/logging"
	"github.com/msto63/smartweb/pkg/core/version"
)

var (
	servePort    int
	serveDocRoot string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Startet den HTTP-Server",
	Long: `Startet den SmartWeb HTTP-Server.

Die Konfiguration wird aus --config, SMARTWEB_CONFIG oder
./configs/server.toml gelesen.

Beispiele:
  smartweb serve
  smartweb serve --config configs/server.yaml
  smartweb serve --port 8080 --root ./webroot`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port (überschreibt die Konfiguration)")
	serveCmd.Flags().StringVar(&serveDocRoot, "root", "", "Dokumentenverzeichnis (überschreibt die Konfiguration)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		printError("Config nicht geladen", err)
		return err
	}
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if serveDocRoot != "" {
		cfg.Server.DocumentRoot = serveDocRoot
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	logger := logging.NewLogger(logging.LoggerConfig{
		ServiceName: "smartweb",
		Level:       level,
		Format:      cfg.Logging.Format,
	})
	defer func() { _ = logger.Sync() }()

	opts := server.Options{Logger: logger}
	var lister workers.RecentLister
	if cfg.Server.AccessLog != "" {
		store, err := accesslog.Open(cfg.Server.AccessLog)
		if err != nil {
			printError("Access-Log nicht geöffnet", err)
			return err
		}
		defer store.Close()
		opts.AccessLog = store
		lister = store
	}
	registry := workers.Default(lister)
	checks := health.NewRegistry("smartweb", version.Platform)
	registry.MustRegister("Status", workers.StatusWorker{Health: checks})
	opts.Workers = registry

	srv, err := server.New(cfg, opts)
	if err != nil {
		printError("Server nicht erstellt", err)
		return err
	}

	checks.Register("docroot", health.DirCheck(cfg.Server.DocumentRoot))
	checks.Register("sessions", health.CountCheck("sessions", func(ctx context.Context) (int64, error) {
		return int64(srv.Sessions().Len()), nil
	}))
	if store, ok := opts.AccessLog.(*accesslog.Store); ok {
		checks.Register("accesslog", health.CountCheck("entries", store.Count))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx); err != nil {
		printError("Server nicht gestartet", err)
		return err
	}
	fmt.Printf("SmartWeb läuft auf http://%s/ (Strg+C zum Beenden)\n", srv.Address())

	waitErr := make(chan error, 1)
	go func() { waitErr <- srv.Wait() }()

	select {
	case <-ctx.Done():
	case err := <-waitErr:
		if err != nil {
			printError("Server abgebrochen", err)
			return err
		}
	}
	fmt.Println("\nBeende Server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Stop(shutdownCtx); err != nil {
		printError("Server nicht sauber beendet", err)
		return err
	}
	fmt.Println("Server beendet.")
	return nil
}
