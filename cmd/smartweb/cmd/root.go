package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/msto63/smartweb/pkg/core/config"
)

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "smartweb",
	Short: "SmartWeb - HTTP-Server mit SmartScript",
	Long: `SmartWeb ist ein kleiner HTTP/1.x-Server für statische Dateien,
SmartScript-Seiten und Worker.

Befehle:
  serve    - Server starten
  run      - SmartScript-Datei ausführen und Ausgabe anzeigen
  inspect  - SmartScript-Datei parsen und Struktur anzeigen
  version  - Version anzeigen`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config-Datei (default: ./configs/server.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose Output")
}

// loadConfig reads --config when given, otherwise the default locations
func loadConfig() (*config.Config, error) {
	if cfgFile != "" {
		return config.Load(cfgFile)
	}
	return config.LoadFromEnv()
}

func printError(msg string, err error) {
	fmt.Fprintf(os.Stderr, "Fehler: %s: %v\n", msg, err)
}
