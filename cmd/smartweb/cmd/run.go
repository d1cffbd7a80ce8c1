package cmd

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/msto63/smartweb/internal/smartscript/executor"
	"github.com/msto63/smartweb/internal/smartscript/parser"
	"github.com/msto63/smartweb/internal/web"
	"github.com/msto63/smartweb/pkg/core/logging"
)

var (
	runParams     []string
	runPersistent []string
	runHeader     bool
)

var runCmd = &cobra.Command{
	Use:   "run <datei>",
	Short: "Führt eine SmartScript-Datei aus",
	Long: `Führt eine SmartScript-Datei ohne Server aus und schreibt das
Ergebnis auf die Standardausgabe.

Beispiele:
  smartweb run webroot/scripts/osnovni.script
  smartweb run webroot/scripts/zbrajanje.script --param a=4 --param b=9
  smartweb run page.script --header`,
	Args: cobra.ExactArgs(1),
	RunE: runScript,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringArrayVar(&runParams, "param", nil, "Request-Parameter name=wert (mehrfach)")
	runCmd.Flags().StringArrayVar(&runPersistent, "persistent", nil, "Persistenter Parameter name=wert (mehrfach)")
	runCmd.Flags().BoolVar(&runHeader, "header", false, "HTTP-Header mit ausgeben")
}

func runScript(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		printError("Datei nicht gelesen", err)
		return err
	}

	doc, err := parser.Parse(string(data))
	if err != nil {
		printError("Parsen fehlgeschlagen", err)
		return err
	}

	params, err := parseAssignments(runParams)
	if err != nil {
		return err
	}
	persistentValues, err := parseAssignments(runPersistent)
	if err != nil {
		return err
	}
	persistent := web.NewParamStore()
	for name, value := range persistentValues {
		persistent.Set(name, value)
	}

	logger := logging.NewNop()
	if verbose {
		logger = logging.NewLogger(logging.LoggerConfig{ServiceName: "smartweb-run", Level: "debug", Format: "text"})
	}

	var out bytes.Buffer
	rc := web.NewRequestContext(&out, params, persistent, nil)
	if err := executor.New(doc, rc, executor.Options{Logger: logger}).Execute(); err != nil {
		printError("Ausführung fehlgeschlagen", err)
		return err
	}
	if err := rc.WriteHeader(); err != nil {
		return err
	}

	result := out.Bytes()
	if !runHeader {
		if i := bytes.Index(result, []byte("\r\n\r\n")); i >= 0 {
			result = result[i+4:]
		}
	}
	_, err = os.Stdout.Write(result)
	return err
}

func parseAssignments(pairs []string) (map[string]string, error) {
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			err := fmt.Errorf("ungültiger Parameter %q, erwartet name=wert", pair)
			printError("Parameter", err)
			return nil, err
		}
		values[name] = value
	}
	return values, nil
}
