// Command hackvm translates VM programs into Hack assembly and runs them.
package main

import (
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/hackvm/codegen"
)

var logLevel string

var rootCmd = &cobra.Command{
	Use:   "hackvm",
	Short: "Translator from VM code to Hack assembly",
	Long: `Hackvm translates programs written for the stack-based virtual machine
into Hack assembly. Each .vm file is one unit; a directory stands for all of
its .vm files. When several units are linked together the program starts
with a bootstrap that sets up the stack and calls Sys.init.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := parseLevel(logLevel)
		if err != nil {
			return err
		}

		handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
		})
		slog.SetDefault(slog.New(handler))

		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn",
		"log level: debug, info, trace, warn or error")
}

// parseLevel maps a level name to a slog level. Trace records sit above
// Info, so "info" shows them too.
func parseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "trace":
		return codegen.LevelTrace, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, errors.Errorf("unknown log level %q", name)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		atexit.Exit(1)
	}
	atexit.Exit(0)
}
