package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/hackvm/api"
	"github.com/sarchlab/hackvm/config"
)

var translateFlags struct {
	config    string
	output    string
	bootstrap string
	entry     string
	comments  bool
	stats     bool
}

var translateCmd = &cobra.Command{
	Use:   "translate [paths...]",
	Short: "Translate .vm files into one .asm file",
	Long: `Translate reads the given .vm files and directories, in order, and
writes one Hack assembly program. Without -o, Foo.vm becomes Foo.asm and a
directory Dir becomes Dir/Dir.asm. Use -o - to write to standard output.

Settings can also come from a YAML project file given with --config;
flags override the file.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}

		out := cfg.OutputPath()
		sink, cleanup := openSink(out)
		atexit.Register(cleanup)

		stats, err := cfg.Driver().Build().Translate(
			api.FileSource{Paths: cfg.Sources}, sink)
		if err != nil {
			return err
		}

		slog.Info("Wrote program", "Output", out, "Lines", stats.TotalLines)

		if translateFlags.stats {
			fmt.Fprintln(cmd.OutOrStdout(), statsTable(stats))
		}

		return nil
	},
}

func init() {
	f := translateCmd.Flags()
	f.StringVar(&translateFlags.config, "config", "", "YAML project file")
	f.StringVarP(&translateFlags.output, "output", "o", "", "output file")
	f.StringVar(&translateFlags.bootstrap, "bootstrap", "",
		"when to emit the bootstrap: auto, always or never")
	f.StringVar(&translateFlags.entry, "entry", "",
		"function called by the bootstrap")
	f.BoolVar(&translateFlags.comments, "comments", true,
		"annotate the output with the VM instructions")
	f.BoolVar(&translateFlags.stats, "stats", false,
		"print translation statistics")

	rootCmd.AddCommand(translateCmd)
}

// loadConfig merges the project file, the arguments and the flags.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := &config.Config{}
	if translateFlags.config != "" {
		var err error
		cfg, err = config.Load(translateFlags.config)
		if err != nil {
			return nil, err
		}
	}

	if len(args) > 0 {
		cfg.Sources = args
	}
	if translateFlags.output != "" {
		cfg.Output = translateFlags.output
	}
	if translateFlags.bootstrap != "" {
		cfg.Bootstrap = translateFlags.bootstrap
	}
	if translateFlags.entry != "" {
		cfg.Entry = translateFlags.entry
	}
	if cmd.Flags().Changed("comments") {
		comments := translateFlags.comments
		cfg.Comments = &comments
	}

	if len(cfg.Sources) == 0 {
		return nil, errors.New("no sources given")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// openSink returns the sink for out and a cleanup that removes a partially
// written file.
func openSink(out string) (api.Sink, func()) {
	if out == "-" {
		return api.WriterSink{W: os.Stdout}, func() {}
	}

	s := &trackingSink{sink: api.FileSink{Path: out}}
	return s, func() {
		if s.failed {
			os.Remove(out)
		}
	}
}

type trackingSink struct {
	sink   api.Sink
	failed bool
}

func (s *trackingSink) WriteLines(lines []string) error {
	err := s.sink.WriteLines(lines)
	s.failed = err != nil
	return err
}

func statsTable(stats api.Stats) string {
	t := table.NewWriter()
	t.SetTitle("Translation")
	t.AppendHeader(table.Row{"Unit", "Instructions", "Lines"})

	if stats.BootstrapLines > 0 {
		t.AppendRow(table.Row{"(bootstrap)", "", stats.BootstrapLines})
	}
	t.AppendRow(table.Row{"(comparators)", "", stats.ComparatorLines})

	instructions := 0
	for _, u := range stats.Units {
		t.AppendRow(table.Row{u.Name, u.Instructions, u.Lines})
		instructions += u.Instructions
	}

	t.AppendFooter(table.Row{"Total", instructions, stats.TotalLines})

	return t.Render()
}
