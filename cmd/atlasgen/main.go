// Command atlasgen packs a directory of images and fonts into texture atlas
// pages, or unpacks a saved atlas back into individual images.
//
//	atlasgen pack -i sprites -o build/atlas --padding 2
//	atlasgen pack -c atlasgen.toml
//	atlasgen unpack build/atlas -o extracted
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const version = "0.2.0"

func main() {
	if err := run(os.Args[1:], os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(args []string, stderr io.Writer) error {
	var verbose bool
	logger := newLogger(stderr, log.InfoLevel)
	root := rootCommand(logger)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			logger.SetLevel(log.DebugLevel)
		}
		return nil
	}
	root.SetArgs(args)
	root.SetErr(stderr)
	return root.Execute()
}

func rootCommand(logger *log.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:          "atlasgen",
		Short:        "Build texture atlases from images and fonts",
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(packCommand(logger))
	root.AddCommand(unpackCommand(logger))
	return root
}

// newLogger creates a logger with timestamps formatted as "HH:MM:SS.ms".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}
