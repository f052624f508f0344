package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/TFMV/findfile/findfile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [path]",
	Short: "Summarize storage usage",
	Long: `Summarize storage usage: file and folder counts, total size, usage by
file type and the largest files.

Examples:
  findfile analyze /path/to/directory
  findfile analyze --top=20 --pattern="*.log" /var/log
  findfile analyze --output=json --output-file=report.json /path/to/directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := rootArg(args)
		if err != nil {
			return err
		}
		return runAnalyze(cmd.Context(), cmd.OutOrStdout(), dir)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("output", "text", "Output format (text|json)")
	analyzeCmd.Flags().String("output-file", "", "File to write output to")
	analyzeCmd.Flags().Int("top", 10, "Number of largest files to list")
	analyzeCmd.Flags().String("pattern", "*", "Only count entries whose names match")
}

func runAnalyze(ctx context.Context, out io.Writer, dir string) error {
	logger := newLogger()
	defer logger.Sync()

	opts := findfile.NewOptions(dir)
	opts.Pattern = viper.GetString("analyze.pattern")
	opts.Logger = logger
	f, err := findfile.New(opts)
	if err != nil {
		return err
	}

	report, err := findfile.Summarize(ctx, f, viper.GetInt("analyze.top"))
	if err != nil {
		return fmt.Errorf("error analyzing directory: %w", err)
	}

	var data []byte
	switch format := viper.GetString("analyze.output"); format {
	case "text":
		data = []byte(report.String())
	case "json":
		data, err = json.MarshalIndent(report, "", "  ")
		if err != nil {
			return fmt.Errorf("error encoding report: %w", err)
		}
		data = append(data, '\n')
	default:
		return fmt.Errorf("invalid output format: %s", format)
	}

	if file := viper.GetString("analyze.output-file"); file != "" {
		if err := os.WriteFile(file, data, 0o644); err != nil {
			return fmt.Errorf("error saving results to file: %w", err)
		}
		fmt.Fprintf(out, "Analysis results saved to %s\n", file)
		return nil
	}
	_, err = out.Write(data)
	return err
}
