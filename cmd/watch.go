package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/TFMV/findfile/findfile"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Watch for filesystem changes",
	Long: `Watch for filesystem changes and perform actions when files are created, modified, or deleted.

Examples:
  findfile watch /path/to/watch
  findfile watch --events=create,modify --exec="echo Changed: {}" /path/to/watch
  findfile watch --pattern="*.go" --format="{base} was {event} at {time}" /path/to/watch
  findfile watch --recursive /path/to/watch`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir, err := rootArg(args)
		if err != nil {
			return err
		}
		return runWatch(cmd.Context(), cmd.OutOrStdout(), dir)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringSlice("events", []string{}, "Events to watch for (create, modify, delete, rename, chmod)")
	watchCmd.Flags().Bool("recursive", false, "Watch subdirectories recursively")
	watchCmd.Flags().String("exec", "", "Command to execute when an event occurs")
	watchCmd.Flags().String("format", "", "Format string for output")
	watchCmd.Flags().String("pattern", "", "File pattern to match (e.g., *.go)")
	watchCmd.Flags().Duration("timeout", 0, "Duration to watch before exiting (e.g., 1h, 30m)")
}

func runWatch(ctx context.Context, out io.Writer, dir string) error {
	logger := newLogger()
	defer logger.Sync()

	var events []findfile.WatchEvent
	for _, name := range viper.GetStringSlice("watch.events") {
		ev, err := findfile.ParseWatchEvent(name)
		if err != nil {
			return err
		}
		events = append(events, ev)
	}

	opts := findfile.WatchOptions{
		Events:    events,
		Recursive: viper.GetBool("watch.recursive"),
		Pattern:   viper.GetString("watch.pattern"),
		Logger:    logger,
	}

	if timeout := viper.GetDuration("watch.timeout"); timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if !viper.GetBool("silent") {
		fmt.Fprintf(out, "Watching %s for changes...\n", dir)
	}

	var err error
	if execCmd := viper.GetString("watch.exec"); execCmd != "" {
		err = findfile.WatchWithExec(ctx, dir, opts, execCmd, out)
	} else {
		format := viper.GetString("watch.format")
		if format == "" {
			format = "{event}: {}"
		}
		err = findfile.WatchWithFormat(ctx, dir, opts, format, out)
	}
	if err != nil {
		return fmt.Errorf("error watching directory: %w", err)
	}
	return nil
}
