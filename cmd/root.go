package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/TFMV/findfile/findfile"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
	version = "0.1.0"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "findfile [options] [path]",
	Short: "Fast recursive file and folder enumeration",
	Long: `findfile lists the files and folders under a directory using one
native listing session per directory and a single reused path buffer.

Examples:
  findfile /var/log --pattern="*.log"
  findfile . --recursive=false --folders=false
  findfile /data --format=json --progress`,
	Version:       version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootArg(args)
		if err != nil {
			return err
		}
		return runList(cmd.Context(), cmd.OutOrStdout(), cmd.ErrOrStderr(), root)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default is $HOME/.findfile.yaml)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().Bool("silent", false, "Disable all output except errors")

	rootCmd.Flags().StringP("pattern", "p", "*", "Name pattern to match ('*' and '?', case-insensitive)")
	rootCmd.Flags().BoolP("recursive", "r", true, "Descend into subdirectories")
	rootCmd.Flags().Bool("files", true, "Report files")
	rootCmd.Flags().Bool("folders", true, "Report folders")
	rootCmd.Flags().Bool("raise-access-denied", false, "Fail on unreadable directories instead of skipping them")
	rootCmd.Flags().Int("max-path", findfile.DefaultMaxPathLength, "Maximum path length in bytes")
	rootCmd.Flags().String("format", "text", "Output format (text|json)")
	rootCmd.Flags().Bool("progress", false, "Show progress updates")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	bindFlags(rootCmd)

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		// Search config in home directory with name ".findfile" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".findfile")
	}

	viper.SetEnvPrefix("FINDFILE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil && !viper.GetBool("silent") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// bindFlags binds every flag to viper. Root flags use their own name,
// subcommand flags are prefixed with the command name, e.g. "find.name".
func bindFlags(cmd *cobra.Command) {
	prefix := ""
	if cmd != rootCmd {
		prefix = cmd.Name() + "."
	}
	bind := func(f *pflag.Flag) {
		viper.BindPFlag(prefix+f.Name, f)
	}
	cmd.PersistentFlags().VisitAll(bind)
	cmd.LocalNonPersistentFlags().VisitAll(bind)
	for _, c := range cmd.Commands() {
		bindFlags(c)
	}
}

// newLogger maps --verbose and --silent onto a log level.
func newLogger() *zap.Logger {
	switch {
	case viper.GetBool("verbose"):
		return findfile.NewLogger(findfile.LogLevelDebug)
	case viper.GetBool("silent"):
		return findfile.NewLogger(findfile.LogLevelError)
	default:
		return findfile.NewLogger(findfile.LogLevelInfo)
	}
}

func rootArg(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("error getting current directory: %w", err)
	}
	return dir, nil
}

// listOptions builds engine options from the root command's flags.
func listOptions(root string, logger *zap.Logger) findfile.Options {
	opts := findfile.NewOptions(root)
	opts.Pattern = viper.GetString("pattern")
	opts.Recursive = viper.GetBool("recursive")
	opts.IncludeFiles = viper.GetBool("files")
	opts.IncludeFolders = viper.GetBool("folders")
	opts.RaiseOnAccessDenied = viper.GetBool("raise-access-denied")
	opts.MaxPathLength = viper.GetInt("max-path")
	opts.Logger = logger
	return opts
}

// entryJSON is the --format=json line for one entry.
type entryJSON struct {
	Path       string    `json:"path"`
	Size       int64     `json:"size"`
	IsDir      bool      `json:"is_dir"`
	Attributes string    `json:"attributes"`
	Modified   time.Time `json:"last_modified"`
}

func newEntryJSON(info findfile.Info) entryJSON {
	return entryJSON{
		Path:       info.Path,
		Size:       info.Size,
		IsDir:      info.IsDir(),
		Attributes: info.Attributes.String(),
		Modified:   info.LastWriteTime,
	}
}

func runList(ctx context.Context, out, errOut io.Writer, root string) error {
	format := viper.GetString("format")
	if format != "text" && format != "json" {
		return fmt.Errorf("invalid format: %s", format)
	}

	logger := newLogger()
	defer logger.Sync()

	f, err := findfile.New(listOptions(root, logger))
	if err != nil {
		return err
	}

	enc := json.NewEncoder(out)
	base := f.Root()
	visit := func(e *findfile.Entry) error {
		if format == "json" {
			return enc.Encode(newEntryJSON(e.Info()))
		}
		if viper.GetBool("silent") || viper.GetBool("progress") {
			return nil
		}
		rel := strings.TrimPrefix(e.Path(), base)
		if e.IsDir() {
			_, err := fmt.Fprintf(out, "%s%c\n", rel, filepath.Separator)
			return err
		}
		_, err := fmt.Fprintf(out, "%s (%d bytes)\n", rel, e.Size())
		return err
	}

	mws := []findfile.Middleware{findfile.LoggingMiddleware(logger)}
	var stats findfile.Stats
	if viper.GetBool("progress") {
		mws = append(mws, findfile.StatsMiddleware(&stats, 1000, func(s findfile.Stats) {
			fmt.Fprintf(errOut, "\rProcessed: %d files, %d dirs, %d bytes", s.Files, s.Folders, s.Bytes)
		}))
	}

	if err := f.Find(ctx, findfile.Chain(visit, mws...)); err != nil {
		return err
	}
	if viper.GetBool("progress") {
		fmt.Fprintf(errOut, "\rProcessed: %d files, %d dirs, %d bytes\n", stats.Files, stats.Folders, stats.Bytes)
	}
	return nil
}
