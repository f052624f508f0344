package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/TFMV/findfile/findfile"
	ignore "github.com/sabhiram/go-gitignore"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var findCmd = &cobra.Command{
	Use:   "find [options] [path]",
	Short: "Find files with advanced filtering",
	Long: `Find files with advanced filtering capabilities.
Supports name patterns, regular expressions, time-based filtering, size
constraints and gitignore-style exclusion. Can execute commands for each
matched file or format output using templates.

Examples:
  findfile find /path/to/search --name="*.go"
  findfile find /path/to/search --regex=".*\\.txt$" --larger-than=1MB
  findfile find /path/to/search --exec="echo Processing: {}"
  findfile find /path/to/search --format="{base} ({size} bytes)"
  findfile find /path/to/search --older-than=7d --ignore-file=.gitignore`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := rootArg(args)
		if err != nil {
			return err
		}
		return runFind(cmd.Context(), cmd.OutOrStdout(), root)
	},
}

func init() {
	rootCmd.AddCommand(findCmd)

	// Pattern matching options
	findCmd.Flags().StringP("name", "n", "*", "Match by file name (supports wildcards)")
	findCmd.Flags().StringP("regex", "r", "", "Match the full path by regular expression")
	findCmd.Flags().String("ignore-file", "", "Skip paths listed in a gitignore-style file")
	findCmd.Flags().StringP("type", "t", "f", "Entry type to report (f|d|all)")
	findCmd.Flags().Bool("include-hidden", false, "Include hidden files")

	// Time-based filtering
	findCmd.Flags().String("older-than", "", "Files older than this duration (e.g. 7d, 24h, 30m)")
	findCmd.Flags().String("newer-than", "", "Files newer than this duration (e.g. 7d, 24h, 30m)")

	// Size-based filtering
	findCmd.Flags().String("larger-than", "", "Files larger than this size (e.g. 1MB, 500KB)")
	findCmd.Flags().String("smaller-than", "", "Files smaller than this size (e.g. 1MB, 500KB)")

	// Execution options
	findCmd.Flags().String("exec", "", "Command to execute for each match")
	findCmd.Flags().String("format", "", "Format string for output")
}

// findFilter holds the post-engine filters of the find command.
type findFilter struct {
	root          string
	includeHidden bool
	regex         *regexp.Regexp
	ignore        *ignore.GitIgnore
	largerThan    int64
	smallerThan   int64
	olderThan     time.Duration
	newerThan     time.Duration
	now           time.Time
}

func newFindFilter(root string) (*findFilter, error) {
	ff := &findFilter{
		root:          root,
		includeHidden: viper.GetBool("find.include-hidden"),
		largerThan:    -1,
		smallerThan:   -1,
		now:           time.Now(),
	}

	if regexStr := viper.GetString("find.regex"); regexStr != "" {
		var err error
		ff.regex, err = regexp.Compile(regexStr)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern: %w", err)
		}
	}

	if ignoreFile := viper.GetString("find.ignore-file"); ignoreFile != "" {
		data, err := os.ReadFile(ignoreFile)
		if err != nil {
			return nil, fmt.Errorf("error reading ignore file: %w", err)
		}
		ff.ignore = ignore.CompileIgnoreLines(strings.Split(string(data), "\n")...)
	}

	// Parse time durations
	if s := viper.GetString("find.older-than"); s != "" {
		d, err := parseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid older-than value: %w", err)
		}
		ff.olderThan = d
	}
	if s := viper.GetString("find.newer-than"); s != "" {
		d, err := parseDuration(s)
		if err != nil {
			return nil, fmt.Errorf("invalid newer-than value: %w", err)
		}
		ff.newerThan = d
	}

	// Parse size constraints
	if s := viper.GetString("find.larger-than"); s != "" {
		size, err := parseSize(s)
		if err != nil {
			return nil, fmt.Errorf("invalid larger-than value: %w", err)
		}
		ff.largerThan = size
	}
	if s := viper.GetString("find.smaller-than"); s != "" {
		size, err := parseSize(s)
		if err != nil {
			return nil, fmt.Errorf("invalid smaller-than value: %w", err)
		}
		ff.smallerThan = size
	}
	return ff, nil
}

func (ff *findFilter) match(e *findfile.Entry) bool {
	if !ff.includeHidden && e.IsHidden() {
		return false
	}
	if ff.ignore != nil {
		rel := filepath.ToSlash(strings.TrimPrefix(e.Path(), ff.root))
		if e.IsDir() {
			rel += "/"
		}
		if ff.ignore.MatchesPath(rel) {
			return false
		}
	}
	if ff.regex != nil && !ff.regex.MatchString(e.Path()) {
		return false
	}
	if !e.IsDir() {
		if ff.largerThan >= 0 && e.Size() <= ff.largerThan {
			return false
		}
		if ff.smallerThan >= 0 && e.Size() >= ff.smallerThan {
			return false
		}
	}
	age := ff.now.Sub(e.LastWriteTime())
	if ff.olderThan > 0 && age < ff.olderThan {
		return false
	}
	if ff.newerThan > 0 && age > ff.newerThan {
		return false
	}
	return true
}

func runFind(ctx context.Context, out io.Writer, root string) error {
	logger := newLogger()
	defer logger.Sync()

	opts := findfile.NewOptions(root)
	opts.Pattern = viper.GetString("find.name")
	opts.Logger = logger
	switch t := viper.GetString("find.type"); t {
	case "f":
		opts.IncludeFolders = false
	case "d":
		opts.IncludeFiles = false
	case "all":
	default:
		return fmt.Errorf("invalid type: %s", t)
	}

	f, err := findfile.New(opts)
	if err != nil {
		return err
	}
	ff, err := newFindFilter(f.Root())
	if err != nil {
		return err
	}

	emit := func(e *findfile.Entry) error {
		_, err := fmt.Fprintln(out, e.Path())
		return err
	}
	if execCmd := viper.GetString("find.exec"); execCmd != "" {
		emit = func(e *findfile.Entry) error {
			return findfile.RunCommand(ctx, findfile.FormatInfo(execCmd, e.Info()), out)
		}
	} else if format := viper.GetString("find.format"); format != "" {
		emit = func(e *findfile.Entry) error {
			_, err := fmt.Fprintln(out, findfile.FormatInfo(format, e.Info()))
			return err
		}
	}

	visit := func(e *findfile.Entry) error {
		if !ff.match(e) {
			return nil
		}
		return emit(e)
	}
	return f.Find(ctx, findfile.Chain(visit, findfile.LoggingMiddleware(logger)))
}

// parseDuration parses a duration string with support for days (d)
func parseDuration(s string) (time.Duration, error) {
	if strings.HasSuffix(s, "d") {
		days, err := parseFloat(s[:len(s)-1])
		if err != nil {
			return 0, err
		}
		return time.Duration(days * 24 * float64(time.Hour)), nil
	}
	return time.ParseDuration(s)
}

// parseSize parses a size string with support for KB, MB, GB, TB
func parseSize(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))

	multiplier := int64(1)
	for _, unit := range []struct {
		suffix string
		mult   int64
	}{
		{"KB", 1 << 10},
		{"MB", 1 << 20},
		{"GB", 1 << 30},
		{"TB", 1 << 40},
	} {
		if strings.HasSuffix(s, unit.suffix) {
			multiplier = unit.mult
			s = s[:len(s)-len(unit.suffix)]
			break
		}
	}
	s = strings.TrimSuffix(s, "B")

	size, err := parseFloat(s)
	if err != nil {
		return 0, err
	}
	return int64(size * float64(multiplier)), nil
}

// parseFloat parses a float from a string
func parseFloat(s string) (float64, error) {
	var value float64
	_, err := fmt.Sscanf(s, "%f", &value)
	return value, err
}
