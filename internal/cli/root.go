// Package cli is the narrow request/response surface over the store:
// every command maps to one store operation and renders its result.
package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/facet-dev/facet/internal/store"
	"github.com/facet-dev/facet/internal/timeutil"
)

var st *store.Store

var rootCmd = &cobra.Command{
	Use:   "facet",
	Short: "Multi-dimensional personal time tracker",
	Long: `facet logs activities against configurable classification dimensions
and aggregates them into statistics and trends.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree against the given store.
func Execute(s *store.Store) error {
	st = s
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(switchCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(gapsCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(rmCmd)
	rootCmd.AddCommand(dimCmd)
	rootCmd.AddCommand(optCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(rankCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(settingsCmd)
}

// rangeFlags adds the --from/--to pair shared by the aggregation
// commands. Defaults cover the last seven days.
func rangeFlags(cmd *cobra.Command) {
	cmd.Flags().String("from", "", "start date (YYYY-MM-DD, default 6 days ago)")
	cmd.Flags().String("to", "", "end date (YYYY-MM-DD, default today)")
}

func parseRange(cmd *cobra.Command) (time.Time, time.Time, error) {
	now := time.Now()
	from := now.AddDate(0, 0, -6)
	to := now

	if s, _ := cmd.Flags().GetString("from"); s != "" {
		t, err := timeutil.ParseDay(s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}
	if s, _ := cmd.Flags().GetString("to"); s != "" {
		t, err := timeutil.ParseDay(s)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t
	}
	return from, to, nil
}

// parseLocalTime parses a minute-precision local timestamp from flags.
func parseLocalTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q (want YYYY-MM-DD HH:MM): %w", s, err)
	}
	return t, nil
}

// parseDayArg interprets an optional positional date argument,
// defaulting to today.
func parseDayArg(args []string) (time.Time, error) {
	if len(args) == 0 {
		return time.Now(), nil
	}
	return timeutil.ParseDay(args[0])
}

// resolveDimension accepts a dimension id or (case-insensitive) name.
func resolveDimension(arg string) (*store.DimensionWithOptions, error) {
	dims, err := st.ListDimensions(true)
	if err != nil {
		return nil, err
	}
	if id, err := strconv.ParseInt(arg, 10, 64); err == nil {
		for i := range dims {
			if dims[i].ID == id {
				return &dims[i], nil
			}
		}
	}
	for i := range dims {
		if strings.EqualFold(dims[i].Name, arg) {
			return &dims[i], nil
		}
	}
	return nil, fmt.Errorf("unknown dimension %q", arg)
}

// resolveOptions turns "Dimension=Option" pairs (or raw option ids) into
// option ids.
func resolveOptions(specs []string) ([]int64, error) {
	if len(specs) == 0 {
		return nil, nil
	}
	dims, err := st.ListDimensions(true)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(specs))
	for _, spec := range specs {
		if id, err := strconv.ParseInt(spec, 10, 64); err == nil {
			ids = append(ids, id)
			continue
		}
		dimName, optName, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, fmt.Errorf("invalid option %q (want Dimension=Option or an option id)", spec)
		}
		id, err := findOption(dims, dimName, optName)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func findOption(dims []store.DimensionWithOptions, dimName, optName string) (int64, error) {
	for _, d := range dims {
		if !strings.EqualFold(d.Name, dimName) {
			continue
		}
		for _, o := range d.Options {
			if strings.EqualFold(o.Name, optName) {
				return o.ID, nil
			}
		}
		return 0, fmt.Errorf("dimension %q has no option %q", d.Name, optName)
	}
	return 0, fmt.Errorf("unknown dimension %q", dimName)
}

// tagSummary renders an entry's tags as "Domain: Work; Project: Facet".
func tagSummary(tags []store.EntryTag) string {
	parts := make([]string, 0, len(tags))
	for _, t := range tags {
		parts = append(parts, t.DimensionName+": "+t.OptionName)
	}
	return strings.Join(parts, "; ")
}
