package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/facet-dev/facet/internal/store"
	"github.com/facet-dev/facet/internal/timeutil"
)

var statsCmd = &cobra.Command{
	Use:   "stats <dimension>",
	Short: "Per-option totals and share of all recorded time",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := parseRange(cmd)
		if err != nil {
			return err
		}
		d, err := resolveDimension(args[0])
		if err != nil {
			return err
		}
		stats, err := st.StatsByDimension(d.ID, from, to)
		if err != nil {
			return err
		}
		total, err := st.TotalHours(from, to)
		if err != nil {
			return err
		}

		fmt.Printf("%s  %s – %s\n", titleStyle.Render(d.Name),
			timeutil.DayString(from), timeutil.DayString(to))
		if len(stats) == 0 {
			fmt.Println(idleStyle.Render("no recorded time"))
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header([]string{"Option", "Hours", "Share", "Entries"})
		var data [][]string
		for _, s := range stats {
			data = append(data, []string{
				swatch(s.Color) + " " + s.OptionName,
				fmt.Sprintf("%.2f", s.Hours),
				fmt.Sprintf("%.1f%%", s.Percentage),
				strconv.Itoa(s.EntryCount),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		if err := table.Render(); err != nil {
			return err
		}
		fmt.Printf("total recorded: %.2fh across %d entries\n", total.Hours, total.Entries)
		return nil
	},
}

var trendCmd = &cobra.Command{
	Use:   "trend <dimension>",
	Short: "Per-option hours grouped by day or ISO week",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := parseRange(cmd)
		if err != nil {
			return err
		}
		groupBy := store.GroupByDay
		if by, _ := cmd.Flags().GetString("by"); by == "week" {
			groupBy = store.GroupByWeek
		}
		d, err := resolveDimension(args[0])
		if err != nil {
			return err
		}
		points, err := st.TrendByDimension(d.ID, from, to, groupBy)
		if err != nil {
			return err
		}
		if len(points) == 0 {
			fmt.Println(idleStyle.Render("no recorded time"))
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header([]string{"Bucket", "Option", "Hours"})
		var data [][]string
		for _, p := range points {
			data = append(data, []string{
				p.Bucket,
				swatch(p.Color) + " " + p.OptionName,
				fmt.Sprintf("%.2f", p.Hours),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		return table.Render()
	},
}

var rankCmd = &cobra.Command{
	Use:   "rank",
	Short: "Top activities by accumulated time",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		from, to, err := parseRange(cmd)
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")
		ranking, err := st.ActivityRanking(from, to, limit)
		if err != nil {
			return err
		}
		if len(ranking) == 0 {
			fmt.Println(idleStyle.Render("no recorded time"))
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header([]string{"#", "Activity", "Hours", "Times"})
		var data [][]string
		for i, r := range ranking {
			data = append(data, []string{
				strconv.Itoa(i + 1),
				r.Title,
				fmt.Sprintf("%.2f", r.Hours),
				strconv.Itoa(r.Frequency),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		return table.Render()
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <keyword>",
	Short: "Autocomplete activity titles by prefix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		titles, err := st.SearchActivities(args[0])
		if err != nil {
			return err
		}
		for _, t := range titles {
			fmt.Println(t)
		}
		return nil
	},
}

func init() {
	rangeFlags(statsCmd)
	rangeFlags(trendCmd)
	rangeFlags(rankCmd)
	trendCmd.Flags().String("by", "day", "bucket by \"day\" or \"week\"")
	rankCmd.Flags().Int("limit", 0, "number of activities to show (default from settings)")
}
