package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/facet-dev/facet/internal/store"
	"github.com/facet-dev/facet/internal/timeutil"
)

var listCmd = &cobra.Command{
	Use:   "list [date]",
	Short: "List entries for a day (default today)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDayArg(args)
		if err != nil {
			return err
		}
		entries, err := st.EntriesByDate(day)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println(idleStyle.Render("no entries on " + timeutil.DayString(day)))
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header([]string{"ID", "Start", "End", "Duration", "Activity", "Tags"})
		var data [][]string
		for _, e := range entries {
			end := ""
			dur := timeutil.FormatDuration(e.DurationSeconds)
			if e.EndTime != nil {
				end = e.EndTime.Format("15:04")
			} else {
				dur = "running"
			}
			data = append(data, []string{
				strconv.FormatInt(e.ID, 10),
				e.StartTime.Format("15:04"),
				end,
				dur,
				e.Title,
				tagSummary(e.Tags),
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		return table.Render()
	},
}

var gapsCmd = &cobra.Command{
	Use:   "gaps [date]",
	Short: "Show unrecorded intervals between entries for a day",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		day, err := parseDayArg(args)
		if err != nil {
			return err
		}
		gaps, err := st.DetectGaps(day)
		if err != nil {
			return err
		}
		if len(gaps) == 0 {
			fmt.Println(idleStyle.Render("no gaps on " + timeutil.DayString(day)))
			return nil
		}
		for _, g := range gaps {
			fmt.Println(gapStyle.Render(fmt.Sprintf("%s – %s  (%s unrecorded)",
				g.Start.Format("15:04"), g.End.Format("15:04"),
				timeutil.FormatDuration(g.DurationSeconds))))
		}
		return nil
	},
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Record a manual entry with explicit times",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		startStr, _ := cmd.Flags().GetString("start")
		endStr, _ := cmd.Flags().GetString("end")
		specs, _ := cmd.Flags().GetStringArray("opt")
		desc, _ := cmd.Flags().GetString("desc")

		start, err := parseLocalTime(startStr)
		if err != nil {
			return err
		}
		var end *time.Time
		if endStr != "" {
			t, err := parseLocalTime(endStr)
			if err != nil {
				return err
			}
			end = &t
		}
		optionIDs, err := resolveOptions(specs)
		if err != nil {
			return err
		}

		entry, err := st.CreateEntry(args[0], start, end, optionIDs, desc)
		if err != nil {
			return err
		}
		fmt.Printf("added entry %d (%s)\n", entry.ID, timeutil.FormatDuration(entry.DurationSeconds))
		return nil
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Update fields of an entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}

		var patch store.EntryPatch
		if cmd.Flags().Changed("title") {
			v, _ := cmd.Flags().GetString("title")
			patch.Title = &v
		}
		if cmd.Flags().Changed("start") {
			v, _ := cmd.Flags().GetString("start")
			t, err := parseLocalTime(v)
			if err != nil {
				return err
			}
			patch.Start = &t
		}
		if cmd.Flags().Changed("end") {
			v, _ := cmd.Flags().GetString("end")
			t, err := parseLocalTime(v)
			if err != nil {
				return err
			}
			patch.End = store.SetTime(t)
		}
		if reopen, _ := cmd.Flags().GetBool("reopen"); reopen {
			patch.End = store.ClearTime()
		}
		if cmd.Flags().Changed("desc") {
			v, _ := cmd.Flags().GetString("desc")
			patch.Description = &v
		}
		if cmd.Flags().Changed("opt") {
			specs, _ := cmd.Flags().GetStringArray("opt")
			ids, err := resolveOptions(specs)
			if err != nil {
				return err
			}
			if ids == nil {
				ids = []int64{}
			}
			patch.OptionIDs = ids
		}

		if err := st.UpdateEntry(id, patch); err != nil {
			return err
		}
		fmt.Printf("updated entry %d\n", id)
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an entry and its tag links",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q", args[0])
		}
		if err := st.DeleteEntry(id); err != nil {
			return err
		}
		fmt.Printf("deleted entry %d\n", id)
		return nil
	},
}

func init() {
	addCmd.Flags().String("start", "", "start time (YYYY-MM-DD HH:MM)")
	addCmd.Flags().String("end", "", "end time (YYYY-MM-DD HH:MM, omit for a running entry)")
	addCmd.Flags().StringArrayP("opt", "o", nil, "tag as Dimension=Option (repeatable)")
	addCmd.Flags().StringP("desc", "d", "", "free-text description")
	addCmd.MarkFlagRequired("start")

	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("start", "", "new start time (YYYY-MM-DD HH:MM)")
	editCmd.Flags().String("end", "", "new end time (YYYY-MM-DD HH:MM)")
	editCmd.Flags().Bool("reopen", false, "clear the end time, marking the entry as running")
	editCmd.Flags().StringArrayP("opt", "o", nil, "replace tags with Dimension=Option pairs")
	editCmd.Flags().StringP("desc", "d", "", "new description")
}
