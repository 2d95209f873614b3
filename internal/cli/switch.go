package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/facet-dev/facet/internal/timeutil"
)

var switchCmd = &cobra.Command{
	Use:   "switch <title>",
	Short: "End the running activity and start a new one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		specs, _ := cmd.Flags().GetStringArray("opt")
		desc, _ := cmd.Flags().GetString("desc")
		smart, _ := cmd.Flags().GetBool("smart")

		optionIDs, err := resolveOptions(specs)
		if err != nil {
			return err
		}
		if len(optionIDs) == 0 && smart {
			optionIDs, err = st.SmartDefaults(args[0])
			if err != nil {
				return err
			}
		}

		entry, err := st.SwitchActivity(args[0], optionIDs, desc)
		if err != nil {
			return err
		}
		fmt.Printf("%s %s\n", runningStyle.Render("▶"), titleStyle.Render(entry.Title))
		if tags := tagSummary(entry.Tags); tags != "" {
			fmt.Println(mutedStyle.Render(tags))
		}
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "End the running activity without starting a new one",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := st.StopCurrent()
		if err != nil {
			return err
		}
		if entry == nil {
			fmt.Println(idleStyle.Render("nothing is running"))
			return nil
		}
		fmt.Printf("%s %s (%s)\n", idleStyle.Render("■"),
			entry.Title, timeutil.FormatDuration(entry.DurationSeconds))
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the currently running activity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		entry, err := st.GetCurrentActive()
		if err != nil {
			return err
		}
		if entry == nil {
			fmt.Println(idleStyle.Render("idle"))
			return nil
		}
		elapsed := int64(time.Since(entry.StartTime).Seconds())
		fmt.Printf("%s %s  %s\n", runningStyle.Render("▶"),
			titleStyle.Render(entry.Title), timeutil.FormatDurationHHMMSS(elapsed))
		if tags := tagSummary(entry.Tags); tags != "" {
			fmt.Println(mutedStyle.Render(tags))
		}
		if entry.Description != "" {
			fmt.Println(mutedStyle.Render(entry.Description))
		}
		return nil
	},
}

func init() {
	switchCmd.Flags().StringArrayP("opt", "o", nil, "tag as Dimension=Option (repeatable)")
	switchCmd.Flags().StringP("desc", "d", "", "free-text description")
	switchCmd.Flags().Bool("smart", true, "reuse the tags of the last entry with the same title when none are given")
}
