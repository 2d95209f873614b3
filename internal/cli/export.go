package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/facet-dev/facet/internal/export"
	"github.com/facet-dev/facet/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export <path>",
	Short: "Export entries to a CSV or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var filter store.ExportFilter
		if s, _ := cmd.Flags().GetString("from"); s != "" {
			t, err := parseDayArg([]string{s})
			if err != nil {
				return err
			}
			filter.From = &t
		}
		if s, _ := cmd.Flags().GetString("to"); s != "" {
			t, err := parseDayArg([]string{s})
			if err != nil {
				return err
			}
			filter.To = &t
		}
		specs, _ := cmd.Flags().GetStringArray("opt")
		ids, err := resolveOptions(specs)
		if err != nil {
			return err
		}
		filter.OptionIDs = ids

		rows, err := st.ExportRows(filter)
		if err != nil {
			return err
		}

		format, _ := cmd.Flags().GetString("format")
		switch format {
		case "csv":
			err = export.ToCSV(rows, args[0])
		case "json":
			err = export.ToJSON(rows, args[0])
		default:
			return fmt.Errorf("unknown format %q (want csv or json)", format)
		}
		if err != nil {
			return err
		}
		fmt.Printf("exported %d entries to %s\n", len(rows), args[0])
		return nil
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings [key] [value]",
	Short: "Show or change stored settings",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch len(args) {
		case 0:
			all, err := st.AllSettings()
			if err != nil {
				return err
			}
			for _, s := range all {
				fmt.Printf("%s = %s\n", s.Key, s.Value)
			}
		case 1:
			v, err := st.GetSetting(args[0])
			if err != nil {
				return err
			}
			fmt.Println(v)
		case 2:
			if err := st.SetSetting(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("%s = %s\n", args[0], args[1])
		}
		return nil
	},
}

func init() {
	exportCmd.Flags().String("format", "csv", "output format: csv or json")
	exportCmd.Flags().String("from", "", "start date (YYYY-MM-DD)")
	exportCmd.Flags().String("to", "", "end date (YYYY-MM-DD)")
	exportCmd.Flags().StringArrayP("opt", "o", nil, "only entries tagged Dimension=Option (repeatable)")
}
