package cli

import (
	"fmt"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/facet-dev/facet/internal/store"
)

var dimCmd = &cobra.Command{
	Use:   "dim",
	Short: "Manage classification dimensions",
}

var dimAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a dimension",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		multi, _ := cmd.Flags().GetBool("multi")
		d, err := st.CreateDimension(args[0], 0, multi)
		if err != nil {
			return err
		}
		fmt.Printf("created dimension %d %q\n", d.ID, d.Name)
		return nil
	},
}

var dimLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List dimensions and their options",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		dims, err := st.ListDimensions(all)
		if err != nil {
			return err
		}
		if len(dims) == 0 {
			fmt.Println(idleStyle.Render("no dimensions defined"))
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.Header([]string{"ID", "Dimension", "Mode", "Active", "Options"})
		var data [][]string
		for _, d := range dims {
			mode := "single"
			if d.MultiSelect {
				mode = "multi"
			}
			active := "yes"
			if !d.Active {
				active = "no"
			}
			opts := ""
			for i, o := range d.Options {
				if i > 0 {
					opts += ", "
				}
				opts += fmt.Sprintf("%s %s(%d)", swatch(o.Color), o.Name, o.ID)
			}
			data = append(data, []string{
				strconv.FormatInt(d.ID, 10), d.Name, mode, active, opts,
			})
		}
		if err := table.Bulk(data); err != nil {
			return err
		}
		return table.Render()
	},
}

var dimRmCmd = &cobra.Command{
	Use:   "rm <dimension>",
	Short: "Delete a dimension, its options, and all their tag links",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := resolveDimension(args[0])
		if err != nil {
			return err
		}
		if err := st.DeleteDimension(d.ID); err != nil {
			return err
		}
		fmt.Printf("deleted dimension %q\n", d.Name)
		return nil
	},
}

var dimToggleCmd = &cobra.Command{
	Use:   "toggle <dimension>",
	Short: "Enable or disable a dimension",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := resolveDimension(args[0])
		if err != nil {
			return err
		}
		if err := st.ToggleDimension(d.ID, !d.Active); err != nil {
			return err
		}
		state := "enabled"
		if d.Active {
			state = "disabled"
		}
		fmt.Printf("%s dimension %q\n", state, d.Name)
		return nil
	},
}

var dimRenameCmd = &cobra.Command{
	Use:   "rename <dimension> <new-name>",
	Short: "Rename a dimension",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := resolveDimension(args[0])
		if err != nil {
			return err
		}
		if err := st.UpdateDimension(d.ID, store.DimensionPatch{Name: &args[1]}); err != nil {
			return err
		}
		fmt.Printf("renamed dimension %q to %q\n", d.Name, args[1])
		return nil
	},
}

var optCmd = &cobra.Command{
	Use:   "opt",
	Short: "Manage dimension options",
}

var optAddCmd = &cobra.Command{
	Use:   "add <dimension> <name>",
	Short: "Add an option to a dimension",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		color, _ := cmd.Flags().GetString("color")
		d, err := resolveDimension(args[0])
		if err != nil {
			return err
		}
		o, err := st.CreateOption(d.ID, args[1], color, 0)
		if err != nil {
			return err
		}
		fmt.Printf("created option %d %s %s under %q\n", o.ID, swatch(o.Color), o.Name, d.Name)
		return nil
	},
}

var optRmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Delete an option (refused while entries reference it)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid option id %q", args[0])
		}
		if err := st.DeleteOption(id); err != nil {
			return err
		}
		fmt.Printf("deleted option %d\n", id)
		return nil
	},
}

func init() {
	dimAddCmd.Flags().Bool("multi", false, "allow multiple options of this dimension per entry")
	dimLsCmd.Flags().Bool("all", false, "include disabled dimensions")
	optAddCmd.Flags().String("color", "", "display color as #RRGGBB")

	dimCmd.AddCommand(dimAddCmd, dimLsCmd, dimRmCmd, dimToggleCmd, dimRenameCmd)
	optCmd.AddCommand(optAddCmd, optRmCmd)
}
