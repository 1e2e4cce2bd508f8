package cli

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	stypes "github.com/turtacn/simpol/pkg/types/simpol"
)

// NewGroupsCmd lists the group catalogue with its coefficients.
func NewGroupsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "groups",
		Short: "List the SIMPOL.1 structural groups and coefficients",
		Args:  cobra.NoArgs,
		RunE: withCLIContext(func(cmd *cobra.Command, args []string, cc *CLIContext) error {
			return PrintResult(cmd, cc.OutputFormat, groupList(cc.Runtime.Service.Groups()))
		}),
	}
}

type groupList []stypes.GroupInfo

func (g groupList) RenderText(cmd *cobra.Command) error { return g.RenderTable(cmd) }

func (g groupList) RenderTable(cmd *cobra.Command) error {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.Header("ID", "Key", "Name", "Kind", "b0", "b1", "b2", "b3", "b(298.15 K)")
	for _, gi := range g {
		c := gi.Coefficients
		if err := table.Append([]string{
			strconv.Itoa(gi.ID),
			gi.Key,
			gi.Name,
			gi.Kind,
			sci(c.B0), sci(c.B1), sci(c.B2), sci(c.B3),
			strconv.FormatFloat(gi.B298, 'f', 4, 64),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}

func sci(v float64) string { return strconv.FormatFloat(v, 'e', 4, 64) }

//Personal.AI order the ending
