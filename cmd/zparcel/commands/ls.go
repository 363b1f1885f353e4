package commands

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ChaoticConundrum/zparcel/pkg/exporter"
)

var lsType string

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all objects",
	Long: `List every object in the parcel in UID order (in-order tree walk).
With the catalog enabled, --type filters through the sqlite index instead of walking the tree.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// 带类型过滤时优先走目录库 (SQL 查询)
		if lsType != "" && ZP.Catalog != nil {
			rows, err := ZP.Catalog.List(context.Background(), lsType)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintf(tw, "UID\tTYPE\tSIZE\n")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%s\t%d\n", r.UID, r.Type, r.Size)
			}
			return tw.Flush()
		}

		entries, err := ZP.Parcel.ListObjects()
		if err != nil {
			return err
		}
		return exporter.PrintObjects(entries, os.Stdout)
	},
}

func init() {
	lsCmd.Flags().StringVar(&lsType, "type", "", "filter by object type (requires --catalog)")
	rootCmd.AddCommand(lsCmd)
}
