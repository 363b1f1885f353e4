package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ChaoticConundrum/zparcel/pkg/exporter"
	"github.com/ChaoticConundrum/zparcel/pkg/types"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch <uid>",
	Short: "Fetch an object by UID",
	Long:  `Fetch an object and print its value. Blob content goes to stdout verbatim, so it can be redirected to a file.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := types.ParseUID(args[0])
		if err != nil {
			return err
		}
		return exporter.PrintValue(ZP.Parcel, uid, os.Stdout)
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}
