package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChaoticConundrum/zparcel/pkg/exporter"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export all objects to a CBOR archive",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Create(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		if err := exporter.Export(ZP.Parcel, f); err != nil {
			return fmt.Errorf("export failed: %w", err)
		}
		fmt.Printf("exported to %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
