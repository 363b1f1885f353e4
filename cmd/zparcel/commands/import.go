package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ChaoticConundrum/zparcel/pkg/exporter"
	"github.com/ChaoticConundrum/zparcel/pkg/meta"
	"github.com/ChaoticConundrum/zparcel/pkg/types"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import objects from a CBOR archive",
	Long:  `Import every object from an archive produced by export. Existing UIDs are updated in place.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()

		if err := exporter.Import(ZP.Parcel, f); err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		// 目录库整体重建，保证和导入后的 parcel 一致
		if ZP.Catalog != nil {
			entries, err := ZP.Parcel.ListObjects()
			if err != nil {
				return err
			}
			rows := make([]meta.ObjectModel, len(entries))
			for i, e := range entries {
				rows[i] = meta.ObjectModel{
					UID:  e.UID.String(),
					Type: types.TypeName(e.Type),
					Size: int64(e.Size),
				}
			}
			if err := ZP.Catalog.Rebuild(context.Background(), rows); err != nil {
				return fmt.Errorf("catalog rebuild failed: %w", err)
			}
		}

		fmt.Printf("imported from %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
