package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChaoticConundrum/zparcel/pkg/types"
)

var rmCmd = &cobra.Command{
	Use:   "rm <uid>",
	Short: "Remove an object",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		uid, err := types.ParseUID(args[0])
		if err != nil {
			return err
		}

		if err := ZP.Parcel.RemoveObject(uid); err != nil {
			return err
		}
		if ZP.Catalog != nil {
			if err := ZP.Catalog.Remove(context.Background(), uid); err != nil {
				return fmt.Errorf("catalog update failed: %w", err)
			}
		}

		fmt.Printf("removed %s\n", uid)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rmCmd)
}
