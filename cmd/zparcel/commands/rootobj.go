package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChaoticConundrum/zparcel/pkg/types"
)

var rootObjCmd = &cobra.Command{
	Use:   "root [uid]",
	Short: "Get or set the root object UID",
	Long: `Without arguments, print the parcel's root UID.
With a UID argument, set it. The root UID is a free pointer for bootstrapping
a top-level structure; it is not checked against existing objects.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			root, err := ZP.Parcel.GetRoot()
			if err != nil {
				return err
			}
			if root.IsZero() {
				fmt.Println("(unset)")
			} else {
				fmt.Println(root)
			}
			return nil
		}

		uid, err := types.ParseUID(args[0])
		if err != nil {
			return err
		}
		if err := ZP.Parcel.SetRoot(uid); err != nil {
			return err
		}
		fmt.Printf("root = %s\n", uid)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(rootObjCmd)
}
