package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ChaoticConundrum/zparcel/pkg/app"
)

var createNoTailExtend bool

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new parcel file",
	Long:  `Create a new parcel file at the configured path, overwriting an existing one.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tailExtend := viper.GetBool("parcel.tail_extend") && !createNoTailExtend
		a, err := app.NewAppCreate(tailExtend)
		if err != nil {
			return err
		}
		defer a.Close()

		fmt.Printf("Created parcel %s\n", viper.GetString("parcel.path"))
		return nil
	},
}

func init() {
	createCmd.Flags().BoolVar(&createNoTailExtend, "no-tail-extend", false,
		"disallow growing the file when the freelist is exhausted")
	rootCmd.AddCommand(createCmd)
}
