package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show parcel statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		entries, err := ZP.Parcel.ListObjects()
		if err != nil {
			return err
		}

		var payload uint64
		for _, e := range entries {
			payload += e.Size
		}

		fmt.Printf("Parcel:  %s\n", ZP.Path)
		fmt.Printf("State:   %s\n", ZP.Parcel.State())
		fmt.Printf("Objects: %d\n", len(entries))
		fmt.Printf("Payload: %d bytes (out-of-line)\n", payload)
		fmt.Printf("File:    %d bytes\n", ZP.File.Length())

		if root, err := ZP.Parcel.GetRoot(); err == nil && !root.IsZero() {
			fmt.Printf("Root:    %s\n", root)
		}
		if ZP.Catalog != nil {
			if n, err := ZP.Catalog.Count(context.Background()); err == nil {
				fmt.Printf("Catalog: %d rows\n", n)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
