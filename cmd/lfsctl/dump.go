package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var dumpCmd = &cobra.Command{
	Use:   "dump <commands-file>",
	Short: "Replay a command file and print the resulting disk layout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		records, err := parseRecordFile(args[0])
		if err != nil {
			return err
		}

		e := newEngine()
		fmt.Println("INITIAL file system contents:")
		fmt.Print(e.Dump())

		for _, rec := range records {
			rec.apply(e)
			fmt.Println(rec.describe())
			fmt.Print(e.DumpPartial(false))
		}

		fmt.Println("FINAL file system contents:")
		fmt.Print(e.Dump())
		return nil
	},
}
