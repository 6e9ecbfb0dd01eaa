package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "lfsctl",
	Short: "Drive the log-structured filesystem simulator from the command line",
	Long: `lfsctl replays or generates command records against an in-memory
log-structured filesystem engine. It plays the role of the engine's
external driver, random-command generator, and dump routines: the
three collaborators the engine itself treats as out of scope.`,
}

func init() {
	rootCmd.PersistentFlags().Bool("use-disk-cr", false, "resolve inode lookups via the on-disk checkpoint region instead of the in-memory imap")
	rootCmd.PersistentFlags().Bool("no-force-checkpoints", false, "skip checkpoint sync after each mutating operation")

	viper.BindPFlag("use-disk-cr", rootCmd.PersistentFlags().Lookup("use-disk-cr"))
	viper.BindPFlag("no-force-checkpoints", rootCmd.PersistentFlags().Lookup("no-force-checkpoints"))

	viper.SetEnvPrefix("LFSCTL")
	viper.AutomaticEnv()

	rootCmd.AddCommand(runCmd, benchCmd, dumpCmd)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
