package main

import (
	"fmt"
	"os"

	"github.com/cuemby/dynia/internal/dynialog"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "dynia",
	Short: "Dynia - control plane for small HA edge clusters",
	Long: `Dynia provisions and operates small high-availability clusters of
cloud virtual machines that terminate HTTPS for user services, with one
Reserved IP per cluster and automatic fail-over between nodes.`,
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("dynia version %s (%s)\n", Version, Commit))

	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")
	rootCmd.PersistentFlags().Bool("dry-run", false, "Log the operation's steps without making side-effectful calls")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(clusterCmd)
}

func initLogging() {
	level, _ := rootCmd.PersistentFlags().GetString("log-level")
	jsonOut, _ := rootCmd.PersistentFlags().GetBool("log-json")
	dynialog.Init(dynialog.Config{
		Level:      dynialog.Level(level),
		JSONOutput: jsonOut,
	})
}

var clusterCmd = &cobra.Command{
	Use:   "cluster",
	Short: "Manage Dynia clusters",
}
