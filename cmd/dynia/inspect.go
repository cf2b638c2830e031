package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var inspectConfigCmd = &cobra.Command{
	Use:   "inspect-config CLUSTER NODE_ID",
	Short: "Fetch a node's rendered config and daemon status concurrently",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, closeFn, err := buildOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		results, err := o.InspectConfig(context.Background(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("inspecting node: %w", err)
		}
		for _, r := range results {
			fmt.Printf("=== %s ===\n", r.Label)
			if r.Err != nil {
				fmt.Printf("error: %v\n\n", r.Err)
				continue
			}
			fmt.Println(strings.TrimRight(r.Output, "\n"))
			fmt.Println()
		}
		return nil
	},
}

func init() {
	clusterCmd.AddCommand(inspectConfigCmd)
}
