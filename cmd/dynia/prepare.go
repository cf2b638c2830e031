package main

import (
	"context"
	"fmt"

	"github.com/cuemby/dynia/internal/orchestrator"
	"github.com/spf13/cobra"
)

var prepareCmd = &cobra.Command{
	Use:   "prepare CLUSTER",
	Short: "Reconverge nodes whose configuration has drifted",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, closeFn, err := buildOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		force, _ := cmd.Flags().GetBool("force")
		parallel, _ := cmd.Flags().GetBool("parallel")
		targets, _ := cmd.Flags().GetStringSlice("node")

		in := orchestrator.PrepareInput{Force: force, Parallel: parallel}
		if len(targets) > 0 {
			in.TargetNodes = targets
		}
		if err := o.Prepare(context.Background(), args[0], in); err != nil {
			return fmt.Errorf("preparing cluster: %w", err)
		}
		fmt.Printf("cluster prepared: %s\n", args[0])
		return nil
	},
}

// repairCmd is prepare with force and parallel always on: every node
// is reconverged regardless of its current internal readiness check.
var repairCmd = &cobra.Command{
	Use:   "repair CLUSTER",
	Short: "Forcibly reconverge every node in a cluster",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, closeFn, err := buildOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := o.Prepare(context.Background(), args[0], orchestrator.PrepareInput{Force: true, Parallel: true}); err != nil {
			return fmt.Errorf("repairing cluster: %w", err)
		}
		fmt.Printf("cluster repaired: %s\n", args[0])
		return nil
	},
}

func init() {
	prepareCmd.Flags().Bool("force", false, "Reconverge every targeted node even if it already passes its readiness check")
	prepareCmd.Flags().Bool("parallel", false, "Reconverge targeted nodes concurrently")
	prepareCmd.Flags().StringSlice("node", nil, "Limit to specific node ids (default: every node)")

	clusterCmd.AddCommand(prepareCmd)
	clusterCmd.AddCommand(repairCmd)
}
