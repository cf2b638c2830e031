package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var addNodeCmd = &cobra.Command{
	Use:   "add-node CLUSTER",
	Short: "Provision one or more standby nodes for a cluster",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, closeFn, err := buildOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		count, _ := cmd.Flags().GetInt("count")
		nodes, err := o.AddNode(context.Background(), args[0], count)
		if err != nil {
			return fmt.Errorf("adding node(s): %w", err)
		}
		for _, n := range nodes {
			fmt.Printf("node added: %s (priority %d)\n", n.TwoWordID, n.Priority)
		}
		return nil
	},
}

var removeNodeCmd = &cobra.Command{
	Use:   "remove-node CLUSTER NODE_ID",
	Short: "Destroy a node, promoting a standby first if it was active",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, closeFn, err := buildOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := o.RemoveNode(context.Background(), args[0], args[1]); err != nil {
			return fmt.Errorf("removing node: %w", err)
		}
		fmt.Printf("node removed: %s\n", args[1])
		return nil
	},
}

var activateNodeCmd = &cobra.Command{
	Use:   "activate-node CLUSTER NODE_ID",
	Short: "Promote a node to active, reassigning the Reserved IP to it",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, closeFn, err := buildOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := o.ActivateNode(context.Background(), args[0], args[1]); err != nil {
			return fmt.Errorf("activating node: %w", err)
		}
		fmt.Printf("node active: %s\n", args[1])
		return nil
	},
}

func init() {
	addNodeCmd.Flags().Int("count", 1, "Number of standby nodes to add")

	clusterCmd.AddCommand(addNodeCmd)
	clusterCmd.AddCommand(removeNodeCmd)
	clusterCmd.AddCommand(activateNodeCmd)
}
