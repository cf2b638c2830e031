package main

import (
	"context"
	"fmt"

	"github.com/cuemby/dynia/cmd/dynia/internal/table"
	"github.com/cuemby/dynia/internal/config"
	"github.com/cuemby/dynia/internal/orchestrator"
	"github.com/spf13/cobra"
)

var clusterCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a new cluster with a single active node",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		o, closeFn, err := buildOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		cfg, _ := config.Load()
		baseDomain, _ := cmd.Flags().GetString("base-domain")
		if baseDomain == "" {
			baseDomain = cfg.DefaultBaseDomain
		}
		region, _ := cmd.Flags().GetString("region")
		if region == "" {
			region = cfg.DefaultRegion
		}
		size, _ := cmd.Flags().GetString("size")
		if size == "" {
			size = cfg.DefaultSize
		}

		cluster, err := o.CreateCluster(context.Background(), orchestrator.CreateClusterInput{
			Name: name, BaseDomain: baseDomain, Region: region, Size: size,
		})
		if err != nil {
			return fmt.Errorf("creating cluster: %w", err)
		}
		fmt.Printf("cluster created: %s\n", cluster.Name)
		fmt.Printf("  reserved ip: %s\n", cluster.ReservedIP)
		fmt.Printf("  active node: %s\n", cluster.ActiveNodeID)
		return nil
	},
}

var clusterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List clusters",
	RunE: func(cmd *cobra.Command, args []string) error {
		o, closeFn, err := buildOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		t := table.New("NAME", "REGION", "RESERVED IP", "ACTIVE NODE", "NODES")
		for _, c := range o.Store.ListClusters() {
			nodes := o.Store.GetClusterNodes(c.Name)
			t.Row(c.Name, c.Region, c.ReservedIP, c.ActiveNodeID, len(nodes))
		}
		t.Render("no clusters found")
		return nil
	},
}

var clusterDestroyCmd = &cobra.Command{
	Use:   "destroy NAME",
	Short: "Tear down a cluster, its nodes, routes, and Reserved IP",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, closeFn, err := buildOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := o.DestroyCluster(context.Background(), args[0]); err != nil {
			return fmt.Errorf("destroying cluster: %w", err)
		}
		fmt.Printf("cluster destroyed: %s\n", args[0])
		return nil
	},
}

func init() {
	clusterCreateCmd.Flags().String("base-domain", "", "Base DNS domain for this cluster (default DYNIA_BASE_DOMAIN)")
	clusterCreateCmd.Flags().String("region", "", "Provider region (default DYNIA_REGION)")
	clusterCreateCmd.Flags().String("size", "", "VM size slug (default DYNIA_SIZE)")

	clusterCmd.AddCommand(clusterCreateCmd)
	clusterCmd.AddCommand(clusterListCmd)
	clusterCmd.AddCommand(clusterDestroyCmd)
}
