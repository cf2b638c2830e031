package main

import (
	"context"
	"fmt"

	"github.com/cuemby/dynia/cmd/dynia/internal/table"
	"github.com/spf13/cobra"
)

var assignReservedIPCmd = &cobra.Command{
	Use:   "assign-reserved-ip CLUSTER NODE_ID",
	Short: "Forcibly (re)bind a cluster's Reserved IP to a node and fix up state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, closeFn, err := buildOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		if err := o.AssignReservedIP(context.Background(), args[0], args[1]); err != nil {
			return fmt.Errorf("assigning reserved ip: %w", err)
		}
		fmt.Printf("reserved ip reassigned to node: %s\n", args[1])
		return nil
	},
}

var listReservedIPCmd = &cobra.Command{
	Use:   "list-reserved-ip",
	Short: "List Reserved IPs known to the configured compute provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		o, closeFn, err := buildOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		ips, err := o.ListReservedIPs(context.Background())
		if err != nil {
			return fmt.Errorf("listing reserved ips: %w", err)
		}
		t := table.New("IP", "ID", "REGION", "BOUND VM")
		for _, ip := range ips {
			boundVM := ip.VMID
			if boundVM == "" {
				boundVM = "<unbound>"
			}
			t.Row(ip.IP, ip.ID, ip.Region, boundVM)
		}
		t.Render("no reserved ips found")
		return nil
	},
}

func init() {
	clusterCmd.AddCommand(assignReservedIPCmd)
	clusterCmd.AddCommand(listReservedIPCmd)
}
