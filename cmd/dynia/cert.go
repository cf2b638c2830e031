package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var provisionCertCmd = &cobra.Command{
	Use:   "provision-cert CLUSTER",
	Short: "Issue and install the cluster's wildcard certificate",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, closeFn, err := buildOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		status, err := o.ProvisionCert(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("provisioning certificate: %w", err)
		}
		fmt.Printf("certificate provisioned: %s (%s)\n", args[0], status)
		return nil
	},
}

var certStatusCmd = &cobra.Command{
	Use:   "cert-status CLUSTER",
	Short: "Show the cluster's installed certificate status",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, closeFn, err := buildOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		result, err := o.CertStatus(args[0])
		if err != nil {
			return fmt.Errorf("reading certificate status: %w", err)
		}
		fmt.Printf("status: %s\n", result.Status)
		if result.Expires != "" {
			fmt.Printf("expires: %s\n", result.Expires)
		}
		return nil
	},
}

var certRenewCmd = &cobra.Command{
	Use:   "cert-renew CLUSTER",
	Short: "Force a fresh certificate issuance and reinstall it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, closeFn, err := buildOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		status, err := o.CertRenew(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("renewing certificate: %w", err)
		}
		fmt.Printf("certificate renewed: %s (%s)\n", args[0], status)
		return nil
	},
}

func init() {
	clusterCmd.AddCommand(provisionCertCmd)
	clusterCmd.AddCommand(certStatusCmd)
	clusterCmd.AddCommand(certRenewCmd)
}
