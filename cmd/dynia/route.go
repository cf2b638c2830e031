package main

import (
	"context"
	"fmt"

	"github.com/cuemby/dynia/internal/orchestrator"
	"github.com/spf13/cobra"
)

var deployRouteCmd = &cobra.Command{
	Use:   "deploy-route CLUSTER",
	Short: "Deploy a workload and its reverse-proxy route on a cluster",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		o, closeFn, err := buildOrchestrator(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		placeholder, _ := cmd.Flags().GetBool("placeholder")
		composePath, _ := cmd.Flags().GetString("compose")
		domain, _ := cmd.Flags().GetString("domain")
		healthPath, _ := cmd.Flags().GetString("health-path")
		proxied, _ := cmd.Flags().GetBool("proxied")

		if !placeholder && composePath == "" {
			return fmt.Errorf("--compose is required unless --placeholder is set")
		}
		if !placeholder && domain == "" {
			return fmt.Errorf("--domain is required unless --placeholder is set")
		}

		route, err := o.DeployRoute(context.Background(), args[0], orchestrator.DeployRouteInput{
			Placeholder: placeholder, ComposePath: composePath, Domain: domain,
			HealthPath: healthPath, Proxied: proxied,
		})
		if err != nil {
			return fmt.Errorf("deploying route: %w", err)
		}
		fmt.Printf("route deployed: %s\n", route.Host)
		return nil
	},
}

func init() {
	deployRouteCmd.Flags().Bool("placeholder", false, "Deploy the fixed placeholder workload instead of a compose file")
	deployRouteCmd.Flags().String("compose", "", "Path to a docker-compose file describing the workload")
	deployRouteCmd.Flags().String("domain", "", "FQDN to route (ignored with --placeholder)")
	deployRouteCmd.Flags().String("health-path", "/dynia-health", "Health path recorded on the route (the reverse proxy always answers 200 on /dynia-health)")
	deployRouteCmd.Flags().Bool("proxied", false, "Upsert the DNS record with the provider's proxy flag set")

	clusterCmd.AddCommand(deployRouteCmd)
}
