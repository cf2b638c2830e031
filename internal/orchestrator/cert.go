package orchestrator

import (
	"context"
	"fmt"

	"github.com/cuemby/dynia/internal/certservice"
	"github.com/cuemby/dynia/internal/dynerr"
)

// ProvisionCert issues the wildcard certificate for a cluster's base
// domain and installs it on every node (spec §4.5). It always issues
// new material; a cert/key pair already on a node is not checked or
// reused.
func (o *Orchestrator) ProvisionCert(ctx context.Context, clusterName string) (certservice.Status, error) {
	cluster, ok := o.Store.GetCluster(clusterName)
	if !ok {
		return "", &dynerr.NotFoundError{Kind: "cluster", Key: clusterName}
	}
	nodes := o.Store.GetClusterNodes(clusterName)
	if len(nodes) == 0 {
		return "", &dynerr.StateError{Message: "cluster has no nodes"}
	}

	var status certservice.Status
	err := timeOperation("provisionCert", func() error {
		if o.dryRun("issue and install wildcard certificate for *.%s on %d node(s)", cluster.BaseDomain, len(nodes)) {
			status = certservice.StatusSelfSigned
			return nil
		}

		hostnames := []string{"*." + cluster.BaseDomain, cluster.BaseDomain}
		material, err := o.Certs.Issue(ctx, hostnames)
		if err != nil {
			return fmt.Errorf("issuing certificate: %w", err)
		}

		for _, n := range nodes {
			if err := o.Exec.UploadContent(ctx, n.PublicIP, certservice.CertPath(clusterName), []byte(material.CertPEM), 0o600); err != nil {
				return fmt.Errorf("installing certificate on %s: %w", n.TwoWordID, err)
			}
			if err := o.Exec.UploadContent(ctx, n.PublicIP, certservice.KeyPath(clusterName), []byte(material.KeyPEM), 0o600); err != nil {
				return fmt.Errorf("installing certificate key on %s: %w", n.TwoWordID, err)
			}
		}

		cluster.CertStatus = string(material.Status)
		cluster.CertExpires = material.Expires
		o.Store.UpsertCluster(cluster)
		if err := o.Store.Save(); err != nil {
			return err
		}
		status = material.Status
		return nil
	})
	return status, err
}

// CertStatusResult reports a cluster's installed certificate state.
type CertStatusResult struct {
	Status  certservice.Status
	Expires string
}

// CertStatus reads the cluster's persisted certificate metadata (spec
// §4.5 "status inspection") without contacting any node.
func (o *Orchestrator) CertStatus(clusterName string) (*CertStatusResult, error) {
	cluster, ok := o.Store.GetCluster(clusterName)
	if !ok {
		return nil, &dynerr.NotFoundError{Kind: "cluster", Key: clusterName}
	}
	if cluster.CertStatus == "" {
		return &CertStatusResult{Status: certservice.StatusNone}, nil
	}
	return &CertStatusResult{
		Status:  certservice.Status(cluster.CertStatus),
		Expires: cluster.CertExpires.Format("2006-01-02T15:04:05Z07:00"),
	}, nil
}

// CertRenew forces a fresh certificate issuance regardless of the
// current one's remaining validity.
func (o *Orchestrator) CertRenew(ctx context.Context, clusterName string) (certservice.Status, error) {
	return o.ProvisionCert(ctx, clusterName)
}
