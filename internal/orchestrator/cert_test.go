package orchestrator_test

import (
	"context"
	"testing"

	"github.com/cuemby/dynia/internal/certservice"
	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProvisionCertRejectsUnknownCluster(t *testing.T) {
	h := newHarness(t)
	_, err := h.Orc.ProvisionCert(context.Background(), "ghost")
	var notFoundErr *dynerr.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestProvisionCertRejectsClusterWithNoNodes(t *testing.T) {
	h := newHarness(t)
	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one"})
	_, err := h.Orc.ProvisionCert(context.Background(), "edge-one")
	var stateErr *dynerr.StateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestProvisionCertInstallsSelfSignedCertOnEveryNode(t *testing.T) {
	h := newHarness(t)
	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one", BaseDomain: "example.com"})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "calm-otter", Priority: 200, PublicIP: "203.0.113.1"})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "lone-heron", Priority: 150, PublicIP: "203.0.113.2"})
	require.NoError(t, h.Orc.Store.Save())

	status, err := h.Orc.ProvisionCert(context.Background(), "edge-one")
	require.NoError(t, err)
	assert.Equal(t, certservice.StatusSelfSigned, status)

	_, ok := h.Exec.FileContent("203.0.113.1", certservice.CertPath("edge-one"))
	assert.True(t, ok)
	_, ok = h.Exec.FileContent("203.0.113.2", certservice.KeyPath("edge-one"))
	assert.True(t, ok)

	cluster, _ := h.Orc.Store.GetCluster("edge-one")
	assert.Equal(t, string(certservice.StatusSelfSigned), cluster.CertStatus)
}

func TestProvisionCertDryRunReportsStatusWithoutTouchingNodes(t *testing.T) {
	h := newHarness(t)
	h.Orc.DryRun = true
	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one", BaseDomain: "example.com"})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "calm-otter", PublicIP: "203.0.113.1"})
	require.NoError(t, h.Orc.Store.Save())

	status, err := h.Orc.ProvisionCert(context.Background(), "edge-one")
	require.NoError(t, err)
	assert.Equal(t, certservice.StatusSelfSigned, status)
	assert.Empty(t, h.Exec.Calls)
}

func TestCertStatusReportsNoneForUnprovisionedCluster(t *testing.T) {
	h := newHarness(t)
	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one"})

	result, err := h.Orc.CertStatus("edge-one")
	require.NoError(t, err)
	assert.Equal(t, certservice.StatusNone, result.Status)
}

func TestCertStatusRejectsUnknownCluster(t *testing.T) {
	h := newHarness(t)
	_, err := h.Orc.CertStatus("ghost")
	var notFoundErr *dynerr.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestCertRenewReissuesRegardlessOfCurrentStatus(t *testing.T) {
	h := newHarness(t)
	h.Orc.Store.UpsertCluster(&types.Cluster{Name: "edge-one", BaseDomain: "example.com", CertStatus: string(certservice.StatusSelfSigned)})
	h.Orc.Store.UpsertClusterNode(&types.ClusterNode{ClusterName: "edge-one", TwoWordID: "calm-otter", PublicIP: "203.0.113.1"})
	require.NoError(t, h.Orc.Store.Save())

	status, err := h.Orc.CertRenew(context.Background(), "edge-one")
	require.NoError(t, err)
	assert.Equal(t, certservice.StatusSelfSigned, status)
	assert.Equal(t, 2, h.Exec.CountMethod("UploadContent"), "cert and key should both be re-uploaded")
}
