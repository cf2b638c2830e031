// Package provider defines the three capability interfaces the control
// plane depends on (spec §4.2, §6.1): Compute, DNS, and OriginCA. Each
// operation is modeled as a deterministic, potentially-blocking remote
// call; concrete gateways (internal/provider/digitalocean,
// internal/provider/originca) and fakes (internal/providerfake) are
// injected by the caller — nothing in the orchestrator imports a
// concrete gateway directly.
package provider

import (
	"context"
	"time"
)

// VMInfo is what the compute provider knows about one virtual machine.
type VMInfo struct {
	ID        string
	Name      string
	Region    string
	Size      string
	PublicIP  string
	PrivateIP string
	Status    string // provider-reported status string, e.g. "active"
}

// CreateVMRequest describes a VM to create.
type CreateVMRequest struct {
	Name     string
	Region   string
	Size     string
	Image    string
	VPCID    string
	SSHKeys  []string // SSH key fingerprints/ids to install
}

// ReservedIPInfo is a floating IP and the VM it is currently bound to, if
// any.
type ReservedIPInfo struct {
	ID     string
	IP     string
	Region string
	VMID   string // empty if unbound
}

// VPCInfo is a provider-managed private network.
type VPCInfo struct {
	ID     string
	Name   string
	Region string
	CIDR   string
}

// SSHKeyInfo is an SSH public key registered with the provider.
type SSHKeyInfo struct {
	ID          string
	Name        string
	Fingerprint string
	PublicKey   string
}

// Compute is the control plane's view of a cloud compute provider (spec
// §6.1 "compute:").
type Compute interface {
	CreateVM(ctx context.Context, req CreateVMRequest) (*VMInfo, error)
	GetVM(ctx context.Context, id string) (*VMInfo, error)
	DeleteVM(ctx context.Context, id string) error
	// WaitVMActive polls until the VM reports active and returns its
	// current addresses, or returns a retryable ProviderError on timeout.
	WaitVMActive(ctx context.Context, id string, timeout time.Duration) (*VMInfo, error)

	CreateReservedIP(ctx context.Context, region string) (*ReservedIPInfo, error)
	ListReservedIPs(ctx context.Context) ([]*ReservedIPInfo, error)
	// AssignReservedIP is atomic at the provider: binding to a new VM
	// implicitly unbinds it from whatever VM held it before.
	AssignReservedIP(ctx context.Context, ipID, vmID string) error
	UnassignReservedIP(ctx context.Context, ipID string) error
	DeleteReservedIP(ctx context.Context, ipID string) error

	CreateVPC(ctx context.Context, name, region, cidr string) (*VPCInfo, error)
	GetVPC(ctx context.Context, id string) (*VPCInfo, error)
	ListVPCs(ctx context.Context) ([]*VPCInfo, error)
	DeleteVPC(ctx context.Context, id string) error

	ListSSHKeys(ctx context.Context) ([]*SSHKeyInfo, error)
	CreateSSHKey(ctx context.Context, name, publicKey string) (*SSHKeyInfo, error)
	GetSSHKey(ctx context.Context, id string) (*SSHKeyInfo, error)
	DeleteSSHKey(ctx context.Context, id string) error
}
