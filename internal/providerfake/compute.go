// Package providerfake provides in-memory implementations of
// internal/provider's Compute, DNS, and OriginCA interfaces, in the
// recording-fake style the teacher's test/framework package uses for
// its cluster clients: every call is recorded so tests can assert on
// idempotence (e.g. zero additional calls on a converged second run).
package providerfake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/provider"
)

// Compute is an in-memory provider.Compute. All state is held in maps
// guarded by a mutex; VMs become "active" immediately so tests don't
// need to sleep through WaitVMActive.
type Compute struct {
	mu sync.Mutex

	nextID      int
	vms         map[string]*provider.VMInfo
	reservedIPs map[string]*provider.ReservedIPInfo
	vpcs        map[string]*provider.VPCInfo
	sshKeys     map[string]*provider.SSHKeyInfo

	Calls []string // recorded method names, in order, for assertions
}

// NewCompute returns an empty fake.
func NewCompute() *Compute {
	return &Compute{
		vms:         map[string]*provider.VMInfo{},
		reservedIPs: map[string]*provider.ReservedIPInfo{},
		vpcs:        map[string]*provider.VPCInfo{},
		sshKeys:     map[string]*provider.SSHKeyInfo{},
	}
}

func (c *Compute) record(name string) {
	c.Calls = append(c.Calls, name)
}

func (c *Compute) newID() string {
	c.nextID++
	return fmt.Sprintf("%d", c.nextID)
}

func (c *Compute) CreateVM(ctx context.Context, req provider.CreateVMRequest) (*provider.VMInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("CreateVM")

	id := c.newID()
	vm := &provider.VMInfo{
		ID:        id,
		Name:      req.Name,
		Region:    req.Region,
		Size:      req.Size,
		PublicIP:  fmt.Sprintf("203.0.113.%s", id),
		PrivateIP: fmt.Sprintf("10.0.0.%s", id),
		Status:    "active",
	}
	c.vms[id] = vm
	cp := *vm
	return &cp, nil
}

func (c *Compute) GetVM(ctx context.Context, id string) (*provider.VMInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("GetVM")
	vm, ok := c.vms[id]
	if !ok {
		return nil, &dynerr.NotFoundError{Kind: "vm", Key: id}
	}
	cp := *vm
	return &cp, nil
}

func (c *Compute) DeleteVM(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DeleteVM")
	if _, ok := c.vms[id]; !ok {
		return &dynerr.NotFoundError{Kind: "vm", Key: id}
	}
	delete(c.vms, id)
	return nil
}

func (c *Compute) WaitVMActive(ctx context.Context, id string, timeout time.Duration) (*provider.VMInfo, error) {
	return c.GetVM(ctx, id)
}

func (c *Compute) CreateReservedIP(ctx context.Context, region string) (*provider.ReservedIPInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("CreateReservedIP")
	id := c.newID()
	ip := &provider.ReservedIPInfo{ID: id, IP: fmt.Sprintf("198.51.100.%s", id), Region: region}
	c.reservedIPs[id] = ip
	cp := *ip
	return &cp, nil
}

func (c *Compute) ListReservedIPs(ctx context.Context) ([]*provider.ReservedIPInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("ListReservedIPs")
	out := make([]*provider.ReservedIPInfo, 0, len(c.reservedIPs))
	for _, ip := range c.reservedIPs {
		cp := *ip
		out = append(out, &cp)
	}
	return out, nil
}

func (c *Compute) AssignReservedIP(ctx context.Context, ipID, vmID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("AssignReservedIP")
	ip, ok := c.reservedIPs[ipID]
	if !ok {
		return &dynerr.NotFoundError{Kind: "reserved_ip", Key: ipID}
	}
	if _, ok := c.vms[vmID]; !ok {
		return &dynerr.NotFoundError{Kind: "vm", Key: vmID}
	}
	ip.VMID = vmID
	return nil
}

func (c *Compute) UnassignReservedIP(ctx context.Context, ipID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("UnassignReservedIP")
	ip, ok := c.reservedIPs[ipID]
	if !ok {
		return &dynerr.NotFoundError{Kind: "reserved_ip", Key: ipID}
	}
	ip.VMID = ""
	return nil
}

func (c *Compute) DeleteReservedIP(ctx context.Context, ipID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DeleteReservedIP")
	if _, ok := c.reservedIPs[ipID]; !ok {
		return &dynerr.NotFoundError{Kind: "reserved_ip", Key: ipID}
	}
	delete(c.reservedIPs, ipID)
	return nil
}

func (c *Compute) CreateVPC(ctx context.Context, name, region, cidr string) (*provider.VPCInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("CreateVPC")
	id := c.newID()
	vpc := &provider.VPCInfo{ID: id, Name: name, Region: region, CIDR: cidr}
	c.vpcs[id] = vpc
	cp := *vpc
	return &cp, nil
}

func (c *Compute) GetVPC(ctx context.Context, id string) (*provider.VPCInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("GetVPC")
	vpc, ok := c.vpcs[id]
	if !ok {
		return nil, &dynerr.NotFoundError{Kind: "vpc", Key: id}
	}
	cp := *vpc
	return &cp, nil
}

func (c *Compute) ListVPCs(ctx context.Context) ([]*provider.VPCInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("ListVPCs")
	out := make([]*provider.VPCInfo, 0, len(c.vpcs))
	for _, vpc := range c.vpcs {
		cp := *vpc
		out = append(out, &cp)
	}
	return out, nil
}

func (c *Compute) DeleteVPC(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DeleteVPC")
	if _, ok := c.vpcs[id]; !ok {
		return &dynerr.NotFoundError{Kind: "vpc", Key: id}
	}
	delete(c.vpcs, id)
	return nil
}

func (c *Compute) ListSSHKeys(ctx context.Context) ([]*provider.SSHKeyInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("ListSSHKeys")
	out := make([]*provider.SSHKeyInfo, 0, len(c.sshKeys))
	for _, k := range c.sshKeys {
		cp := *k
		out = append(out, &cp)
	}
	return out, nil
}

func (c *Compute) CreateSSHKey(ctx context.Context, name, publicKey string) (*provider.SSHKeyInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("CreateSSHKey")
	id := c.newID()
	k := &provider.SSHKeyInfo{ID: id, Name: name, PublicKey: publicKey, Fingerprint: "fake:" + id}
	c.sshKeys[id] = k
	cp := *k
	return &cp, nil
}

func (c *Compute) GetSSHKey(ctx context.Context, id string) (*provider.SSHKeyInfo, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("GetSSHKey")
	k, ok := c.sshKeys[id]
	if !ok {
		return nil, &dynerr.NotFoundError{Kind: "ssh_key", Key: id}
	}
	cp := *k
	return &cp, nil
}

func (c *Compute) DeleteSSHKey(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.record("DeleteSSHKey")
	if _, ok := c.sshKeys[id]; !ok {
		return &dynerr.NotFoundError{Kind: "ssh_key", Key: id}
	}
	delete(c.sshKeys, id)
	return nil
}
