// Package digitalocean implements internal/provider.Compute and
// internal/provider.DNS against the DigitalOcean API via
// github.com/digitalocean/godo. It is the one place in the control
// plane that imports a concrete cloud SDK — everything else depends on
// the provider interfaces only (spec §4.2, §6.1).
package digitalocean

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/digitalocean/godo"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/provider"
	"github.com/cuemby/dynia/internal/retry"
)

// ComputeGateway implements provider.Compute against the DigitalOcean
// Droplets/ReservedIPs/VPCs/Keys APIs.
type ComputeGateway struct {
	client *godo.Client
}

// NewComputeGateway builds a gateway authenticated with a DigitalOcean
// personal access token.
func NewComputeGateway(token string) *ComputeGateway {
	return &ComputeGateway{client: godo.NewFromToken(token)}
}

func wrapGodoErr(resp *godo.Response, err error) error {
	if err == nil {
		return nil
	}
	kind := dynerr.ProviderErrorServer
	retryable := true
	if resp != nil && resp.StatusCode != 0 {
		switch {
		case resp.StatusCode == http.StatusNotFound:
			kind = dynerr.ProviderErrorNotFound
			retryable = false
		case resp.StatusCode == http.StatusTooManyRequests:
			kind = dynerr.ProviderErrorRateLimit
			retryable = true
		case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
			kind = dynerr.ProviderErrorAuth
			retryable = false
		case resp.StatusCode >= 400 && resp.StatusCode < 500:
			kind = dynerr.ProviderErrorValidation
			retryable = false
		}
	}
	return dynerr.NewProviderError(kind, err.Error(), retryable, err)
}

func toVMInfo(d *godo.Droplet) *provider.VMInfo {
	info := &provider.VMInfo{
		ID:     fmt.Sprintf("%d", d.ID),
		Name:   d.Name,
		Status: d.Status,
	}
	if d.Region != nil {
		info.Region = d.Region.Slug
	}
	if d.Size != nil {
		info.Size = d.Size.Slug
	}
	if ip, err := d.PublicIPv4(); err == nil {
		info.PublicIP = ip
	}
	if ip, err := d.PrivateIPv4(); err == nil {
		info.PrivateIP = ip
	}
	return info
}

func (g *ComputeGateway) CreateVM(ctx context.Context, req provider.CreateVMRequest) (*provider.VMInfo, error) {
	sshKeys := make([]godo.DropletCreateSSHKey, 0, len(req.SSHKeys))
	for _, fingerprint := range req.SSHKeys {
		sshKeys = append(sshKeys, godo.DropletCreateSSHKey{Fingerprint: fingerprint})
	}

	createReq := &godo.DropletCreateRequest{
		Name:    req.Name,
		Region:  req.Region,
		Size:    req.Size,
		Image:   godo.DropletCreateImage{Slug: req.Image},
		SSHKeys: sshKeys,
	}
	if req.VPCID != "" {
		createReq.VPCUUID = req.VPCID
	}

	d, resp, err := g.client.Droplets.Create(ctx, createReq)
	if err != nil {
		return nil, wrapGodoErr(resp, err)
	}
	return toVMInfo(d), nil
}

func (g *ComputeGateway) GetVM(ctx context.Context, id string) (*provider.VMInfo, error) {
	dropletID, err := parseID(id)
	if err != nil {
		return nil, &dynerr.ValidationError{Field: "id", Message: err.Error()}
	}
	d, resp, err := g.client.Droplets.Get(ctx, dropletID)
	if err != nil {
		return nil, wrapGodoErr(resp, err)
	}
	return toVMInfo(d), nil
}

func (g *ComputeGateway) DeleteVM(ctx context.Context, id string) error {
	dropletID, err := parseID(id)
	if err != nil {
		return &dynerr.ValidationError{Field: "id", Message: err.Error()}
	}
	resp, err := g.client.Droplets.Delete(ctx, dropletID)
	return wrapGodoErr(resp, err)
}

// WaitVMActive polls GetVM with the retry primitive until the droplet
// reports "active" or the timeout elapses (spec §4.2, §5).
func (g *ComputeGateway) WaitVMActive(ctx context.Context, id string, timeout time.Duration) (*provider.VMInfo, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var result *provider.VMInfo
	err := retry.Do(ctx, retry.Policy{
		MaxAttempts: 60,
		BaseDelay:   5 * time.Second,
		MaxDelay:    15 * time.Second,
		Description: fmt.Sprintf("wait for VM %s to become active", id),
	}, func(ctx context.Context) error {
		info, err := g.GetVM(ctx, id)
		if err != nil {
			return err
		}
		if info.Status != "active" {
			return dynerr.NewProviderError(dynerr.ProviderErrorServer, "droplet not active yet: "+info.Status, true, nil)
		}
		result = info
		return nil
	})
	return result, err
}

func (g *ComputeGateway) CreateReservedIP(ctx context.Context, region string) (*provider.ReservedIPInfo, error) {
	ip, resp, err := g.client.ReservedIPs.Create(ctx, &godo.ReservedIPCreateRequest{Region: region})
	if err != nil {
		return nil, wrapGodoErr(resp, err)
	}
	return toReservedIPInfo(ip), nil
}

func (g *ComputeGateway) ListReservedIPs(ctx context.Context) ([]*provider.ReservedIPInfo, error) {
	var out []*provider.ReservedIPInfo
	opt := &godo.ListOptions{PerPage: 200}
	for {
		ips, resp, err := g.client.ReservedIPs.List(ctx, opt)
		if err != nil {
			return nil, wrapGodoErr(resp, err)
		}
		for i := range ips {
			out = append(out, toReservedIPInfo(&ips[i]))
		}
		if resp.Links == nil || resp.Links.IsLastPage() {
			break
		}
		page, err := resp.Links.CurrentPage()
		if err != nil {
			break
		}
		opt.Page = page + 1
	}
	return out, nil
}

func (g *ComputeGateway) AssignReservedIP(ctx context.Context, ipID, vmID string) error {
	dropletID, err := parseID(vmID)
	if err != nil {
		return &dynerr.ValidationError{Field: "vmID", Message: err.Error()}
	}
	_, resp, err := g.client.ReservedIPActions.Assign(ctx, ipID, dropletID)
	return wrapGodoErr(resp, err)
}

func (g *ComputeGateway) UnassignReservedIP(ctx context.Context, ipID string) error {
	_, resp, err := g.client.ReservedIPActions.Unassign(ctx, ipID)
	return wrapGodoErr(resp, err)
}

func (g *ComputeGateway) DeleteReservedIP(ctx context.Context, ipID string) error {
	resp, err := g.client.ReservedIPs.Delete(ctx, ipID)
	return wrapGodoErr(resp, err)
}

func (g *ComputeGateway) CreateVPC(ctx context.Context, name, region, cidr string) (*provider.VPCInfo, error) {
	req := &godo.VPCCreateRequest{Name: name, RegionSlug: region}
	if cidr != "" {
		req.IPRange = cidr
	}
	vpc, resp, err := g.client.VPCs.Create(ctx, req)
	if err != nil {
		return nil, wrapGodoErr(resp, err)
	}
	return toVPCInfo(vpc), nil
}

func (g *ComputeGateway) GetVPC(ctx context.Context, id string) (*provider.VPCInfo, error) {
	vpc, resp, err := g.client.VPCs.Get(ctx, id)
	if err != nil {
		return nil, wrapGodoErr(resp, err)
	}
	return toVPCInfo(vpc), nil
}

func (g *ComputeGateway) ListVPCs(ctx context.Context) ([]*provider.VPCInfo, error) {
	vpcs, resp, err := g.client.VPCs.List(ctx, &godo.ListOptions{PerPage: 200})
	if err != nil {
		return nil, wrapGodoErr(resp, err)
	}
	out := make([]*provider.VPCInfo, 0, len(vpcs))
	for _, v := range vpcs {
		out = append(out, toVPCInfo(v))
	}
	return out, nil
}

func (g *ComputeGateway) DeleteVPC(ctx context.Context, id string) error {
	resp, err := g.client.VPCs.Delete(ctx, id)
	return wrapGodoErr(resp, err)
}

func (g *ComputeGateway) ListSSHKeys(ctx context.Context) ([]*provider.SSHKeyInfo, error) {
	keys, resp, err := g.client.Keys.List(ctx, &godo.ListOptions{PerPage: 200})
	if err != nil {
		return nil, wrapGodoErr(resp, err)
	}
	out := make([]*provider.SSHKeyInfo, 0, len(keys))
	for _, k := range keys {
		out = append(out, toSSHKeyInfo(&k))
	}
	return out, nil
}

func (g *ComputeGateway) CreateSSHKey(ctx context.Context, name, publicKey string) (*provider.SSHKeyInfo, error) {
	k, resp, err := g.client.Keys.Create(ctx, &godo.KeyCreateRequest{Name: name, PublicKey: publicKey})
	if err != nil {
		return nil, wrapGodoErr(resp, err)
	}
	return toSSHKeyInfo(k), nil
}

func (g *ComputeGateway) GetSSHKey(ctx context.Context, id string) (*provider.SSHKeyInfo, error) {
	keyID, err := parseID(id)
	if err != nil {
		return nil, &dynerr.ValidationError{Field: "id", Message: err.Error()}
	}
	k, resp, err := g.client.Keys.GetByID(ctx, keyID)
	if err != nil {
		return nil, wrapGodoErr(resp, err)
	}
	return toSSHKeyInfo(k), nil
}

func (g *ComputeGateway) DeleteSSHKey(ctx context.Context, id string) error {
	keyID, err := parseID(id)
	if err != nil {
		return &dynerr.ValidationError{Field: "id", Message: err.Error()}
	}
	resp, err := g.client.Keys.DeleteByID(ctx, keyID)
	return wrapGodoErr(resp, err)
}

func toReservedIPInfo(ip *godo.ReservedIP) *provider.ReservedIPInfo {
	info := &provider.ReservedIPInfo{IP: ip.IP, Region: regionSlug(ip)}
	if ip.Droplet != nil {
		info.VMID = fmt.Sprintf("%d", ip.Droplet.ID)
	}
	info.ID = ip.IP // DigitalOcean reserved IPs are addressed by their IP string
	return info
}

func regionSlug(ip *godo.ReservedIP) string {
	if ip.Region != nil {
		return ip.Region.Slug
	}
	return ""
}

func toVPCInfo(v *godo.VPC) *provider.VPCInfo {
	return &provider.VPCInfo{ID: v.ID, Name: v.Name, Region: v.RegionSlug, CIDR: v.IPRange}
}

func toSSHKeyInfo(k *godo.Key) *provider.SSHKeyInfo {
	return &provider.SSHKeyInfo{
		ID:          fmt.Sprintf("%d", k.ID),
		Name:        k.Name,
		Fingerprint: k.Fingerprint,
		PublicKey:   k.PublicKey,
	}
}

func parseID(id string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(id, "%d", &n); err != nil {
		return 0, fmt.Errorf("invalid numeric id %q: %w", id, err)
	}
	return n, nil
}
