package digitalocean

import (
	"context"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/digitalocean/godo"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/provider"
	"github.com/cuemby/dynia/internal/retry"
)

// DNSGateway implements provider.DNS against the DigitalOcean Domains
// API. One zone (domain) per gateway instance, matching how routes are
// always deployed under a single base domain (spec §4.3).
type DNSGateway struct {
	client *godo.Client
	zone   string
}

// NewDNSGateway builds a gateway scoped to a single DNS zone, e.g.
// "example.com".
func NewDNSGateway(token, zone string) *DNSGateway {
	return &DNSGateway{client: godo.NewFromToken(token), zone: zone}
}

func (g *DNSGateway) relativeName(fqdn string) string {
	name := strings.TrimSuffix(fqdn, "."+g.zone)
	if name == fqdn {
		// fqdn was already relative, or is the bare zone apex
		name = strings.TrimSuffix(fqdn, g.zone)
	}
	if name == "" {
		return "@"
	}
	return strings.TrimSuffix(name, ".")
}

func (g *DNSGateway) fqdn(relative string) string {
	if relative == "@" || relative == "" {
		return g.zone
	}
	return relative + "." + g.zone
}

func toDNSRecord(r *godo.DomainRecord, zone string) *provider.DNSRecord {
	name := r.Name
	fqdn := name + "." + zone
	if name == "@" {
		fqdn = zone
	}
	return &provider.DNSRecord{
		ID:   fmt.Sprintf("%d", r.ID),
		Name: fqdn,
		IP:   r.Data,
		TTL:  r.TTL,
	}
}

func (g *DNSGateway) UpsertA(ctx context.Context, name, ip string, ttl int, proxied bool) (*provider.DNSRecord, error) {
	existing, err := g.GetByName(ctx, name)
	if err != nil {
		if _, ok := err.(*dynerr.NotFoundError); !ok {
			return nil, err
		}
	}

	relative := g.relativeName(name)
	if existing != nil {
		id, perr := parseID(existing.ID)
		if perr != nil {
			return nil, &dynerr.ValidationError{Field: "id", Message: perr.Error()}
		}
		rec, resp, err := g.client.Domains.EditRecord(ctx, g.zone, id, &godo.DomainRecordEditRequest{
			Type: "A",
			Name: relative,
			Data: ip,
			TTL:  ttl,
		})
		if err != nil {
			return nil, wrapGodoErr(resp, err)
		}
		return toDNSRecord(rec, g.zone), nil
	}

	rec, resp, err := g.client.Domains.CreateRecord(ctx, g.zone, &godo.DomainRecordEditRequest{
		Type: "A",
		Name: relative,
		Data: ip,
		TTL:  ttl,
	})
	if err != nil {
		return nil, wrapGodoErr(resp, err)
	}
	return toDNSRecord(rec, g.zone), nil
}

func (g *DNSGateway) GetByName(ctx context.Context, name string) (*provider.DNSRecord, error) {
	relative := g.relativeName(name)
	opt := &godo.ListOptions{PerPage: 200}
	for {
		records, resp, err := g.client.Domains.RecordsByTypeAndName(ctx, g.zone, "A", relative, opt)
		if err != nil {
			return nil, wrapGodoErr(resp, err)
		}
		if len(records) > 0 {
			return toDNSRecord(&records[0], g.zone), nil
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
	return nil, &dynerr.NotFoundError{Kind: "dns_record", Key: name}
}

func (g *DNSGateway) Delete(ctx context.Context, id string) error {
	recordID, err := parseID(id)
	if err != nil {
		return &dynerr.ValidationError{Field: "id", Message: err.Error()}
	}
	resp, err := g.client.Domains.DeleteRecord(ctx, g.zone, recordID)
	return wrapGodoErr(resp, err)
}

// WaitPropagation resolves fqdn through independent public resolvers
// until all agree on expectedIP or timeout elapses (spec §4.2).
func (g *DNSGateway) WaitPropagation(ctx context.Context, fqdn, expectedIP string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolvers := []string{"8.8.8.8:53", "1.1.1.1:53"}

	return retry.Do(ctx, retry.Policy{
		MaxAttempts: 30,
		BaseDelay:   5 * time.Second,
		MaxDelay:    20 * time.Second,
		Description: fmt.Sprintf("wait for %s to resolve to %s", fqdn, expectedIP),
	}, func(ctx context.Context) error {
		for _, server := range resolvers {
			resolver := &net.Resolver{
				PreferGo: true,
				Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
					d := net.Dialer{Timeout: 5 * time.Second}
					return d.DialContext(ctx, network, server)
				},
			}
			ips, err := resolver.LookupHost(ctx, fqdn)
			if err != nil {
				return dynerr.NewProviderError(dynerr.ProviderErrorServer, "resolution failed via "+server, true, err)
			}
			if !contains(ips, expectedIP) {
				return dynerr.NewProviderError(dynerr.ProviderErrorServer, fmt.Sprintf("%s not yet resolving to %s via %s", fqdn, expectedIP, server), true, nil)
			}
		}
		return nil
	})
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
