package providerfake

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/provider"
)

// DNS is an in-memory provider.DNS. WaitPropagation returns immediately
// once the record matches, since there is no real resolver to poll.
type DNS struct {
	mu      sync.Mutex
	nextID  int
	records map[string]*provider.DNSRecord // keyed by FQDN

	Calls []string
}

func NewDNS() *DNS {
	return &DNS{records: map[string]*provider.DNSRecord{}}
}

func (d *DNS) record(name string) {
	d.Calls = append(d.Calls, name)
}

func (d *DNS) UpsertA(ctx context.Context, name, ip string, ttl int, proxied bool) (*provider.DNSRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("UpsertA")

	if existing, ok := d.records[name]; ok {
		existing.IP = ip
		existing.TTL = ttl
		existing.Proxied = proxied
		cp := *existing
		return &cp, nil
	}

	d.nextID++
	rec := &provider.DNSRecord{ID: fmt.Sprintf("%d", d.nextID), Name: name, IP: ip, TTL: ttl, Proxied: proxied}
	d.records[name] = rec
	cp := *rec
	return &cp, nil
}

func (d *DNS) GetByName(ctx context.Context, name string) (*provider.DNSRecord, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("GetByName")
	rec, ok := d.records[name]
	if !ok {
		return nil, &dynerr.NotFoundError{Kind: "dns_record", Key: name}
	}
	cp := *rec
	return &cp, nil
}

func (d *DNS) Delete(ctx context.Context, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("Delete")
	for name, rec := range d.records {
		if rec.ID == id {
			delete(d.records, name)
			return nil
		}
	}
	return &dynerr.NotFoundError{Kind: "dns_record", Key: id}
}

func (d *DNS) WaitPropagation(ctx context.Context, fqdn, expectedIP string, timeout time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("WaitPropagation")
	rec, ok := d.records[fqdn]
	if !ok || rec.IP != expectedIP {
		return dynerr.NewProviderError(dynerr.ProviderErrorServer, "record not yet propagated", true, nil)
	}
	return nil
}
