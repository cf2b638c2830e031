package providerfake

import (
	"context"
	"fmt"
	"sync"

	"github.com/cuemby/dynia/internal/provider"
)

// OriginCA is an in-memory provider.OriginCA that hands back a
// deterministic placeholder PEM block so tests can assert content
// without a real certificate authority.
type OriginCA struct {
	mu     sync.Mutex
	issued int

	Calls []string
}

func NewOriginCA() *OriginCA {
	return &OriginCA{}
}

func (o *OriginCA) Issue(ctx context.Context, req provider.IssueCertRequest) (string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Calls = append(o.Calls, "Issue")
	o.issued++
	return fmt.Sprintf("-----BEGIN CERTIFICATE-----\nfake-cert-%d-for-%v\n-----END CERTIFICATE-----\n", o.issued, req.Hostnames), nil
}
