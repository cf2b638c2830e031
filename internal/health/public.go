package health

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/retry"
)

// PublicCheckInput describes the public readiness check's target
// (spec §4.7 "Public").
type PublicCheckInput struct {
	FQDN           string
	ExpectedMarker string // substring the response body must contain
}

var publicResolvers = []string{"8.8.8.8:53", "1.1.1.1:53"}

func resolverDialer(server string) func(ctx context.Context, network, address string) (net.Conn, error) {
	return func(ctx context.Context, network, _ string) (net.Conn, error) {
		d := net.Dialer{Timeout: 5 * time.Second}
		return d.DialContext(ctx, network, server)
	}
}

func checkDNSResolution(ctx context.Context, fqdn string) Result {
	start := time.Now()
	for _, server := range publicResolvers {
		resolver := &net.Resolver{PreferGo: true, Dial: resolverDialer(server)}
		ips, err := resolver.LookupHost(ctx, fqdn)
		if err != nil || len(ips) == 0 {
			return fail(start, fmt.Sprintf("%s did not resolve via %s", fqdn, server))
		}
	}
	return Result{Healthy: true, Message: "dns resolved via all resolvers", CheckedAt: start, Duration: time.Since(start)}
}

func checkHTTPS(ctx context.Context, fqdn, expectedMarker string) Result {
	start := time.Now()
	client := &http.Client{Timeout: 45 * time.Second}

	url := fmt.Sprintf("https://%s/", fqdn)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fail(start, err.Error())
	}

	resp, err := client.Do(req)
	if err != nil {
		return fail(start, err.Error())
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fail(start, fmt.Sprintf("unexpected status %d", resp.StatusCode))
	}

	if err := checkCertValidity(resp.TLS); err != nil {
		return fail(start, err.Error())
	}

	if expectedMarker != "" {
		buf := make([]byte, 64*1024)
		n, _ := resp.Body.Read(buf)
		if !strings.Contains(string(buf[:n]), expectedMarker) {
			return fail(start, "response body did not contain expected marker")
		}
	}

	return Result{Healthy: true, Message: "https check passed", CheckedAt: start, Duration: time.Since(start)}
}

func checkCertValidity(state *tls.ConnectionState) error {
	if state == nil || len(state.PeerCertificates) == 0 {
		return fmt.Errorf("no peer certificate presented")
	}
	cert := state.PeerCertificates[0]
	now := time.Now()
	if now.Before(cert.NotBefore) || now.After(cert.NotAfter) {
		return fmt.Errorf("served certificate is not currently valid (notBefore=%s notAfter=%s)", cert.NotBefore, cert.NotAfter)
	}
	return nil
}

// CheckPublic runs the four public readiness probes from spec §4.7 in
// order: DNS resolution, then an HTTPS GET (retried up to 12 times
// with 15-60s backoff since first-boot certificate issuance can be
// slow), which itself verifies certificate validity and the expected
// response marker.
func CheckPublic(ctx context.Context, in PublicCheckInput) Result {
	if dns := checkDNSResolution(ctx, in.FQDN); !dns.Healthy {
		return dns
	}

	var last Result
	err := retry.Do(ctx, retry.Policy{
		MaxAttempts: 12,
		BaseDelay:   15 * time.Second,
		MaxDelay:    60 * time.Second,
		Description: "public readiness check for " + in.FQDN,
	}, func(ctx context.Context) error {
		last = checkHTTPS(ctx, in.FQDN, in.ExpectedMarker)
		if !last.Healthy {
			return dynerr.NewProviderError(dynerr.ProviderErrorServer, "https check not yet healthy: "+last.Message, true, nil)
		}
		return nil
	})
	if err != nil && last.Message == "" {
		last = fail(time.Now(), err.Error())
	}
	return last
}
