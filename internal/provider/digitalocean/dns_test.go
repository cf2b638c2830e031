package digitalocean

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/digitalocean/godo"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dnsGatewayAgainst(t *testing.T, server *httptest.Server, zone string) *DNSGateway {
	t.Helper()
	client, err := godo.New(server.Client(), godo.SetBaseURL(server.URL+"/"))
	require.NoError(t, err)
	return &DNSGateway{client: client, zone: zone}
}

func TestRelativeNameStripsZoneSuffix(t *testing.T) {
	g := &DNSGateway{zone: "example.com"}
	assert.Equal(t, "edge", g.relativeName("edge.example.com"))
	assert.Equal(t, "@", g.relativeName("example.com"))
	assert.Equal(t, "edge", g.relativeName("edge"))
}

func TestFqdnExpandsRelativeName(t *testing.T) {
	g := &DNSGateway{zone: "example.com"}
	assert.Equal(t, "example.com", g.fqdn("@"))
	assert.Equal(t, "example.com", g.fqdn(""))
	assert.Equal(t, "edge.example.com", g.fqdn("edge"))
}

func TestContainsFindsMember(t *testing.T) {
	assert.True(t, contains([]string{"a", "b"}, "b"))
	assert.False(t, contains([]string{"a", "b"}, "c"))
}

func TestUpsertACreatesRecordWhenNoneExists(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			fmt.Fprint(w, `{"domain_records":[],"links":{}}`)
		case r.Method == http.MethodPost:
			assert.Equal(t, "/v2/domains/example.com/records", r.URL.Path)
			fmt.Fprint(w, `{"domain_record":{"id":9,"name":"edge","data":"203.0.113.1","ttl":300}}`)
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	}))
	defer server.Close()

	rec, err := dnsGatewayAgainst(t, server, "example.com").UpsertA(context.Background(), "edge.example.com", "203.0.113.1", 300, false)
	require.NoError(t, err)
	assert.Equal(t, "9", rec.ID)
	assert.Equal(t, "203.0.113.1", rec.IP)
}

func TestUpsertAEditsExistingRecord(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			fmt.Fprint(w, `{"domain_records":[{"id":9,"name":"edge","data":"203.0.113.1","ttl":300}],"links":{}}`)
		case http.MethodPut:
			assert.Equal(t, "/v2/domains/example.com/records/9", r.URL.Path)
			fmt.Fprint(w, `{"domain_record":{"id":9,"name":"edge","data":"203.0.113.2","ttl":300}}`)
		default:
			t.Fatalf("unexpected method %s", r.Method)
		}
	}))
	defer server.Close()

	rec, err := dnsGatewayAgainst(t, server, "example.com").UpsertA(context.Background(), "edge.example.com", "203.0.113.2", 300, false)
	require.NoError(t, err)
	assert.Equal(t, "203.0.113.2", rec.IP)
}

func TestGetByNameReturnsNotFoundWhenNoRecordsMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"domain_records":[],"links":{}}`)
	}))
	defer server.Close()

	_, err := dnsGatewayAgainst(t, server, "example.com").GetByName(context.Background(), "edge.example.com")
	var notFoundErr *dynerr.NotFoundError
	assert.ErrorAs(t, err, &notFoundErr)
}

func TestDeleteRejectsNonNumericID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should not reach the server for an invalid id")
	}))
	defer server.Close()

	err := dnsGatewayAgainst(t, server, "example.com").Delete(context.Background(), "nope")
	var validationErr *dynerr.ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestDeleteSucceedsAgainstValidID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	err := dnsGatewayAgainst(t, server, "example.com").Delete(context.Background(), "9")
	assert.NoError(t, err)
}
