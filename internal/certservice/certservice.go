// Package certservice implements the Certificate Service (spec §4.4
// "C6"): generate a key and CSR, request an origin certificate, and
// fall back to a self-signed certificate when no origin CA is
// configured. The x509 template construction mirrors the teacher's
// pkg/security/ca.go self-signed root CA generation, scaled down to a
// leaf certificate's key usage and validity.
package certservice

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"time"

	"github.com/cuemby/dynia/internal/provider"
)

const (
	keySize              = 2048
	selfSignedValidity   = 365 * 24 * time.Hour
	defaultOriginValidity = 365
)

// Status classifies what kind of certificate currently backs a route.
type Status string

const (
	StatusNone       Status = "none"
	StatusSelfSigned Status = "self-signed"
	StatusOrigin     Status = "origin"
)

// Material is a certificate and its private key, both PEM-encoded.
type Material struct {
	CertPEM string
	KeyPEM  string
	Status  Status
	Expires time.Time
}

// Combined returns cert then key concatenated as a single PEM string.
// ProvisionCert installs the cert and key as two separate files and
// does not use this form.
func (m *Material) Combined() string {
	return m.CertPEM + m.KeyPEM
}

// Service issues certificate material for routes.
type Service struct {
	originCA provider.OriginCA // nil means "no origin CA configured"
}

func New(originCA provider.OriginCA) *Service {
	return &Service{originCA: originCA}
}

// Issue generates a key and certificate for hostnames. When an origin
// CA is configured it is used first; any failure there falls back to a
// self-signed certificate rather than leaving the route without TLS
// material at all (spec §4.4, §8 scenario on degraded certificate
// issuance).
func (s *Service) Issue(ctx context.Context, hostnames []string) (*Material, error) {
	key, err := rsa.GenerateKey(rand.Reader, keySize)
	if err != nil {
		return nil, fmt.Errorf("generating certificate key: %w", err)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	if s.originCA != nil {
		csrPEM, err := buildCSR(key, hostnames)
		if err == nil {
			certPEM, issueErr := s.originCA.Issue(ctx, provider.IssueCertRequest{
				Hostnames:         hostnames,
				RequestType:       "origin-rsa",
				RequestedValidity: defaultOriginValidity,
				CSRPEM:            csrPEM,
			})
			if issueErr == nil {
				return &Material{
					CertPEM: certPEM,
					KeyPEM:  string(keyPEM),
					Status:  StatusOrigin,
					Expires: time.Now().Add(time.Duration(defaultOriginValidity) * 24 * time.Hour),
				}, nil
			}
		}
	}

	certPEM, expires, err := selfSign(key, hostnames)
	if err != nil {
		return nil, fmt.Errorf("generating self-signed certificate: %w", err)
	}
	return &Material{CertPEM: certPEM, KeyPEM: string(keyPEM), Status: StatusSelfSigned, Expires: expires}, nil
}

func buildCSR(key *rsa.PrivateKey, hostnames []string) (string, error) {
	template := &x509.CertificateRequest{
		Subject:  pkix.Name{CommonName: hostnames[0]},
		DNSNames: hostnames,
	}
	der, err := x509.CreateCertificateRequest(rand.Reader, template, key)
	if err != nil {
		return "", err
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE REQUEST", Bytes: der})
	return string(pemBytes), nil
}

func selfSign(key *rsa.PrivateKey, hostnames []string) (string, time.Time, error) {
	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("generating serial number: %w", err)
	}

	now := time.Now()
	expires := now.Add(selfSignedValidity)
	template := &x509.Certificate{
		SerialNumber:          serialNumber,
		Subject:               pkix.Name{CommonName: hostnames[0], Organization: []string{"dynia self-signed"}},
		DNSNames:              hostnames,
		NotBefore:             now,
		NotAfter:              expires,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return "", time.Time{}, err
	}
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	return string(certPEM), expires, nil
}

// CertPath and KeyPath are the deterministic per-cluster locations a
// cluster's wildcard certificate is installed at (spec §4.4 "TLS
// certificates", §4.5 step 1).
func CertPath(clusterName string) string {
	return fmt.Sprintf("/etc/dynia/certs/%s.crt", clusterName)
}

func KeyPath(clusterName string) string {
	return fmt.Sprintf("/etc/dynia/certs/%s.key", clusterName)
}

// ValidExisting reports whether certPEM and keyPEM form a currently
// valid, matching pair (spec §4.5 step 1: "If valid cert/key exist on
// the node... and the key matches the cert, declare success").
func ValidExisting(certPEM, keyPEM string) bool {
	if certPEM == "" || keyPEM == "" {
		return false
	}
	pair, err := tls.X509KeyPair([]byte(certPEM), []byte(keyPEM))
	if err != nil {
		return false
	}
	cert, err := x509.ParseCertificate(pair.Certificate[0])
	if err != nil {
		return false
	}
	now := time.Now()
	return now.After(cert.NotBefore) && now.Before(cert.NotAfter)
}

// ClassifyStatus inspects an already-issued certificate PEM to report
// whether it looks self-signed (issuer == subject) or origin-issued.
// `dynia cluster cert-status` does not call it: CertStatus reports the
// status recorded in state.
func ClassifyStatus(certPEM string) (Status, error) {
	block, _ := pem.Decode([]byte(certPEM))
	if block == nil {
		return StatusNone, fmt.Errorf("no PEM block found in certificate")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return StatusNone, fmt.Errorf("parsing certificate: %w", err)
	}
	if cert.Issuer.CommonName == cert.Subject.CommonName {
		return StatusSelfSigned, nil
	}
	return StatusOrigin, nil
}
