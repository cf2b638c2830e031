package provider

import "context"

// IssueCertRequest is the payload sent to the origin CA (spec §4.5):
// {hostnames, request_type: "origin-rsa", requested_validity, csr}.
type IssueCertRequest struct {
	Hostnames         []string
	RequestType       string // always "origin-rsa"
	RequestedValidity int    // days, one of {7,30,90,365,730,1095,5475}
	CSRPEM            string
}

// OriginCA issues wildcard origin certificates (spec §6.1 "originCA:").
type OriginCA interface {
	// Issue returns the PEM-encoded certificate for the request.
	Issue(ctx context.Context, req IssueCertRequest) (certPEM string, err error)
}

// ValidValidityDays is the set of validity periods the origin CA accepts.
var ValidValidityDays = map[int]bool{
	7: true, 30: true, 90: true, 365: true, 730: true, 1095: true, 5475: true,
}
