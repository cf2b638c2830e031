// Package reservedip implements the Reserved-IP Service (spec §4.4
// "C5"): one floating IP per cluster, found-or-created on demand and
// reassigned to whichever node becomes active. The find-then-create
// shape mirrors the teacher's LimaManager.Start, which inspects for an
// existing instance before provisioning a new one.
package reservedip

import (
	"context"
	"fmt"

	"github.com/cuemby/dynia/internal/dynerr"
	"github.com/cuemby/dynia/internal/provider"
	"github.com/rs/zerolog"
)

// Service assigns and reassigns a cluster's single reserved IP.
type Service struct {
	compute provider.Compute
	log     zerolog.Logger
}

func New(compute provider.Compute, log zerolog.Logger) *Service {
	return &Service{compute: compute, log: log}
}

// EnsureForCluster returns the cluster's reserved IP, creating one in
// region if reservedIPID is empty. It never binds the IP to a VM —
// callers do that explicitly via Reassign once a node is ready.
func (s *Service) EnsureForCluster(ctx context.Context, reservedIPID, region string) (ip, id string, err error) {
	if reservedIPID != "" {
		existing, listErr := s.compute.ListReservedIPs(ctx)
		if listErr != nil {
			return "", "", listErr
		}
		for _, candidate := range existing {
			if candidate.ID == reservedIPID {
				return candidate.IP, candidate.ID, nil
			}
		}
		s.log.Warn().Str("reservedIpId", reservedIPID).Msg("recorded reserved ip no longer exists at provider, recreating")
	}

	s.log.Info().Str("region", region).Msg("creating reserved ip")
	created, err := s.compute.CreateReservedIP(ctx, region)
	if err != nil {
		return "", "", err
	}
	return created.IP, created.ID, nil
}

// Reassign binds the reserved IP to vmID, implicitly unbinding
// whatever VM it was previously assigned to (spec §4.4: "exactly one
// active node" backed by the provider's atomic reassignment).
func (s *Service) Reassign(ctx context.Context, reservedIPID, vmID string) error {
	if reservedIPID == "" {
		return &dynerr.ValidationError{Field: "reservedIpId", Message: "cannot reassign an empty reserved ip id"}
	}
	if vmID == "" {
		return &dynerr.ValidationError{Field: "vmId", Message: "cannot assign reserved ip to an empty vm id"}
	}
	s.log.Info().Str("reservedIpId", reservedIPID).Str("vmId", vmID).Msg("reassigning reserved ip")
	if err := s.compute.AssignReservedIP(ctx, reservedIPID, vmID); err != nil {
		return fmt.Errorf("reassigning reserved ip %s to vm %s: %w", reservedIPID, vmID, err)
	}
	return nil
}

// Release unassigns the reserved IP from any VM without deleting it,
// used when a cluster's active node is being torn down but the
// cluster itself survives.
func (s *Service) Release(ctx context.Context, reservedIPID string) error {
	if reservedIPID == "" {
		return nil
	}
	return s.compute.UnassignReservedIP(ctx, reservedIPID)
}

// Delete permanently removes the reserved IP, used when the whole
// cluster is destroyed.
func (s *Service) Delete(ctx context.Context, reservedIPID string) error {
	if reservedIPID == "" {
		return nil
	}
	return s.compute.DeleteReservedIP(ctx, reservedIPID)
}
