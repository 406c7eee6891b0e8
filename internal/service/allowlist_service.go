package service

import (
	"context"
	"net/netip"

	"insights-be/internal/domain"
	"insights-be/internal/repository"
	apperrors "insights-be/pkg/errors"
	"insights-be/pkg/logger"
)

// allowListService fronts the allow-list repository for the admin endpoints,
// adding IP validation so malformed literals never reach the store.
type allowListService struct {
	repo   repository.AllowListRepository
	logger *logger.Logger
}

// NewAllowListService creates a new allow-list service
func NewAllowListService(repo repository.AllowListRepository, log *logger.Logger) AllowListService {
	return &allowListService{repo: repo, logger: log}
}

// List returns all allow-list entries
func (s *allowListService) List(ctx context.Context) ([]domain.AllowListEntry, error) {
	return s.repo.GetAll(ctx)
}

// Put validates the IP literal and stores the entry
func (s *allowListService) Put(ctx context.Context, ip, note string) error {
	if _, err := netip.ParseAddr(ip); err != nil {
		return apperrors.NewInvalidQueryError("ip_address must be a valid IPv4 or IPv6 literal", map[string]interface{}{
			"ip_address": ip,
		})
	}

	if err := s.repo.Put(ctx, ip, note); err != nil {
		return err
	}

	s.logger.WithField("ip", ip).Info("Allow-list entry stored")
	return nil
}

// Remove deletes the entry for an IP
func (s *allowListService) Remove(ctx context.Context, ip string) error {
	if err := s.repo.Remove(ctx, ip); err != nil {
		return err
	}

	s.logger.WithField("ip", ip).Info("Allow-list entry removed")
	return nil
}
