package usecase

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/arklim/social-platform-accounts/internal/core/domain"
	"github.com/arklim/social-platform-accounts/internal/core/port"
	"github.com/arklim/social-platform-accounts/internal/infra/logger"
)

// ErrInvalidIP indicates the provided address does not parse.
var ErrInvalidIP = fmt.Errorf("invalid ip address")

// BlacklistService coordinates user and IP denial across the relational
// store and the Redis set the edge middleware consults.
type BlacklistService struct {
	entries port.BlacklistRepository
	ips     port.IPBlacklistStore
	cache   port.ProjectionCache
	log     *zap.Logger
}

// NewBlacklistService constructs a BlacklistService instance.
func NewBlacklistService(
	entries port.BlacklistRepository,
	ips port.IPBlacklistStore,
	cache port.ProjectionCache,
	log *zap.Logger,
) *BlacklistService {
	if log == nil {
		log = zap.NewNop()
	}
	return &BlacklistService{entries: entries, ips: ips, cache: cache, log: log}
}

// BlacklistUser blocks the account and records the address it was seen
// from. The IP additionally lands in the edge denial set; a failure there
// is logged but does not undo the account block.
func (s *BlacklistService) BlacklistUser(ctx context.Context, userID, ip string) error {
	if net.ParseIP(ip) == nil {
		return ErrInvalidIP
	}

	if err := s.entries.BlacklistUser(ctx, userID, ip); err != nil {
		return fmt.Errorf("blacklist user: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, userID); err != nil {
			s.log.Warn("invalidate account cache", zap.String("account_id", userID), zap.Error(err))
		}
	}

	if err := s.ips.Add(ctx, ip); err != nil {
		s.log.Error("add ip to denial set", zap.String("ip", logger.MaskIP(ip)), zap.Error(err))
	}

	s.log.Warn("user blacklisted",
		zap.String("account_id", userID),
		zap.String("ip", logger.MaskIP(ip)),
	)

	return nil
}

// IsUserBlacklisted reports whether the account has a blacklist entry.
func (s *BlacklistService) IsUserBlacklisted(ctx context.Context, userID string) (bool, error) {
	blacklisted, err := s.entries.IsUserBlacklisted(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("lookup blacklist entry: %w", err)
	}
	return blacklisted, nil
}

// GetEntry returns the blacklist entry recorded for the account.
func (s *BlacklistService) GetEntry(ctx context.Context, userID string) (*domain.BlacklistEntry, error) {
	return s.entries.GetByUser(ctx, userID)
}

// BlacklistIP adds an address to the edge denial set.
func (s *BlacklistService) BlacklistIP(ctx context.Context, ip string) error {
	if net.ParseIP(ip) == nil {
		return ErrInvalidIP
	}
	if err := s.ips.Add(ctx, ip); err != nil {
		return fmt.Errorf("blacklist ip: %w", err)
	}
	s.log.Warn("ip blacklisted", zap.String("ip", logger.MaskIP(ip)))
	return nil
}

// WhitelistIP removes an address from the edge denial set.
func (s *BlacklistService) WhitelistIP(ctx context.Context, ip string) error {
	if net.ParseIP(ip) == nil {
		return ErrInvalidIP
	}
	if err := s.ips.Remove(ctx, ip); err != nil {
		return fmt.Errorf("whitelist ip: %w", err)
	}
	s.log.Info("ip whitelisted", zap.String("ip", logger.MaskIP(ip)))
	return nil
}

// IsIPBlacklisted reports whether the address is denied.
func (s *BlacklistService) IsIPBlacklisted(ctx context.Context, ip string) (bool, error) {
	denied, err := s.ips.Contains(ctx, ip)
	if err != nil {
		return false, fmt.Errorf("lookup ip denial set: %w", err)
	}
	return denied, nil
}
