package services

import (
	"context"
	"errors"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
	"github.com/tmuthoni/chama_backend/internal/core/ports"
)

const defaultDividends = 0.10

type SharesService struct {
	repo     ports.SharesRepository
	userRepo ports.UserRepository
	logger   ports.LoggerPort
}

func NewSharesService(
	repo ports.SharesRepository,
	userRepo ports.UserRepository,
	logger ports.LoggerPort,
) *SharesService {
	return &SharesService{
		repo:     repo,
		userRepo: userRepo,
		logger:   logger,
	}
}

func validateShares(shares *domain.Shares) error {
	if shares.Shares < 0 {
		return domain.NewValidationError("shares must be >= 0")
	}
	if shares.Dividends < 0 {
		return domain.NewValidationError("dividends must be >= 0")
	}
	if shares.Penalties < 0 {
		return domain.NewValidationError("penalties must be >= 0")
	}
	return nil
}

func (ss *SharesService) MemberShares(ctx context.Context, memberID int64) (*domain.Shares, error) {
	return ss.repo.GetSharesByMember(ctx, memberID)
}

func (ss *SharesService) ListShares(ctx context.Context, memberID int64) ([]*domain.Shares, error) {
	if memberID > 0 {
		shares, err := ss.repo.GetSharesByMember(ctx, memberID)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return []*domain.Shares{}, nil
			}
			return nil, err
		}
		return []*domain.Shares{shares}, nil
	}
	return ss.repo.ListShares(ctx)
}

// CreateShares opens a member's share-capital record. One record per
// member; an existing record must be updated, not re-created.
func (ss *SharesService) CreateShares(ctx context.Context, shares *domain.Shares) (*domain.Shares, error) {
	if shares.Dividends == 0 {
		shares.Dividends = defaultDividends
	}
	if err := validateShares(shares); err != nil {
		return nil, err
	}

	if _, err := ss.userRepo.GetUserByID(ctx, shares.MemberID); err != nil {
		return nil, err
	}

	existing, err := ss.repo.GetSharesByMember(ctx, shares.MemberID)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrSharesExist
	}

	created, err := ss.repo.CreateShares(ctx, shares)
	if err != nil {
		ss.logger.Error("Failed to create shares record", map[string]interface{}{
			"member_id": shares.MemberID,
			"error":     err.Error(),
		})
		return nil, err
	}
	return created, nil
}

func (ss *SharesService) UpdateShares(ctx context.Context, shares *domain.Shares) (*domain.Shares, error) {
	if shares.Dividends == 0 {
		shares.Dividends = defaultDividends
	}
	if err := validateShares(shares); err != nil {
		return nil, err
	}

	if _, err := ss.repo.GetSharesByMember(ctx, shares.MemberID); err != nil {
		return nil, err
	}

	updated, err := ss.repo.UpdateShares(ctx, shares)
	if err != nil {
		ss.logger.Error("Failed to update shares", map[string]interface{}{
			"member_id": shares.MemberID,
			"error":     err.Error(),
		})
		return nil, err
	}
	return updated, nil
}

func (ss *SharesService) DeleteShares(ctx context.Context, memberID int64) error {
	if _, err := ss.repo.GetSharesByMember(ctx, memberID); err != nil {
		return err
	}

	if err := ss.repo.DeleteShares(ctx, memberID); err != nil {
		ss.logger.Error("Failed to delete shares", map[string]interface{}{
			"member_id": memberID,
			"error":     err.Error(),
		})
		return err
	}
	return nil
}

var _ ports.SharesService = (*SharesService)(nil)
