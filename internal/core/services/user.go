package services

import (
	"context"
	"fmt"

	"github.com/tmuthoni/chama_backend/internal/core/domain"
	"github.com/tmuthoni/chama_backend/internal/core/ports"
)

type UserService struct {
	repo   ports.UserRepository
	logger ports.LoggerPort
	cache  ports.CachePort
}

func NewUserService(
	repo ports.UserRepository,
	logger ports.LoggerPort,
	cache ports.CachePort,
) *UserService {
	return &UserService{
		repo:   repo,
		logger: logger,
		cache:  cache,
	}
}

// AssignRole changes a user's role. The change is visible on the user's
// next authorized request because role checks read the store, not the
// session token.
func (us *UserService) AssignRole(ctx context.Context, id int64, role domain.UserRole) (*domain.User, error) {
	if !domain.ValidRole(role) {
		return nil, domain.ErrInvalidRole
	}

	user, err := us.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.Role != role {
		if err := us.repo.UpdateRole(ctx, id, role); err != nil {
			us.logger.Error("Failed to update role", map[string]interface{}{
				"user_id": id,
				"role":    role,
				"error":   err.Error(),
			})
			return nil, err
		}
		user.Role = role
		us.invalidateUserCache(ctx, user)
	}

	us.logger.Info("Role assigned", map[string]interface{}{
		"user_id": id,
		"role":    role,
	})
	return user, nil
}

func (us *UserService) ListUsers(ctx context.Context, role domain.UserRole) ([]*domain.User, error) {
	users, err := us.repo.ListUsers(ctx, role)
	if err != nil {
		us.logger.Error("Failed to list users", map[string]interface{}{
			"role":  role,
			"error": err.Error(),
		})
		return nil, err
	}
	return users, nil
}

func (us *UserService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := us.repo.GetUserByID(ctx, id)
	if err != nil {
		us.logger.Debug("Failed to get user", map[string]interface{}{
			"user_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}
	return user, nil
}

// DeleteUser removes the account. Dependent loans, payments and shares
// go with it through the store's cascade rules.
func (us *UserService) DeleteUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := us.repo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := us.repo.DeleteUser(ctx, id); err != nil {
		us.logger.Error("Failed to delete user", map[string]interface{}{
			"user_id": id,
			"error":   err.Error(),
		})
		return nil, err
	}

	us.invalidateUserCache(ctx, user)
	us.logger.Info("User deleted", map[string]interface{}{
		"user_id": id,
	})
	return user, nil
}

func (us *UserService) invalidateUserCache(ctx context.Context, user *domain.User) {
	if err := us.cache.Delete(ctx, fmt.Sprintf("user:%d", user.MemberID)); err != nil {
		us.logger.Warn("Failed to invalidate user cache", map[string]interface{}{
			"error":   err.Error(),
			"user_id": user.MemberID,
		})
	}
	if err := us.cache.Delete(ctx, fmt.Sprintf("user_email:%s", user.Email)); err != nil {
		us.logger.Warn("Failed to invalidate user email cache", map[string]interface{}{
			"error": err.Error(),
			"email": user.Email,
		})
	}
}

var _ ports.UserService = (*UserService)(nil)
