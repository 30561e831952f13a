package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/classtime/classtime-api/internal/authz"
	"github.com/classtime/classtime-api/internal/models"
	"github.com/classtime/classtime-api/internal/repository"
	appErrors "github.com/classtime/classtime-api/pkg/errors"
)

// ProfileStore is the user persistence UserService needs.
type ProfileStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateProfile(ctx context.Context, id, firstName, lastName, username string, updatedAt time.Time) error
}

// UserService serves profile queries and self-service profile edits.
type UserService struct {
	users      ProfileStore
	authorizer Authorizer
	validate   *validator.Validate
	logger     *zap.Logger
}

// NewUserService constructs a UserService.
func NewUserService(users ProfileStore, authorizer Authorizer, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UserService{users: users, authorizer: authorizer, validate: validate, logger: logger}
}

// Profile returns a user's public info. Any authenticated caller may look up
// any profile.
func (s *UserService) Profile(ctx context.Context, caller models.Identity, userID string) (*models.UserInfo, error) {
	if !s.authorizer.IsAuthenticated(caller) {
		return nil, appErrors.ErrUnauthorized
	}
	if !authz.IsValidID(userID) {
		return nil, invalidField(msgInvalidUserID)
	}

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "User not found")
		}
		return nil, internalError(err)
	}

	info := user.Info()
	return &info, nil
}

// EditProfile updates the caller's own mutable profile fields.
func (s *UserService) EditProfile(ctx context.Context, caller models.Identity, req *models.EditProfileRequest) (*models.UserInfo, error) {
	if !s.authorizer.IsAuthenticated(caller) {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, failValidation(err)
	}

	now := time.Now().UTC()
	if err := s.users.UpdateProfile(ctx, caller.UserID, req.FirstName, req.LastName, req.Username, now); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "Username already in use")
		}
		return nil, internalError(err)
	}

	user, err := s.users.FindByID(ctx, caller.UserID)
	if err != nil {
		return nil, internalError(err)
	}

	s.logger.Info("profile updated", zap.String("user_id", caller.UserID))
	info := user.Info()
	return &info, nil
}
