package service

import (
	"context"
	"fmt"
	"strings"

	"carcare/internal/domain"
	"carcare/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
)

// UserService holds the admin-only profile actions. Each one is idempotent.
type UserService struct {
	profiles   domain.ProfileStore
	auth       domain.AuthAdmin
	validator  *RequestValidator
	adminEmail string
	logger     *zerolog.Logger
}

func NewUserService(profiles domain.ProfileStore, auth domain.AuthAdmin, adminEmail string, logger *zerolog.Logger) *UserService {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "user_service").Logger()
	return &UserService{
		profiles:   profiles,
		auth:       auth,
		validator:  NewRequestValidator(),
		adminEmail: adminEmail,
		logger:     &l,
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.profiles.GetProfile(ctx, userID)
}

func (s *UserService) ListProfiles(ctx context.Context) ([]*models.Profile, error) {
	return s.profiles.ListProfiles(ctx)
}

// SaveProfile stores the caller's own contact and address details on an
// existing profile. Email comes from sign-in and cannot be changed here; the
// verified and blocked flags are never taken from the caller.
func (s *UserService) SaveProfile(ctx context.Context, p *models.Profile) error {
	if strings.TrimSpace(p.ID) == "" {
		return domain.Invalid("profile id is required")
	}
	current, err := s.profiles.GetProfile(ctx, p.ID)
	if err != nil {
		return fmt.Errorf("save profile %s: %w", p.ID, err)
	}
	if email := strings.TrimSpace(p.Email); email != "" && !strings.EqualFold(email, strings.TrimSpace(current.Email)) {
		return domain.Invalid("email is managed by sign-in and cannot be changed")
	}
	if err := s.profiles.UpdateProfileDetails(ctx, p); err != nil {
		return fmt.Errorf("save profile %s: %w", p.ID, err)
	}
	return nil
}

func (s *UserService) VerifyUser(ctx context.Context, userID string) error {
	return s.setFlag(ctx, "verify", userID, func() error { return s.profiles.SetVerified(ctx, userID, true) })
}

func (s *UserService) UnverifyUser(ctx context.Context, userID string) error {
	return s.setFlag(ctx, "unverify", userID, func() error { return s.profiles.SetVerified(ctx, userID, false) })
}

func (s *UserService) BlockUser(ctx context.Context, userID string) error {
	return s.setFlag(ctx, "block", userID, func() error { return s.profiles.SetBlocked(ctx, userID, true) })
}

func (s *UserService) UnblockUser(ctx context.Context, userID string) error {
	return s.setFlag(ctx, "unblock", userID, func() error { return s.profiles.SetBlocked(ctx, userID, false) })
}

func (s *UserService) setFlag(ctx context.Context, action, userID string, fn func() error) error {
	if strings.TrimSpace(userID) == "" {
		return domain.Invalid("user id is required")
	}
	if err := fn(); err != nil {
		return fmt.Errorf("%s user %s: %w", action, userID, err)
	}
	s.logger.Info().Str("user_id", userID).Str("action", action).Msg("profile updated")
	return nil
}

// ResetPassword hashes password with bcrypt and hands it to the auth provider.
func (s *UserService) ResetPassword(ctx context.Context, userID, password string) error {
	if err := s.validator.Struct(ResetPasswordRequest{Password: password}); err != nil {
		return err
	}
	if _, err := s.profiles.GetProfile(ctx, userID); err != nil {
		return fmt.Errorf("reset password %s: %w", userID, err)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.auth.SetPasswordHash(ctx, userID, hash); err != nil {
		return fmt.Errorf("reset password %s: %w", userID, err)
	}
	s.logger.Info().Str("user_id", userID).Msg("password reset")
	return nil
}
