package auth

import (
	"fmt"

	"auction-house/internal/auctionerrors"
	model "auction-house/internal/models"
	"auction-house/internal/repository"
	"auction-house/utils"

	"golang.org/x/crypto/bcrypt"
)

// AuthService implements the identity collaborator: account
// registration, credential checks and token resolution.
type AuthService struct {
	repo      repository.AuctionDB
	secretKey []byte
}

// NewAuthService creates a new AuthService instance
func NewAuthService(repo repository.AuctionDB, secret string) *AuthService {
	return &AuthService{
		repo:      repo,
		secretKey: []byte(secret),
	}
}

// Register creates a new user and returns it with a fresh auth token
func (s *AuthService) Register(username, fullName, email, password string, role model.Role) (model.User, string, error) {
	if username == "" || email == "" || password == "" {
		return model.User{}, "", fmt.Errorf("auth: %w - missing username, email or password", auctionerrors.ErrInvalidInput)
	}
	switch role {
	case model.RoleBuyer, model.RoleSeller, model.RoleBoth:
	default:
		return model.User{}, "", fmt.Errorf("auth: %w - unknown role %q", auctionerrors.ErrInvalidInput, role)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, "", fmt.Errorf("auth: failed to hash password: %w", err)
	}

	user := model.User{
		UserID:       utils.GenerateID(),
		Username:     username,
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}

	if err := s.repo.CreateUser(user); err != nil {
		return model.User{}, "", fmt.Errorf("auth: failed to create user %s: %w", email, err)
	}

	token, err := GenerateToken(user.UserID, user.Role, s.secretKey)
	if err != nil {
		return model.User{}, "", fmt.Errorf("auth: failed to issue token: %w", err)
	}

	return user, token, nil
}

// Login checks a user's credentials and returns a fresh auth token
func (s *AuthService) Login(email, password string) (model.User, string, error) {
	if email == "" || password == "" {
		return model.User{}, "", fmt.Errorf("auth: %w - missing email or password", auctionerrors.ErrInvalidInput)
	}

	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		return model.User{}, "", fmt.Errorf("auth: %w - unknown email or wrong password", auctionerrors.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return model.User{}, "", fmt.Errorf("auth: %w - unknown email or wrong password", auctionerrors.ErrUnauthorized)
	}

	token, err := GenerateToken(user.UserID, user.Role, s.secretKey)
	if err != nil {
		return model.User{}, "", fmt.Errorf("auth: failed to issue token: %w", err)
	}

	return user, token, nil
}

// ResolveIdentity maps a bearer token to a user id and role
func (s *AuthService) ResolveIdentity(token string) (string, model.Role, error) {
	claims, err := ParseToken(token, s.secretKey)
	if err != nil {
		return "", "", err
	}
	return claims.UserID, claims.Role, nil
}

// GetProfile returns the user record for an authenticated id
func (s *AuthService) GetProfile(userID string) (model.User, error) {
	user, err := s.repo.GetUser(userID)
	if err != nil {
		return model.User{}, fmt.Errorf("auth: failed to load profile %s: %w", userID, err)
	}
	return user, nil
}
