package services

import (
	"context"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/auth"
	"github.com/kinhub/kinhub/internal/models"
	"github.com/kinhub/kinhub/internal/repository"
)

// UserStore is the slice of UserRepo the auth service needs; tests swap in a
// fake.
type UserStore interface {
	Create(ctx context.Context, u *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresAt    int64  `json:"expiresAt"`
}

type AuthService struct {
	Users      UserStore
	Refresh    auth.RefreshStore
	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	if email == "" || password == "" || name == "" {
		return nil, apperr.Validation("email, password and name are required")
	}
	if len(password) < 8 {
		return nil, apperr.Validation("password must be at least 8 characters")
	}

	if _, err := s.Users.FindByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict("email already registered")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Upstream("database unavailable", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Role:         models.RoleMember,
	}
	if err := s.Users.Create(ctx, user); err != nil {
		var we mongo.WriteException
		if errors.As(err, &we) {
			for _, e := range we.WriteErrors {
				if e.Code == 11000 {
					return nil, apperr.Conflict("email already registered")
				}
			}
		}
		return nil, apperr.Upstream("database unavailable", err)
	}
	return user, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, *models.User, error) {
	user, err := s.Users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, apperr.Auth("invalid credentials")
	}
	if err != nil {
		return nil, nil, apperr.Upstream("database unavailable", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperr.Auth("invalid credentials")
	}
	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// RefreshTokens exchanges a refresh token for a new pair. The presented
// token must match the stored hash; rotation replaces it, so exchanging the
// same token twice fails the second time.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.ParseRefreshToken(refreshToken, s.JWTSecret)
	if err != nil {
		return nil, apperr.Auth("invalid refresh token")
	}
	if err := s.Refresh.Verify(ctx, claims.UserID, refreshToken); err != nil {
		return nil, apperr.Auth("invalid refresh token")
	}
	id, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		return nil, apperr.Auth("invalid refresh token")
	}
	user, err := s.Users.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Auth("invalid refresh token")
	}
	if err != nil {
		return nil, apperr.Upstream("database unavailable", err)
	}
	return s.issueTokens(ctx, user)
}

func (s *AuthService) Logout(ctx context.Context, userID primitive.ObjectID) error {
	return s.Refresh.Revoke(ctx, userID.Hex())
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, exp, err := auth.IssueAccessToken(user.ID.Hex(), user.Role, s.JWTSecret, s.AccessTTL)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	refresh, err := s.issueRefreshToken(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := s.Refresh.Save(ctx, user.ID.Hex(), refresh, s.RefreshTTL); err != nil {
		return nil, apperr.Upstream("token store unavailable", err)
	}
	return &TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    exp.Unix(),
	}, nil
}

// The refresh token is itself a long-lived JWT (so it names its user), but
// it only works while its hash is the one stored server-side.
func (s *AuthService) issueRefreshToken(user *models.User) (string, error) {
	claims := auth.Claims{
		UserID:    user.ID.Hex(),
		Role:      user.Role,
		TokenType: auth.TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID.Hex(),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.RefreshTTL)),
			Issuer:    "kinhub",
			ID:        primitive.NewObjectID().Hex(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.JWTSecret))
}
