package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/auth"
	"github.com/kinhub/kinhub/internal/models"
	"github.com/kinhub/kinhub/internal/repository"
)

type fakeUserStore struct {
	byID    map[primitive.ObjectID]*models.User
	byEmail map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:    make(map[primitive.ObjectID]*models.User),
		byEmail: make(map[string]*models.User),
	}
}

func (s *fakeUserStore) Create(ctx context.Context, u *models.User) error {
	u.ID = primitive.NewObjectID()
	s.byID[u.ID] = u
	s.byEmail[u.Email] = u
	return nil
}

func (s *fakeUserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	u, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	return nil
}

func newAuthService() *AuthService {
	return &AuthService{
		Users:      newFakeUserStore(),
		Refresh:    auth.NewMemoryRefreshStore(),
		JWTSecret:  "test-secret",
		AccessTTL:  time.Minute,
		RefreshTTL: time.Hour,
	}
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService()

	user, err := svc.Register(ctx, "ada@example.com", "hunter22", "Ada")
	require.NoError(t, err)
	require.Equal(t, models.RoleMember, user.Role)
	require.NotEmpty(t, user.PasswordHash)
	require.NotEqual(t, "hunter22", user.PasswordHash)

	pair, logged, err := svc.Login(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)
	require.Equal(t, user.ID, logged.ID)
	require.NotEmpty(t, pair.AccessToken)
	require.NotEmpty(t, pair.RefreshToken)

	claims, err := auth.ParseAccessToken(pair.AccessToken, "test-secret")
	require.NoError(t, err)
	require.Equal(t, user.ID.Hex(), claims.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService()
	_, err := svc.Register(ctx, "ada@example.com", "hunter22", "Ada")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ada@example.com", "wrong")
	require.Error(t, err)
	require.Equal(t, 401, apperr.Status(err))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService()
	_, err := svc.Register(ctx, "ada@example.com", "hunter22", "Ada")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ada@example.com", "otherpass1", "Imposter")
	require.Error(t, err)
	require.Equal(t, 409, apperr.Status(err))
}

func TestRefreshRotation(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService()
	_, err := svc.Register(ctx, "ada@example.com", "hunter22", "Ada")
	require.NoError(t, err)
	pair, _, err := svc.Login(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)

	// exchanging A yields B
	next, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)

	// a second exchange of A must fail: it was rotated out
	_, err = svc.RefreshTokens(ctx, pair.RefreshToken)
	require.Error(t, err)
	require.Equal(t, 401, apperr.Status(err))

	// B still works
	_, err = svc.RefreshTokens(ctx, next.RefreshToken)
	require.NoError(t, err)
}

// The two token kinds must not be interchangeable: a refresh token is not a
// bearer token, and an access token cannot be exchanged for a new pair.
func TestTokenKindsAreNotInterchangeable(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService()
	_, err := svc.Register(ctx, "ada@example.com", "hunter22", "Ada")
	require.NoError(t, err)
	pair, _, err := svc.Login(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)

	_, err = auth.ParseAccessToken(pair.RefreshToken, "test-secret")
	require.Error(t, err)

	_, err = svc.RefreshTokens(ctx, pair.AccessToken)
	require.Error(t, err)
	require.Equal(t, 401, apperr.Status(err))

	// rotating out a refresh token must not leave it usable anywhere
	next, err := svc.RefreshTokens(ctx, pair.RefreshToken)
	require.NoError(t, err)
	require.NotEqual(t, pair.RefreshToken, next.RefreshToken)
	_, err = auth.ParseAccessToken(pair.RefreshToken, "test-secret")
	require.Error(t, err)
}

func TestLogoutRevokesRefresh(t *testing.T) {
	ctx := context.Background()
	svc := newAuthService()
	user, err := svc.Register(ctx, "ada@example.com", "hunter22", "Ada")
	require.NoError(t, err)
	pair, _, err := svc.Login(ctx, "ada@example.com", "hunter22")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, user.ID))

	_, err = svc.RefreshTokens(ctx, pair.RefreshToken)
	require.Error(t, err)
	require.Equal(t, 401, apperr.Status(err))
}
