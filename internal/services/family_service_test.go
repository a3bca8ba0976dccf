package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/models"
	"github.com/kinhub/kinhub/internal/repository"
)

type fakeFamilyStore struct {
	byID map[primitive.ObjectID]*models.Family
}

func newFakeFamilyStore() *fakeFamilyStore {
	return &fakeFamilyStore{byID: make(map[primitive.ObjectID]*models.Family)}
}

func (s *fakeFamilyStore) Create(ctx context.Context, f *models.Family) error {
	f.ID = primitive.NewObjectID()
	cp := *f
	cp.Members = append([]models.FamilyMember(nil), f.Members...)
	s.byID[f.ID] = &cp
	return nil
}

func (s *fakeFamilyStore) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Family, error) {
	f, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *f
	cp.Members = append([]models.FamilyMember(nil), f.Members...)
	return &cp, nil
}

func (s *fakeFamilyStore) FindByPasscode(ctx context.Context, passcode string) (*models.Family, error) {
	for _, f := range s.byID {
		if f.Passcode == passcode {
			cp := *f
			cp.Members = append([]models.FamilyMember(nil), f.Members...)
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeFamilyStore) FindByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Family, error) {
	var out []models.Family
	for _, f := range s.byID {
		if f.HasMember(userID) {
			out = append(out, *f)
		}
	}
	return out, nil
}

// AddMember mirrors the guarded $push: a duplicate user id is rejected, not
// appended.
func (s *fakeFamilyStore) AddMember(ctx context.Context, familyID primitive.ObjectID, m models.FamilyMember) error {
	f, ok := s.byID[familyID]
	if !ok {
		return repository.ErrNotFound
	}
	if f.HasMember(m.UserID) {
		return repository.ErrDuplicateMember
	}
	f.Members = append(f.Members, m)
	return nil
}

func (s *fakeFamilyStore) RemoveMember(ctx context.Context, familyID, userID primitive.ObjectID) error {
	f, ok := s.byID[familyID]
	if !ok {
		return repository.ErrNotFound
	}
	kept := f.Members[:0]
	for _, m := range f.Members {
		if m.UserID != userID {
			kept = append(kept, m)
		}
	}
	f.Members = kept
	return nil
}

func (s *fakeFamilyStore) Update(ctx context.Context, id primitive.ObjectID, set bson.M) error {
	f, ok := s.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	if name, ok := set["name"].(string); ok {
		f.Name = name
	}
	if passcode, ok := set["passcode"].(string); ok {
		f.Passcode = passcode
	}
	return nil
}

func (s *fakeFamilyStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := s.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func TestCreateFamilySetsPasscodeAndAdmin(t *testing.T) {
	ctx := context.Background()
	svc := &FamilyService{Families: newFakeFamilyStore()}
	creator := primitive.NewObjectID()

	family, err := svc.Create(ctx, "The Smiths", creator)
	require.NoError(t, err)
	require.Len(t, family.Passcode, 6)
	require.Len(t, family.Members, 1)
	require.Equal(t, models.FamilyRoleAdmin, family.Members[0].Role)
	require.Equal(t, creator, family.Members[0].UserID)
}

func TestJoinByPasscode(t *testing.T) {
	ctx := context.Background()
	svc := &FamilyService{Families: newFakeFamilyStore()}
	creator := primitive.NewObjectID()
	family, err := svc.Create(ctx, "The Smiths", creator)
	require.NoError(t, err)

	joiner := primitive.NewObjectID()
	joined, err := svc.Join(ctx, joiner, family.Passcode)
	require.NoError(t, err)
	require.True(t, joined.HasMember(joiner))
	require.Equal(t, models.FamilyRoleMember, joined.MemberRole(joiner))
}

func TestJoinTwiceIsConflictNotDuplicate(t *testing.T) {
	ctx := context.Background()
	store := newFakeFamilyStore()
	svc := &FamilyService{Families: store}
	creator := primitive.NewObjectID()
	family, err := svc.Create(ctx, "The Smiths", creator)
	require.NoError(t, err)

	joiner := primitive.NewObjectID()
	_, err = svc.Join(ctx, joiner, family.Passcode)
	require.NoError(t, err)

	_, err = svc.Join(ctx, joiner, family.Passcode)
	require.Error(t, err)
	require.Equal(t, 409, apperr.Status(err))

	// the member list must not have grown
	stored := store.byID[family.ID]
	count := 0
	for _, m := range stored.Members {
		if m.UserID == joiner {
			count++
		}
	}
	require.Equal(t, 1, count)
}

func TestJoinBadPasscode(t *testing.T) {
	ctx := context.Background()
	svc := &FamilyService{Families: newFakeFamilyStore()}

	_, err := svc.Join(ctx, primitive.NewObjectID(), "123")
	require.Error(t, err)
	require.Equal(t, 400, apperr.Status(err))

	_, err = svc.Join(ctx, primitive.NewObjectID(), "000000")
	require.Error(t, err)
	require.Equal(t, 400, apperr.Status(err))
}

func TestRequireAdmin(t *testing.T) {
	ctx := context.Background()
	svc := &FamilyService{Families: newFakeFamilyStore()}
	creator := primitive.NewObjectID()
	family, err := svc.Create(ctx, "The Smiths", creator)
	require.NoError(t, err)

	joiner := primitive.NewObjectID()
	_, err = svc.Join(ctx, joiner, family.Passcode)
	require.NoError(t, err)

	_, err = svc.RequireAdmin(ctx, family.ID, creator)
	require.NoError(t, err)

	_, err = svc.RequireAdmin(ctx, family.ID, joiner)
	require.Error(t, err)
	require.Equal(t, 403, apperr.Status(err))

	_, err = svc.RequireMember(ctx, family.ID, primitive.NewObjectID())
	require.Error(t, err)
	require.Equal(t, 403, apperr.Status(err))
}

func TestRegeneratePasscode(t *testing.T) {
	ctx := context.Background()
	svc := &FamilyService{Families: newFakeFamilyStore()}
	creator := primitive.NewObjectID()
	family, err := svc.Create(ctx, "The Smiths", creator)
	require.NoError(t, err)

	passcode, err := svc.RegeneratePasscode(ctx, family.ID, creator)
	require.NoError(t, err)
	require.Len(t, passcode, 6)
	require.NotEqual(t, family.Passcode, passcode)

	// the old passcode no longer joins
	_, err = svc.Join(ctx, primitive.NewObjectID(), family.Passcode)
	require.Error(t, err)
}
