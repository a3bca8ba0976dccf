package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/models"
	"github.com/kinhub/kinhub/internal/repository"
	"github.com/kinhub/kinhub/internal/utils"
)

// FamilyStore is the slice of FamilyRepo the service needs.
type FamilyStore interface {
	Create(ctx context.Context, f *models.Family) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Family, error)
	FindByPasscode(ctx context.Context, passcode string) (*models.Family, error)
	FindByMember(ctx context.Context, userID primitive.ObjectID) ([]models.Family, error)
	AddMember(ctx context.Context, familyID primitive.ObjectID, m models.FamilyMember) error
	RemoveMember(ctx context.Context, familyID, userID primitive.ObjectID) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type FamilyService struct {
	Families FamilyStore
}

func (s *FamilyService) Create(ctx context.Context, name string, creator primitive.ObjectID) (*models.Family, error) {
	if name == "" {
		return nil, apperr.Validation("family name is required")
	}
	family := &models.Family{
		Name:     name,
		Passcode: utils.GeneratePasscode(),
		Members: []models.FamilyMember{{
			UserID:   creator,
			Role:     models.FamilyRoleAdmin,
			JoinedAt: time.Now().UTC(),
		}},
		CreatedBy: creator,
	}
	if err := s.Families.Create(ctx, family); err != nil {
		return nil, apperr.Upstream("database unavailable", err)
	}
	return family, nil
}

// Join adds the user via the family passcode. Re-joining is an error, never
// a duplicate member entry: the in-memory check catches the common case and
// the repo's guarded $push closes the concurrent-join race.
func (s *FamilyService) Join(ctx context.Context, userID primitive.ObjectID, passcode string) (*models.Family, error) {
	if len(passcode) != 6 {
		return nil, apperr.Validation("passcode must be 6 digits")
	}
	family, err := s.Families.FindByPasscode(ctx, passcode)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.Validation("invalid passcode")
	}
	if err != nil {
		return nil, apperr.Upstream("database unavailable", err)
	}
	if family.HasMember(userID) {
		return nil, apperr.Conflict("already a member of this family")
	}
	member := models.FamilyMember{
		UserID:   userID,
		Role:     models.FamilyRoleMember,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.Families.AddMember(ctx, family.ID, member); err != nil {
		if errors.Is(err, repository.ErrDuplicateMember) {
			return nil, apperr.Conflict("already a member of this family")
		}
		return nil, apperr.Upstream("database unavailable", err)
	}
	family.Members = append(family.Members, member)
	return family, nil
}

// JoinByID adds the user to a known family, used by invitation acceptance.
// Same duplicate guards as Join.
func (s *FamilyService) JoinByID(ctx context.Context, familyID, userID primitive.ObjectID) (*models.Family, error) {
	family, err := s.Families.FindByID(ctx, familyID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("family")
	}
	if err != nil {
		return nil, apperr.Upstream("database unavailable", err)
	}
	if family.HasMember(userID) {
		return nil, apperr.Conflict("already a member of this family")
	}
	member := models.FamilyMember{
		UserID:   userID,
		Role:     models.FamilyRoleMember,
		JoinedAt: time.Now().UTC(),
	}
	if err := s.Families.AddMember(ctx, family.ID, member); err != nil {
		if errors.Is(err, repository.ErrDuplicateMember) {
			return nil, apperr.Conflict("already a member of this family")
		}
		return nil, apperr.Upstream("database unavailable", err)
	}
	family.Members = append(family.Members, member)
	return family, nil
}

// RequireMember loads a family and checks membership.
func (s *FamilyService) RequireMember(ctx context.Context, familyID, userID primitive.ObjectID) (*models.Family, error) {
	family, err := s.Families.FindByID(ctx, familyID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("family")
	}
	if err != nil {
		return nil, apperr.Upstream("database unavailable", err)
	}
	if !family.HasMember(userID) {
		return nil, apperr.Forbidden("not a member of this family")
	}
	return family, nil
}

// RequireAdmin loads a family and checks for the Admin family role.
func (s *FamilyService) RequireAdmin(ctx context.Context, familyID, userID primitive.ObjectID) (*models.Family, error) {
	family, err := s.RequireMember(ctx, familyID, userID)
	if err != nil {
		return nil, err
	}
	if family.MemberRole(userID) != models.FamilyRoleAdmin {
		return nil, apperr.Forbidden("family admin role required")
	}
	return family, nil
}

func (s *FamilyService) Update(ctx context.Context, familyID, userID primitive.ObjectID, name string) (*models.Family, error) {
	if name == "" {
		return nil, apperr.Validation("family name is required")
	}
	if _, err := s.RequireAdmin(ctx, familyID, userID); err != nil {
		return nil, err
	}
	if err := s.Families.Update(ctx, familyID, bson.M{"name": name}); err != nil {
		return nil, apperr.Upstream("database unavailable", err)
	}
	return s.Families.FindByID(ctx, familyID)
}

func (s *FamilyService) Delete(ctx context.Context, familyID, userID primitive.ObjectID) error {
	if _, err := s.RequireAdmin(ctx, familyID, userID); err != nil {
		return err
	}
	if err := s.Families.Delete(ctx, familyID); err != nil {
		return apperr.Upstream("database unavailable", err)
	}
	return nil
}

func (s *FamilyService) RegeneratePasscode(ctx context.Context, familyID, userID primitive.ObjectID) (string, error) {
	if _, err := s.RequireAdmin(ctx, familyID, userID); err != nil {
		return "", err
	}
	passcode := utils.GeneratePasscode()
	if err := s.Families.Update(ctx, familyID, bson.M{"passcode": passcode}); err != nil {
		return "", apperr.Upstream("database unavailable", err)
	}
	return passcode, nil
}
