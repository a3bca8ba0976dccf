package services

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kinhub/kinhub/internal/apperr"
	"github.com/kinhub/kinhub/internal/website"
)

type WebsiteService struct {
	Generator *website.Generator
	Store     *website.Store
	Families  *FamilyService
}

// GenerateSite builds and stores the family's site. Family admin only: the
// generated site speaks for the whole family.
func (s *WebsiteService) GenerateSite(ctx context.Context, familyID, userID primitive.ObjectID, prompt, theme string) (*website.Site, error) {
	if s.Store == nil {
		return nil, apperr.Validation("website storage is not configured")
	}
	if prompt == "" {
		return nil, apperr.Validation("prompt is required")
	}
	family, err := s.Families.RequireAdmin(ctx, familyID, userID)
	if err != nil {
		return nil, err
	}
	site, err := s.Generator.Generate(ctx, familyID.Hex(), family.Name, prompt, theme)
	if err != nil {
		return nil, apperr.Upstream("website generation failed", err)
	}
	if err := s.Store.Upsert(ctx, site); err != nil {
		return nil, apperr.Upstream("website store unavailable", err)
	}
	return site, nil
}

func (s *WebsiteService) GetSite(ctx context.Context, familyID, userID primitive.ObjectID) (*website.Site, error) {
	if s.Store == nil {
		return nil, apperr.Validation("website storage is not configured")
	}
	if _, err := s.Families.RequireMember(ctx, familyID, userID); err != nil {
		return nil, err
	}
	site, err := s.Store.FindByFamily(ctx, familyID.Hex())
	if errors.Is(err, website.ErrNotFound) {
		return nil, apperr.NotFound("website")
	}
	if err != nil {
		return nil, apperr.Upstream("website store unavailable", err)
	}
	return site, nil
}

func (s *WebsiteService) PublishSite(ctx context.Context, familyID, userID primitive.ObjectID) error {
	if s.Store == nil {
		return apperr.Validation("website storage is not configured")
	}
	if _, err := s.Families.RequireAdmin(ctx, familyID, userID); err != nil {
		return err
	}
	err := s.Store.SetStatus(ctx, familyID.Hex(), "published")
	if errors.Is(err, website.ErrNotFound) {
		return apperr.NotFound("website")
	}
	if err != nil {
		return apperr.Upstream("website store unavailable", err)
	}
	return nil
}
