package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/orgboard/orgboard/internal/db/models"
	"github.com/orgboard/orgboard/internal/db/repositories"
	"github.com/orgboard/orgboard/internal/validation"
)

// OrganizationService implements organization CRUD semantics: global name
// uniqueness, tri-state domain updates, and not-found mapping.
type OrganizationService struct {
	orgs         *repositories.OrganizationRepository
	queryTimeout time.Duration
}

// NewOrganizationService creates a new organization service.
func NewOrganizationService(db *sql.DB, queryTimeout time.Duration) *OrganizationService {
	return &OrganizationService{
		orgs:         repositories.NewOrganizationRepository(db),
		queryTimeout: queryTimeout,
	}
}

func (s *OrganizationService) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// Create inserts a new organization with the given name and optional domain.
func (s *OrganizationService) Create(ctx context.Context, name string, domain *string) (*models.Organization, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	org := &models.Organization{Name: name, Domain: domain}
	if err := s.orgs.Create(ctx, org); err != nil {
		if errors.Is(err, repositories.ErrDuplicateOrganizationName) {
			return nil, ErrDuplicateOrganizationName
		}
		return nil, err
	}
	return org, nil
}

// Get retrieves one organization by id.
func (s *OrganizationService) Get(ctx context.Context, id string) (*models.Organization, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}
	return org, nil
}

// List retrieves all organizations in creation order.
func (s *OrganizationService) List(ctx context.Context) ([]*models.Organization, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	return s.orgs.List(ctx)
}

// Update applies a partial update. A nil name keeps the stored value. The
// domain change is tri-state: an absent domain field keeps the stored value,
// explicit null clears it, and a string replaces it.
func (s *OrganizationService) Update(ctx context.Context, id string, name *string, domain validation.OptionalString) (*models.Organization, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, ErrOrganizationNotFound
	}

	if name != nil {
		org.Name = *name
	}
	org.Domain = domain.Ptr(org.Domain)

	if err := s.orgs.Update(ctx, org); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateOrganizationName):
			return nil, ErrDuplicateOrganizationName
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrOrganizationNotFound
		}
		return nil, err
	}
	return org, nil
}

// Delete removes an organization by id.
func (s *OrganizationService) Delete(ctx context.Context, id string) error {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	if err := s.orgs.Delete(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrOrganizationNotFound
		}
		return err
	}
	return nil
}
