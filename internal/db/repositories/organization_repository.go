package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/orgboard/orgboard/internal/db/models"
)

// OrganizationRepository handles database operations for organizations and
// organization membership.
type OrganizationRepository struct {
	db *sql.DB
}

// NewOrganizationRepository creates a new organization repository.
func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

// Create inserts a new organization. A collision on the name unique index is
// reported as ErrDuplicateOrganizationName.
func (r *OrganizationRepository) Create(ctx context.Context, org *models.Organization) error {
	return r.create(ctx, r.db, org)
}

// CreateTx is Create executed inside an existing transaction.
func (r *OrganizationRepository) CreateTx(ctx context.Context, tx *sql.Tx, org *models.Organization) error {
	return r.create(ctx, tx, org)
}

func (r *OrganizationRepository) create(ctx context.Context, ex execer, org *models.Organization) error {
	if org.ID == "" {
		org.ID = uuid.New().String()
	}
	now := time.Now()
	org.CreatedAt = now
	org.UpdatedAt = now

	query := `
		INSERT INTO organizations (id, name, domain, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := ex.ExecContext(ctx, query,
		org.ID, org.Name, org.Domain, org.CreatedAt, org.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateOrganizationName
		}
		return fmt.Errorf("failed to create organization: %w", err)
	}
	return nil
}

// GetByID retrieves an organization by ID. Returns (nil, nil) when not found.
func (r *OrganizationRepository) GetByID(ctx context.Context, id string) (*models.Organization, error) {
	query := `
		SELECT id, name, domain, created_at, updated_at
		FROM organizations
		WHERE id = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

// GetByName retrieves an organization by its exact name. Returns (nil, nil)
// when not found.
func (r *OrganizationRepository) GetByName(ctx context.Context, name string) (*models.Organization, error) {
	query := `
		SELECT id, name, domain, created_at, updated_at
		FROM organizations
		WHERE name = $1
	`
	return r.scanOne(r.db.QueryRowContext(ctx, query, name))
}

func (r *OrganizationRepository) scanOne(row *sql.Row) (*models.Organization, error) {
	org := &models.Organization{}
	err := row.Scan(&org.ID, &org.Name, &org.Domain, &org.CreatedAt, &org.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get organization: %w", err)
	}
	return org, nil
}

// List retrieves all organizations in creation order.
func (r *OrganizationRepository) List(ctx context.Context) ([]*models.Organization, error) {
	query := `
		SELECT id, name, domain, created_at, updated_at
		FROM organizations
		ORDER BY created_at ASC
	`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list organizations: %w", err)
	}
	defer rows.Close()

	orgs := []*models.Organization{}
	for rows.Next() {
		org := &models.Organization{}
		if err := rows.Scan(&org.ID, &org.Name, &org.Domain, &org.CreatedAt, &org.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan organization: %w", err)
		}
		orgs = append(orgs, org)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate organizations: %w", err)
	}
	return orgs, nil
}

// Update persists new name and domain values for an organization. Returns
// ErrNotFound when no row matches, and ErrDuplicateOrganizationName when the
// new name collides with another organization.
func (r *OrganizationRepository) Update(ctx context.Context, org *models.Organization) error {
	org.UpdatedAt = time.Now()

	query := `
		UPDATE organizations
		SET name = $1, domain = $2, updated_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, org.Name, org.Domain, org.UpdatedAt, org.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateOrganizationName
		}
		return fmt.Errorf("failed to update organization: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes an organization by ID. Membership rows are removed by the
// foreign key cascade. Returns ErrNotFound when no row matches.
func (r *OrganizationRepository) Delete(ctx context.Context, id string) error {
	query := `DELETE FROM organizations WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete organization: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AddMemberTx inserts a membership row inside an existing transaction.
func (r *OrganizationRepository) AddMemberTx(ctx context.Context, tx *sql.Tx, member *models.OrganizationMember) error {
	member.CreatedAt = time.Now()

	query := `
		INSERT INTO organization_members (organization_id, user_id, role, created_at)
		VALUES ($1, $2, $3, $4)
	`
	_, err := tx.ExecContext(ctx, query,
		member.OrganizationID, member.UserID, member.Role, member.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to add organization member: %w", err)
	}
	return nil
}
