package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"

	"github.com/orgboard/orgboard/internal/validation"
)

func newOrgService(t *testing.T) (*OrganizationService, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewOrganizationService(db, 5*time.Second), mock
}

func orgRow(id, name string, domain *string) *sqlmock.Rows {
	return sqlmock.NewRows(orgCols).
		AddRow(id, name, domain, time.Now(), time.Now())
}

func strPtr(s string) *string { return &s }

// ---------------------------------------------------------------------------
// Create
// ---------------------------------------------------------------------------

func TestOrgCreate_Success(t *testing.T) {
	svc, mock := newOrgService(t)
	mock.ExpectExec("INSERT INTO organizations").
		WillReturnResult(sqlmock.NewResult(1, 1))

	domain := "acme.com"
	org, err := svc.Create(context.Background(), "Acme", &domain)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org.ID == "" {
		t.Error("expected ID to be set")
	}
	if org.Domain == nil || *org.Domain != "acme.com" {
		t.Errorf("Domain = %v, want acme.com", org.Domain)
	}
}

func TestOrgCreate_NilDomain(t *testing.T) {
	svc, mock := newOrgService(t)
	mock.ExpectExec("INSERT INTO organizations").
		WillReturnResult(sqlmock.NewResult(1, 1))

	org, err := svc.Create(context.Background(), "NoDomain", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org.Domain != nil {
		t.Errorf("Domain = %v, want nil", org.Domain)
	}
}

func TestOrgCreate_DuplicateName(t *testing.T) {
	svc, mock := newOrgService(t)
	mock.ExpectExec("INSERT INTO organizations").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "organizations_name_key"})

	_, err := svc.Create(context.Background(), "Acme", nil)
	if !errors.Is(err, ErrDuplicateOrganizationName) {
		t.Errorf("err = %v, want ErrDuplicateOrganizationName", err)
	}
}

// ---------------------------------------------------------------------------
// Get / List
// ---------------------------------------------------------------------------

func TestOrgGet_Found(t *testing.T) {
	svc, mock := newOrgService(t)
	mock.ExpectQuery("SELECT.*FROM organizations.*WHERE id").
		WithArgs("org-1").
		WillReturnRows(orgRow("org-1", "Acme", nil))

	org, err := svc.Get(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org.Name != "Acme" {
		t.Errorf("Name = %s, want Acme", org.Name)
	}
}

func TestOrgGet_NotFound(t *testing.T) {
	svc, mock := newOrgService(t)
	mock.ExpectQuery("SELECT.*FROM organizations.*WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(orgCols))

	_, err := svc.Get(context.Background(), "missing")
	if !errors.Is(err, ErrOrganizationNotFound) {
		t.Errorf("err = %v, want ErrOrganizationNotFound", err)
	}
}

func TestOrgList_Success(t *testing.T) {
	svc, mock := newOrgService(t)
	mock.ExpectQuery("SELECT.*FROM organizations.*ORDER BY created_at").
		WillReturnRows(sqlmock.NewRows(orgCols).
			AddRow("org-1", "Acme", nil, time.Now(), time.Now()).
			AddRow("org-2", "Globex", nil, time.Now(), time.Now()))

	orgs, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(orgs) != 2 {
		t.Errorf("len(orgs) = %d, want 2", len(orgs))
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func domainField(t *testing.T, doc string) validation.OptionalString {
	t.Helper()
	var payload struct {
		Domain validation.OptionalString `json:"domain"`
	}
	if err := json.Unmarshal([]byte(doc), &payload); err != nil {
		t.Fatalf("decode %q: %v", doc, err)
	}
	return payload.Domain
}

func TestOrgUpdate_AbsentDomainKeepsValue(t *testing.T) {
	svc, mock := newOrgService(t)
	domain := "keep.me"
	mock.ExpectQuery("SELECT.*FROM organizations.*WHERE id").
		WithArgs("org-1").
		WillReturnRows(orgRow("org-1", "Acme", &domain))
	mock.ExpectExec("UPDATE organizations SET").
		WithArgs("Acme Renamed", &domain, sqlmock.AnyArg(), "org-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	org, err := svc.Update(context.Background(), "org-1", strPtr("Acme Renamed"), domainField(t, `{}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org.Domain == nil || *org.Domain != "keep.me" {
		t.Errorf("Domain = %v, want keep.me", org.Domain)
	}
}

func TestOrgUpdate_NullDomainClearsValue(t *testing.T) {
	svc, mock := newOrgService(t)
	domain := "clear.me"
	mock.ExpectQuery("SELECT.*FROM organizations.*WHERE id").
		WithArgs("org-1").
		WillReturnRows(orgRow("org-1", "Acme", &domain))
	mock.ExpectExec("UPDATE organizations SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	org, err := svc.Update(context.Background(), "org-1", strPtr("Acme"), domainField(t, `{"domain":null}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org.Domain != nil {
		t.Errorf("Domain = %v, want nil", *org.Domain)
	}
}

func TestOrgUpdate_DomainValueReplaces(t *testing.T) {
	svc, mock := newOrgService(t)
	mock.ExpectQuery("SELECT.*FROM organizations.*WHERE id").
		WithArgs("org-1").
		WillReturnRows(orgRow("org-1", "Acme", nil))
	mock.ExpectExec("UPDATE organizations SET").
		WillReturnResult(sqlmock.NewResult(0, 1))

	org, err := svc.Update(context.Background(), "org-1", strPtr("Acme"), domainField(t, `{"domain":"new.example.com"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org.Domain == nil || *org.Domain != "new.example.com" {
		t.Errorf("Domain = %v, want new.example.com", org.Domain)
	}
}

func TestOrgUpdate_NilNameKeepsValue(t *testing.T) {
	svc, mock := newOrgService(t)
	mock.ExpectQuery("SELECT.*FROM organizations.*WHERE id").
		WithArgs("org-1").
		WillReturnRows(orgRow("org-1", "Acme", nil))
	mock.ExpectExec("UPDATE organizations SET").
		WithArgs("Acme", strPtr("new.example.com"), sqlmock.AnyArg(), "org-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	org, err := svc.Update(context.Background(), "org-1", nil, domainField(t, `{"domain":"new.example.com"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if org.Name != "Acme" {
		t.Errorf("Name = %q, want Acme", org.Name)
	}
	if org.Domain == nil || *org.Domain != "new.example.com" {
		t.Errorf("Domain = %v, want new.example.com", org.Domain)
	}
}

func TestOrgUpdate_NotFound(t *testing.T) {
	svc, mock := newOrgService(t)
	mock.ExpectQuery("SELECT.*FROM organizations.*WHERE id").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(orgCols))

	_, err := svc.Update(context.Background(), "missing", strPtr("Ghost"), validation.OptionalString{})
	if !errors.Is(err, ErrOrganizationNotFound) {
		t.Errorf("err = %v, want ErrOrganizationNotFound", err)
	}
}

func TestOrgUpdate_DuplicateName(t *testing.T) {
	svc, mock := newOrgService(t)
	mock.ExpectQuery("SELECT.*FROM organizations.*WHERE id").
		WithArgs("org-1").
		WillReturnRows(orgRow("org-1", "Acme", nil))
	mock.ExpectExec("UPDATE organizations SET").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "organizations_name_key"})

	_, err := svc.Update(context.Background(), "org-1", strPtr("Taken"), validation.OptionalString{})
	if !errors.Is(err, ErrDuplicateOrganizationName) {
		t.Errorf("err = %v, want ErrDuplicateOrganizationName", err)
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestOrgDelete_Success(t *testing.T) {
	svc, mock := newOrgService(t)
	mock.ExpectExec("DELETE FROM organizations WHERE id").
		WithArgs("org-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := svc.Delete(context.Background(), "org-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOrgDelete_NotFound(t *testing.T) {
	svc, mock := newOrgService(t)
	mock.ExpectExec("DELETE FROM organizations WHERE id").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Delete(context.Background(), "missing")
	if !errors.Is(err, ErrOrganizationNotFound) {
		t.Errorf("err = %v, want ErrOrganizationNotFound", err)
	}
}
