package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/orgboard/orgboard/internal/auth"
	"github.com/orgboard/orgboard/internal/db/models"
	"github.com/orgboard/orgboard/internal/db/repositories"
)

// DefaultOrgDomain is the domain assigned to the organization provisioned at
// registration.
const DefaultOrgDomain = "default.com"

// LoginResult carries everything the login handler needs to build its
// response: the authenticated user, the signed token, and its expiry.
type LoginResult struct {
	User      *models.User
	Token     string
	ExpiresAt time.Time
}

// AuthService implements registration, login, and logout.
type AuthService struct {
	db           *sql.DB
	users        *repositories.UserRepository
	orgs         *repositories.OrganizationRepository
	sessions     *repositories.SessionRepository
	hasher       *auth.Hasher
	tokens       *auth.TokenIssuer
	queryTimeout time.Duration
}

// NewAuthService creates a new auth service.
func NewAuthService(db *sql.DB, hasher *auth.Hasher, tokens *auth.TokenIssuer, queryTimeout time.Duration) *AuthService {
	return &AuthService{
		db:           db,
		users:        repositories.NewUserRepository(db),
		orgs:         repositories.NewOrganizationRepository(db),
		sessions:     repositories.NewSessionRepository(db),
		hasher:       hasher,
		tokens:       tokens,
		queryTimeout: queryTimeout,
	}
}

func (s *AuthService) boundCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// Register creates a new user account together with its default organization
// and an ownership membership, all in one transaction. The caller gets back
// the created user and organization.
func (s *AuthService) Register(ctx context.Context, email, name, password string) (*models.User, *models.Organization, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	// Advisory pre-check. The unique index is the real guard; the insert
	// below maps its violation to the same error.
	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, nil, err
	}
	if existing != nil {
		return nil, nil, ErrDuplicateEmail
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	orgName, err := s.pickDefaultOrgName(ctx, email)
	if err != nil {
		return nil, nil, err
	}

	// An in-flight registration can still take the org name between the
	// pre-check and the insert; one retry with a fresh suffix covers it.
	for attempt := 0; attempt < 2; attempt++ {
		user, org, err := s.registerTx(ctx, email, name, hash, orgName)
		if err == nil {
			return user, org, nil
		}
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, nil, ErrDuplicateEmail
		}
		if errors.Is(err, repositories.ErrDuplicateOrganizationName) && attempt == 0 {
			orgName = withSuffix(slugify(localPart(email)))
			continue
		}
		return nil, nil, err
	}
	return nil, nil, fmt.Errorf("failed to provision default organization for %s", email)
}

func (s *AuthService) registerTx(ctx context.Context, email, name, passwordHash, orgName string) (*models.User, *models.Organization, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	user := &models.User{Email: email, Name: name, PasswordHash: passwordHash}
	if err := s.users.CreateTx(ctx, tx, user); err != nil {
		return nil, nil, err
	}

	domain := DefaultOrgDomain
	org := &models.Organization{Name: orgName, Domain: &domain}
	if err := s.orgs.CreateTx(ctx, tx, org); err != nil {
		return nil, nil, err
	}

	member := &models.OrganizationMember{
		OrganizationID: org.ID,
		UserID:         user.ID,
		Role:           models.RoleOwner,
	}
	if err := s.orgs.AddMemberTx(ctx, tx, member); err != nil {
		return nil, nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("failed to commit registration: %w", err)
	}
	return user, org, nil
}

// pickDefaultOrgName derives the default organization name from the email
// local part and resolves a name already in use by appending a short suffix.
func (s *AuthService) pickDefaultOrgName(ctx context.Context, email string) (string, error) {
	base := slugify(localPart(email))
	taken, err := s.orgs.GetByName(ctx, base)
	if err != nil {
		return "", err
	}
	if taken == nil {
		return base, nil
	}
	return withSuffix(base), nil
}

var nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)

func localPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}

func slugify(s string) string {
	s = nonSlugChars.ReplaceAllString(strings.ToLower(s), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "org"
	}
	return s
}

func withSuffix(base string) string {
	return base + "-" + uuid.New().String()[:8]
}

// Login verifies the credentials and, on success, issues a token and records
// a session with the caller's IP and device. Every failure mode returns
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password, ip, device string) (*LoginResult, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		// Burn a bcrypt comparison so a missing account takes as long as a
		// wrong password.
		s.hasher.CompareDummy(password)
		return nil, ErrInvalidCredentials
	}

	if err := s.hasher.Compare(password, user.PasswordHash); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	token, expiresAt, err := s.tokens.Issue(user.ID, user.Email, user.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	session := &models.Session{
		UserID:    user.ID,
		Token:     token,
		IP:        ip,
		Device:    device,
		ExpiresAt: expiresAt,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return &LoginResult{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// Me retrieves the account behind a session token. The session row must
// still exist and be unexpired, so logout and the background sweeper revoke
// access even while the signed token itself would verify; a token that
// outlives its user stops working the same way.
func (s *AuthService) Me(ctx context.Context, token string) (*models.User, error) {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if session == nil || session.Expired(time.Now()) {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// Logout removes the session holding the given token. An unknown token is a
// no-op so that logout stays idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	ctx, cancel := s.boundCtx(ctx)
	defer cancel()

	if err := s.sessions.DeleteByToken(ctx, token); err != nil {
		slog.Error("failed to delete session on logout", "error", err)
		return err
	}
	return nil
}
