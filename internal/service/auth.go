package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/repository"
)

var allowedRoles = map[string]bool{
	models.RoleAdmin:           true,
	models.RoleRealEstate:      true,
	models.RoleFinance:         true,
	models.RoleServiceProvider: true,
	models.RolePropertyOwner:   true,
}

var (
	usernameRe = regexp.MustCompile(`^[A-Za-z0-9]{3,80}$`)
	nameRe     = regexp.MustCompile(`^[A-Za-z ]{2,120}$`)
	cellRe     = regexp.MustCompile(`^\(\d{3}\) \d{5} \d{4}$`)
	emailRe    = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	upperRe    = regexp.MustCompile(`[A-Z]`)
	digitRe    = regexp.MustCompile(`\d`)
	specialRe  = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// AuthService handles login sessions and user administration.
type AuthService struct {
	store      repository.Store
	sessionTTL time.Duration
	log        zerolog.Logger
}

// NewAuthService builds the service with the configured session lifetime.
func NewAuthService(store repository.Store, sessionTTL time.Duration, log zerolog.Logger) *AuthService {
	return &AuthService{store: store, sessionTTL: sessionTTL, log: log}
}

// Login verifies credentials and opens a new session. Returns the user and
// the opaque session id for the cookie.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, *models.Session, error) {
	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, nil, domainErr(ErrUnauthorized, "invalid_credentials")
	}
	sess := &models.Session{
		ID:        newSessionID(),
		UserID:    user.ID,
		CreatedAt: nowUTC(),
		ExpiresAt: nowUTC().Add(s.sessionTTL),
	}
	if err := s.store.Sessions().Create(ctx, sess); err != nil {
		return nil, nil, err
	}
	if err := logActivity(ctx, s.store, "user_login", models.ActorStaff, &user.ID, nil,
		models.JSONMap{"user_id": user.ID, "username": user.Username, "role": user.Role}); err != nil {
		return nil, nil, err
	}
	s.log.Info().Uint("user_id", user.ID).Str("role", user.Role).Msg("user logged in")
	return user, sess, nil
}

// Logout revokes the session if it exists.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.store.Sessions().Revoke(ctx, sessionID, nowUTC())
}

// Authenticate resolves a session cookie to its live user.
func (s *AuthService) Authenticate(ctx context.Context, sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, domainErr(ErrUnauthorized, "not_authenticated")
	}
	sess, err := s.store.Sessions().Get(ctx, sessionID)
	if err != nil || sess.RevokedAt != nil {
		return nil, domainErr(ErrUnauthorized, "session_invalid")
	}
	if !nowUTC().Before(sess.ExpiresAt) {
		return nil, domainErr(ErrUnauthorized, "session_expired")
	}
	user, err := s.store.Users().Get(ctx, sess.UserID)
	if err != nil {
		return nil, domainErr(ErrUnauthorized, "user_not_found")
	}
	return user, nil
}

// SessionTTL exposes the configured session lifetime for cookie max-age.
func (s *AuthService) SessionTTL() time.Duration { return s.sessionTTL }

// UserInput carries user create/update fields; nil pointers mean unchanged
// on update.
type UserInput struct {
	Username   *string
	Password   *string
	Role       *string
	Name       *string
	CellNumber *string
	Email      *string
	CPF        *string
	Display    models.JSONMap
}

// CreateUser validates and stores a new account.
func (s *AuthService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	if in.Username == nil || in.Password == nil || in.Role == nil || in.Name == nil ||
		in.CellNumber == nil || in.Email == nil || in.CPF == nil {
		return nil, validationErr("missing_fields")
	}
	if err := validateUserFields(in); err != nil {
		return nil, err
	}
	if _, err := s.store.Users().GetByUsername(ctx, *in.Username); err == nil {
		return nil, conflictErr("username_exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}
	display := in.Display
	if display == nil {
		display = models.JSONMap{}
	}
	user := &models.User{
		Username:     *in.Username,
		PasswordHash: string(hash),
		Role:         *in.Role,
		Name:         *in.Name,
		CellNumber:   *in.CellNumber,
		Email:        *in.Email,
		CPF:          *in.CPF,
		Display:      display,
	}
	if err := s.store.Users().Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UpdateUser applies the provided fields after validation.
func (s *AuthService) UpdateUser(ctx context.Context, id uint, in UserInput) (*models.User, error) {
	user, err := s.store.Users().Get(ctx, id)
	if err != nil {
		return nil, notFoundErr("not_found")
	}
	if err := validateUserFields(in); err != nil {
		return nil, err
	}
	if in.Username != nil && *in.Username != user.Username {
		if _, err := s.store.Users().GetByUsername(ctx, *in.Username); err == nil {
			return nil, conflictErr("username_exists")
		}
		user.Username = *in.Username
	}
	if in.Password != nil && *in.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, errors.Wrap(err, "hash password")
		}
		user.PasswordHash = string(hash)
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.CellNumber != nil {
		user.CellNumber = *in.CellNumber
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.CPF != nil {
		user.CPF = *in.CPF
	}
	if in.Display != nil {
		user.Display = in.Display
	}
	if err := s.store.Users().Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// DeleteUser removes a non-admin account and its sessions.
func (s *AuthService) DeleteUser(ctx context.Context, id uint) error {
	user, err := s.store.Users().Get(ctx, id)
	if err != nil {
		return notFoundErr("not_found")
	}
	if user.Role == models.RoleAdmin {
		return forbiddenErr("admin_protected")
	}
	return s.store.Atomically(ctx, func(tx repository.Store) error {
		if err := tx.Sessions().DeleteByUser(ctx, id); err != nil {
			return err
		}
		return tx.Users().Delete(ctx, id)
	})
}

// ListUsers returns accounts, optionally filtered by role.
func (s *AuthService) ListUsers(ctx context.Context, role string) ([]models.User, error) {
	return s.store.Users().List(ctx, role)
}

func validateUserFields(in UserInput) error {
	if in.Role != nil && !allowedRoles[*in.Role] {
		return validationErr("invalid_role")
	}
	if in.Username != nil && !usernameRe.MatchString(*in.Username) {
		return validationErr("invalid_username")
	}
	if in.Password != nil && !validPassword(*in.Password) {
		return validationErr("weak_password")
	}
	if in.Name != nil && !nameRe.MatchString(*in.Name) {
		return validationErr("invalid_name")
	}
	if in.CellNumber != nil && !cellRe.MatchString(*in.CellNumber) {
		return validationErr("invalid_cell_number")
	}
	if in.Email != nil && !emailRe.MatchString(*in.Email) {
		return validationErr("invalid_email")
	}
	if in.CPF != nil && !validCPF(*in.CPF) {
		return validationErr("invalid_cpf")
	}
	return nil
}

func validPassword(value string) bool {
	if len(value) < 8 || len(value) > 72 {
		return false
	}
	return upperRe.MatchString(value) && digitRe.MatchString(value) && specialRe.MatchString(value)
}

func validCPF(value string) bool {
	return len(nonDigits.ReplaceAllString(value, "")) == 11
}

func newSessionID() string {
	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		panic(err) // crypto/rand failure is unrecoverable
	}
	return hex.EncodeToString(raw)
}
