package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/repository"
)

func strPtr(v string) *string { return &v }

func validUserInput() UserInput {
	return UserInput{
		Username:   strPtr("joao123"),
		Password:   strPtr("Str0ng!pass"),
		Role:       strPtr(models.RoleRealEstate),
		Name:       strPtr("Joao Pereira"),
		CellNumber: strPtr("(011) 98765 4321"),
		Email:      strPtr("joao@example.com"),
		CPF:        strPtr("123.456.789-01"),
	}
}

func TestCreateUserAndLogin(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewAuthService(store, time.Hour, zerolog.Nop())

	user, err := svc.CreateUser(ctx, validUserInput())
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.PasswordHash == "Str0ng!pass" {
		t.Fatal("password stored in cleartext")
	}

	if _, _, err := svc.Login(ctx, "joao123", "wrong-password"); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("bad password err = %v, want Unauthorized", err)
	}
	got, sess, err := svc.Login(ctx, "joao123", "Str0ng!pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if got.ID != user.ID || sess.ID == "" {
		t.Fatalf("login result user=%d session=%q", got.ID, sess.ID)
	}

	back, err := svc.Authenticate(ctx, sess.ID)
	if err != nil || back.ID != user.ID {
		t.Fatalf("authenticate: user=%v err=%v", back, err)
	}

	if err := svc.Logout(ctx, sess.ID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := svc.Authenticate(ctx, sess.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("revoked session err = %v, want Unauthorized", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(repository.NewMemoryStore(), time.Hour, zerolog.Nop())

	cases := []struct {
		name   string
		mutate func(*UserInput)
	}{
		{"short username", func(in *UserInput) { in.Username = strPtr("ab") }},
		{"username with symbols", func(in *UserInput) { in.Username = strPtr("joao_123") }},
		{"weak password", func(in *UserInput) { in.Password = strPtr("lowercase1") }},
		{"password too short", func(in *UserInput) { in.Password = strPtr("S!1a") }},
		{"bad role", func(in *UserInput) { in.Role = strPtr("superuser") }},
		{"numeric name", func(in *UserInput) { in.Name = strPtr("Joao 2") }},
		{"bad cell format", func(in *UserInput) { in.CellNumber = strPtr("11987654321") }},
		{"bad email", func(in *UserInput) { in.Email = strPtr("not-an-email") }},
		{"short cpf", func(in *UserInput) { in.CPF = strPtr("123") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validUserInput()
			tc.mutate(&in)
			if _, err := svc.CreateUser(ctx, in); !errors.Is(err, ErrValidation) {
				t.Fatalf("err = %v, want ValidationError", err)
			}
		})
	}
}

func TestDuplicateUsernameConflicts(t *testing.T) {
	ctx := context.Background()
	svc := NewAuthService(repository.NewMemoryStore(), time.Hour, zerolog.Nop())

	if _, err := svc.CreateUser(ctx, validUserInput()); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.CreateUser(ctx, validUserInput()); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate err = %v, want Conflict", err)
	}
}

func TestDeleteUserProtectsAdmins(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewAuthService(store, time.Hour, zerolog.Nop())

	admin := &models.User{Username: "root1", Role: models.RoleAdmin, Name: "Root"}
	if err := store.Users().Create(ctx, admin); err != nil {
		t.Fatalf("seed: %v", err)
	}
	if err := svc.DeleteUser(ctx, admin.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("delete admin err = %v, want Forbidden", err)
	}
}

func TestSessionExpiry(t *testing.T) {
	ctx := context.Background()
	store := repository.NewMemoryStore()
	svc := NewAuthService(store, time.Hour, zerolog.Nop())

	user := &models.User{Username: "joao123", Role: models.RoleFinance, Name: "Joao"}
	if err := store.Users().Create(ctx, user); err != nil {
		t.Fatalf("seed: %v", err)
	}
	sess := &models.Session{
		ID:        "expired-session",
		UserID:    user.ID,
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	if err := store.Sessions().Create(ctx, sess); err != nil {
		t.Fatalf("seed session: %v", err)
	}
	if _, err := svc.Authenticate(ctx, sess.ID); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expired session err = %v, want Unauthorized", err)
	}
}
