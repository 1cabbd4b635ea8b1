package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/repository"
	"github.com/rented/backend/internal/token"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func boolPtr(v bool) *bool { return &v }

func newPropertyEnv(t *testing.T) (*repository.MemoryStore, *PropertyService, *models.User) {
	t.Helper()
	store := repository.NewMemoryStore()
	owner := &models.User{Username: "owner1", Role: models.RolePropertyOwner, Name: "Owner"}
	if err := store.Users().Create(context.Background(), owner); err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	return store, NewPropertyService(store, &fakeBlobs{}, zerolog.Nop()), owner
}

func TestCreatePropertyValidation(t *testing.T) {
	ctx := context.Background()
	_, svc, owner := newPropertyEnv(t)

	if _, err := svc.Create(ctx, PropertyInput{
		OwnerUserID: &owner.ID,
		Tag:         strPtr("  "),
		Address:     strPtr("Rua E 10"),
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("blank tag err = %v, want ValidationError", err)
	}

	if _, err := svc.Create(ctx, PropertyInput{
		OwnerUserID: &owner.ID,
		Tag:         strPtr("apt-1"),
		Address:     strPtr("Rua E 10"),
		Bedrooms:    intPtr(-1),
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("negative bedrooms err = %v, want ValidationError", err)
	}

	if _, err := svc.Create(ctx, PropertyInput{
		OwnerUserID: &owner.ID,
		Tag:         strPtr("apt-1"),
		Address:     strPtr("Rua E 10"),
		IsRented:    boolPtr(true),
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("rented without current rent err = %v, want ValidationError", err)
	}

	prop, err := svc.Create(ctx, PropertyInput{
		OwnerUserID: &owner.ID,
		Tag:         strPtr("apt-1"),
		Address:     strPtr("Rua E 10"),
		Bedrooms:    intPtr(2),
		IsRented:    boolPtr(true),
		CurrentRent: floatPtr(2500),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if prop.Bedrooms != 2 || !prop.IsRented {
		t.Fatalf("created = %+v", prop)
	}
}

func TestCreatePropertyRejectsNonOwnerUser(t *testing.T) {
	ctx := context.Background()
	store, svc, _ := newPropertyEnv(t)

	staff := &models.User{Username: "staff1", Role: models.RoleRealEstate, Name: "Staff"}
	if err := store.Users().Create(ctx, staff); err != nil {
		t.Fatalf("seed staff: %v", err)
	}
	if _, err := svc.Create(ctx, PropertyInput{
		OwnerUserID: &staff.ID,
		Tag:         strPtr("apt-2"),
		Address:     strPtr("Rua E 11"),
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("staff owner err = %v, want ValidationError", err)
	}
}

func TestPhotoLimit(t *testing.T) {
	ctx := context.Background()
	_, svc, owner := newPropertyEnv(t)

	prop, err := svc.Create(ctx, PropertyInput{
		OwnerUserID: &owner.ID,
		Tag:         strPtr("apt-1"),
		Address:     strPtr("Rua E 10"),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	for i := 0; i < maxPropertyPhotos; i++ {
		if _, err := svc.AddPhoto(ctx, prop.ID, "front.jpg", []byte{1}); err != nil {
			t.Fatalf("photo %d: %v", i, err)
		}
	}
	if _, err := svc.AddPhoto(ctx, prop.ID, "extra.jpg", []byte{1}); !errors.Is(err, ErrValidation) {
		t.Fatalf("over-limit err = %v, want ValidationError", err)
	}
}

// Deleting a property must take its documents, extractions, work orders and
// every child of those work orders with it.
func TestDeletePropertyCascades(t *testing.T) {
	ctx := context.Background()
	store, svc, owner := newPropertyEnv(t)

	prop, err := svc.Create(ctx, PropertyInput{
		OwnerUserID: &owner.ID,
		Tag:         strPtr("apt-1"),
		Address:     strPtr("Rua E 10"),
		Display:     models.JSONMap{"tenant_name": "Bruno Lima"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	admin := &models.User{Username: "admin1", Role: models.RoleAdmin, Name: "Admin"}
	if err := store.Users().Create(ctx, admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	authority := token.NewAuthority("test-secret", 336*time.Hour)
	wos := NewWorkOrderService(store, authority, nil, zerolog.Nop())
	wo, _, err := wos.Create(ctx, admin, CreateWorkOrderInput{
		PropertyID:  prop.ID,
		Type:        models.WorkOrderTypeQuote,
		Title:       "Fix roof",
		Description: "Tiles missing",
	})
	if err != nil {
		t.Fatalf("create work order: %v", err)
	}

	doc := &models.Document{PropertyID: prop.ID, Name: "lease.txt", Path: "/tmp/lease.txt", Status: models.DocumentStatusUploaded}
	if err := store.Documents().Create(ctx, doc); err != nil {
		t.Fatalf("seed document: %v", err)
	}

	if err := svc.Delete(ctx, admin.ID, prop.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, err := store.Properties().Get(ctx, prop.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatal("property survived delete")
	}
	if _, err := store.WorkOrders().Get(ctx, wo.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatal("work order survived delete")
	}
	if _, err := store.Documents().Get(ctx, doc.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatal("document survived delete")
	}
	toks, _ := store.Tokens().ListByWorkOrder(ctx, wo.ID)
	if len(toks) != 0 {
		t.Fatalf("tokens survived delete: %v", toks)
	}
	if _, err := store.Contracts().GetByProperty(ctx, prop.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatal("contract mirror survived delete")
	}
}

func TestCreatePropertySyncsContract(t *testing.T) {
	ctx := context.Background()
	store, svc, owner := newPropertyEnv(t)

	prop, err := svc.Create(ctx, PropertyInput{
		OwnerUserID: &owner.ID,
		Tag:         strPtr("apt-1"),
		Address:     strPtr("Rua E 10"),
		IsRented:    boolPtr(true),
		CurrentRent: floatPtr(1800),
		Display: models.JSONMap{
			"tenant_name":     "Bruno Lima",
			"tenant_cpf":      "555.666.777-88",
			"landlord_name":   "Ana Souza",
			"contract_number": "2024/17",
			"payment_day":     "5",
			"includes_iptu":   true,
			"contract_fields": map[string]any{"term_months": 30},
		},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	contract, err := store.Contracts().GetByProperty(ctx, prop.ID)
	if err != nil {
		t.Fatalf("contract mirror missing: %v", err)
	}
	if contract.TenantName != "Bruno Lima" || contract.LandlordName != "Ana Souza" {
		t.Fatalf("parties = %+v", contract)
	}
	if contract.ContractNumber != "2024/17" {
		t.Fatalf("contract number = %s", contract.ContractNumber)
	}
	if contract.PaymentDay == nil || *contract.PaymentDay != 5 {
		t.Fatalf("payment day = %v", contract.PaymentDay)
	}
	if !contract.IncludesIPTU {
		t.Fatal("includes_iptu not mirrored")
	}
	if contract.RentAmountCents == nil || *contract.RentAmountCents != 180000 {
		t.Fatalf("rent cents = %v", contract.RentAmountCents)
	}
	if contract.Fields["term_months"] != 30 {
		t.Fatalf("fields = %v", contract.Fields)
	}
}

func TestUpdatePropertyRewritesContract(t *testing.T) {
	ctx := context.Background()
	store, svc, owner := newPropertyEnv(t)

	prop, err := svc.Create(ctx, PropertyInput{
		OwnerUserID: &owner.ID,
		Tag:         strPtr("apt-1"),
		Address:     strPtr("Rua E 10"),
		Display:     models.JSONMap{"tenant_name": "Bruno Lima"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	first, err := store.Contracts().GetByProperty(ctx, prop.ID)
	if err != nil {
		t.Fatalf("contract after create: %v", err)
	}

	if _, err := svc.Update(ctx, prop.ID, PropertyInput{
		Display: models.JSONMap{"tenant_name": "Carla Dias", "guarantor_name": "Davi Reis"},
	}); err != nil {
		t.Fatalf("update: %v", err)
	}

	second, err := store.Contracts().GetByProperty(ctx, prop.ID)
	if err != nil {
		t.Fatalf("contract after update: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("contract row replaced, id %d -> %d", first.ID, second.ID)
	}
	if second.TenantName != "Carla Dias" || second.GuarantorName != "Davi Reis" {
		t.Fatalf("updated contract = %+v", second)
	}
}

func TestPropertyWithoutContractDataSkipsMirror(t *testing.T) {
	ctx := context.Background()
	store, svc, owner := newPropertyEnv(t)

	prop, err := svc.Create(ctx, PropertyInput{
		OwnerUserID: &owner.ID,
		Tag:         strPtr("apt-1"),
		Address:     strPtr("Rua E 10"),
		Display:     models.JSONMap{"floor": 2, "facing": "north"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.Contracts().GetByProperty(ctx, prop.ID); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("mirror created without contract data, err = %v", err)
	}
}
