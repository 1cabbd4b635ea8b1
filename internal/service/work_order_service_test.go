package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/repository"
	"github.com/rented/backend/internal/storage"
	"github.com/rented/backend/internal/token"
)

type fakeBlobs struct {
	removed []string
}

func (f *fakeBlobs) Save(prefix, filename string, data []byte) (storage.SavedFile, error) {
	name := prefix + "_" + filename
	return storage.SavedFile{Name: name, Path: "/tmp/uploads/" + name, URL: "/uploads/" + name}, nil
}

func (f *fakeBlobs) Remove(path string) error {
	f.removed = append(f.removed, path)
	return nil
}

type testEnv struct {
	store    *repository.MemoryStore
	wos      *WorkOrderService
	portal   *PortalService
	admin    *models.User
	property *models.Property
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := repository.NewMemoryStore()
	authority := token.NewAuthority("test-secret", 336*time.Hour)

	admin := &models.User{Username: "admin1", Role: models.RoleAdmin, Name: "Admin", PasswordHash: "x"}
	if err := store.Users().Create(ctx, admin); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	owner := &models.User{Username: "owner1", Role: models.RolePropertyOwner, Name: "Owner", PasswordHash: "x"}
	if err := store.Users().Create(ctx, owner); err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	prop := &models.Property{OwnerUserID: owner.ID, Tag: "apt-7", Address: "Rua B 42"}
	if err := store.Properties().Create(ctx, prop); err != nil {
		t.Fatalf("seed property: %v", err)
	}

	return &testEnv{
		store:    store,
		wos:      NewWorkOrderService(store, authority, nil, zerolog.Nop()),
		portal:   NewPortalService(store, authority, &fakeBlobs{}),
		admin:    admin,
		property: prop,
	}
}

func tokenFromLinks(t *testing.T, links map[string]string) string {
	t.Helper()
	value := strings.TrimPrefix(links["portal"], "/p/wo/")
	if value == "" || value == links["portal"] {
		t.Fatalf("unexpected portal link %q", links["portal"])
	}
	return value
}

func proofInput(file string) ProofInput {
	return ProofInput{
		ProviderName:    "Jose Silva",
		ProviderPhone:   "11 98765 4321",
		PixKeyType:      "cpf",
		PixKeyValue:     "12345678901",
		PixReceiverName: "Jose Silva",
		FileName:        file,
		File:            []byte("evidence"),
	}
}

func TestQuoteWorkOrderLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wo, links, err := env.wos.Create(ctx, env.admin, CreateWorkOrderInput{
		PropertyID:  env.property.ID,
		Type:        models.WorkOrderTypeQuote,
		Title:       "Fix kitchen sink",
		Description: "Leaking under the counter",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if wo.Status != models.StatusQuoteRequested {
		t.Fatalf("status = %s, want quote_requested", wo.Status)
	}
	tok1 := tokenFromLinks(t, links)

	view, err := env.portal.View(ctx, tok1)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if view.AllowedAction != models.ActionSubmitQuote {
		t.Fatalf("allowed_action = %s, want submit_quote", view.AllowedAction)
	}

	quote1, err := env.portal.SubmitQuote(ctx, tok1, QuoteInput{
		ProviderName:  "Jose Silva",
		ProviderPhone: "11 98765 4321",
		Lines:         models.QuoteLines{{Description: "parts", Amount: 200}, {Description: "labor", Amount: 300}},
		TotalAmount:   500,
	})
	if err != nil {
		t.Fatalf("submit quote: %v", err)
	}
	if quote1.ProviderPhone != "+5511987654321" {
		t.Fatalf("phone = %q, want normalized +55", quote1.ProviderPhone)
	}
	got, _ := env.store.WorkOrders().Get(ctx, wo.ID)
	if got.Status != models.StatusQuoteSubmitted {
		t.Fatalf("status = %s, want quote_submitted", got.Status)
	}

	// the bound token rejects a second submission, original quote untouched
	if _, err := env.portal.SubmitQuote(ctx, tok1, QuoteInput{
		ProviderName:  "Jose Silva",
		ProviderPhone: "11 98765 4321",
		TotalAmount:   600,
	}); !errors.Is(err, ErrDuplicateSubmission) {
		t.Fatalf("second submit err = %v, want DuplicateSubmission", err)
	}
	kept, _ := env.store.Quotes().Get(ctx, quote1.ID)
	if kept.TotalAmount != 500 {
		t.Fatalf("original quote mutated: %+v", kept)
	}

	// a competing provider quotes through a fresh link
	links2, err := env.wos.MintPortalLink(ctx, env.admin, wo.ID)
	if err != nil {
		t.Fatalf("mint link: %v", err)
	}
	quote2, err := env.portal.SubmitQuote(ctx, tokenFromLinks(t, links2), QuoteInput{
		ProviderName:  "Maria Souza",
		ProviderPhone: "11 91111 2222",
		TotalAmount:   450,
	})
	if err != nil {
		t.Fatalf("submit competing quote: %v", err)
	}

	if err := env.wos.ApproveQuote(ctx, env.admin, wo.ID, quote1.ID, 500); err != nil {
		t.Fatalf("approve quote: %v", err)
	}
	got, _ = env.store.WorkOrders().Get(ctx, wo.ID)
	if got.Status != models.StatusApprovedForExecution || got.ApprovedAmount == nil || *got.ApprovedAmount != 500 {
		t.Fatalf("after approval: %+v", got)
	}
	rejected, _ := env.store.Quotes().Get(ctx, quote2.ID)
	if rejected.Status != models.SubmissionStatusRejected {
		t.Fatalf("sibling quote status = %s, want rejected", rejected.Status)
	}

	// same link now authorizes proof submission
	view, err = env.portal.View(ctx, tok1)
	if err != nil {
		t.Fatalf("view after approval: %v", err)
	}
	if view.AllowedAction != models.ActionSubmitProof {
		t.Fatalf("allowed_action = %s, want submit_proof", view.AllowedAction)
	}
	if _, err := env.portal.SubmitProof(ctx, tok1, proofInput("done.jpg")); err != nil {
		t.Fatalf("submit proof: %v", err)
	}
	got, _ = env.store.WorkOrders().Get(ctx, wo.ID)
	if got.Status != models.StatusProofSubmitted {
		t.Fatalf("status = %s, want proof_submitted", got.Status)
	}

	if err := env.wos.ApproveProof(ctx, env.admin, wo.ID); err != nil {
		t.Fatalf("approve proof: %v", err)
	}
	got, _ = env.store.WorkOrders().Get(ctx, wo.ID)
	if got.Status != models.StatusClosed {
		t.Fatalf("status = %s, want closed", got.Status)
	}

	view, err = env.portal.View(ctx, tok1)
	if err != nil {
		t.Fatalf("view closed: %v", err)
	}
	if view.AllowedAction != models.ActionReadOnly {
		t.Fatalf("closed order allowed_action = %s, want read_only", view.AllowedAction)
	}
}

func TestFixedWorkOrderLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, _, err := env.wos.Create(ctx, env.admin, CreateWorkOrderInput{
		PropertyID:  env.property.ID,
		Type:        models.WorkOrderTypeFixed,
		Title:       "Paint facade",
		Description: "Two coats, white",
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("fixed without offer err = %v, want ValidationError", err)
	}

	offer := 800.0
	wo, links, err := env.wos.Create(ctx, env.admin, CreateWorkOrderInput{
		PropertyID:  env.property.ID,
		Type:        models.WorkOrderTypeFixed,
		Title:       "Paint facade",
		Description: "Two coats, white",
		OfferAmount: &offer,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if wo.Status != models.StatusOfferOpen {
		t.Fatalf("status = %s, want offer_open", wo.Status)
	}
	offerTok := tokenFromLinks(t, links)

	// the shared offer link collects several interests
	int1, err := env.portal.SubmitInterest(ctx, offerTok, InterestInput{ProviderName: "Jose Silva", ProviderPhone: "11 98765 4321"})
	if err != nil {
		t.Fatalf("first interest: %v", err)
	}
	int2, err := env.portal.SubmitInterest(ctx, offerTok, InterestInput{ProviderName: "Maria Souza", ProviderPhone: "11 91111 2222"})
	if err != nil {
		t.Fatalf("second interest: %v", err)
	}
	got, _ := env.store.WorkOrders().Get(ctx, wo.ID)
	if got.Status != models.StatusOfferOpen {
		t.Fatalf("interest must not move status, got %s", got.Status)
	}

	execLinks, err := env.wos.SelectInterest(ctx, env.admin, wo.ID, int1.ID)
	if err != nil {
		t.Fatalf("select interest: %v", err)
	}
	got, _ = env.store.WorkOrders().Get(ctx, wo.ID)
	if got.Status != models.StatusAssigned || got.AssignedInterestID == nil || *got.AssignedInterestID != int1.ID {
		t.Fatalf("after selection: %+v", got)
	}
	loser, _ := env.store.Interests().Get(ctx, int2.ID)
	if loser.Status != models.SubmissionStatusRejected {
		t.Fatalf("sibling interest status = %s, want rejected", loser.Status)
	}

	// the old offer link is dead
	if _, err := env.portal.View(ctx, offerTok); !errors.Is(err, token.ErrInactive) {
		t.Fatalf("old link err = %v, want TokenInactive", err)
	}
	if _, err := env.portal.SubmitProof(ctx, offerTok, proofInput("done.jpg")); !errors.Is(err, token.ErrInactive) {
		t.Fatalf("proof via old link err = %v, want TokenInactive", err)
	}

	execTok := tokenFromLinks(t, execLinks)
	if _, err := env.portal.SubmitProof(ctx, execTok, proofInput("done.jpg")); err != nil {
		t.Fatalf("submit proof: %v", err)
	}

	if err := env.wos.RequestRework(ctx, env.admin, wo.ID); err != nil {
		t.Fatalf("request rework: %v", err)
	}
	got, _ = env.store.WorkOrders().Get(ctx, wo.ID)
	if got.Status != models.StatusReworkRequested {
		t.Fatalf("status = %s, want rework_requested", got.Status)
	}

	if _, err := env.portal.SubmitProof(ctx, execTok, proofInput("redone.jpg")); err != nil {
		t.Fatalf("resubmit proof: %v", err)
	}
	if err := env.wos.ApproveProof(ctx, env.admin, wo.ID); err != nil {
		t.Fatalf("approve proof: %v", err)
	}
	got, _ = env.store.WorkOrders().Get(ctx, wo.ID)
	if got.Status != models.StatusClosed {
		t.Fatalf("status = %s, want closed", got.Status)
	}
}

func TestStartMovesIntoExecution(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wo, _, err := env.wos.Create(ctx, env.admin, CreateWorkOrderInput{
		PropertyID:  env.property.ID,
		Type:        models.WorkOrderTypeQuote,
		Title:       "Replace lock",
		Description: "Front door",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := env.wos.Start(ctx, env.admin, wo.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("start before approval err = %v, want InvalidState", err)
	}

	got, _ := env.store.WorkOrders().Get(ctx, wo.ID)
	got.Status = models.StatusApprovedForExecution
	if err := env.store.WorkOrders().Update(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	if err := env.wos.Start(ctx, env.admin, wo.ID); err != nil {
		t.Fatalf("start: %v", err)
	}
	got, _ = env.store.WorkOrders().Get(ctx, wo.ID)
	if got.Status != models.StatusInProgress {
		t.Fatalf("status = %s, want in_progress", got.Status)
	}
}

func TestCancelKillsEveryToken(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	wo, links, err := env.wos.Create(ctx, env.admin, CreateWorkOrderInput{
		PropertyID:  env.property.ID,
		Type:        models.WorkOrderTypeQuote,
		Title:       "Fix gate",
		Description: "Automatic gate stuck",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	tok := tokenFromLinks(t, links)

	if err := env.wos.Cancel(ctx, env.admin, wo.ID); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	got, _ := env.store.WorkOrders().Get(ctx, wo.ID)
	if got.Status != models.StatusCanceled {
		t.Fatalf("status = %s, want canceled", got.Status)
	}
	if _, err := env.portal.View(ctx, tok); !errors.Is(err, token.ErrInactive) {
		t.Fatalf("view after cancel err = %v, want TokenInactive", err)
	}
	if err := env.wos.Cancel(ctx, env.admin, wo.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("cancel twice err = %v, want InvalidState", err)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if _, _, err := env.wos.Create(ctx, env.admin, CreateWorkOrderInput{
		PropertyID:  env.property.ID,
		Type:        "hourly",
		Title:       "Something",
		Description: "Something",
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("bad type err = %v, want ValidationError", err)
	}

	if _, _, err := env.wos.Create(ctx, env.admin, CreateWorkOrderInput{
		PropertyID:  999,
		Type:        models.WorkOrderTypeQuote,
		Title:       "Something",
		Description: "Something",
	}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("missing property err = %v, want NotFound", err)
	}
}

func TestPortalRejectsUnknownToken(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.portal.View(context.Background(), "not-a-real-token"); !errors.Is(err, token.ErrNotFound) {
		t.Fatalf("err = %v, want TokenNotFound", err)
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"11 98765 4321", "+5511987654321"},
		{"(11) 8765-4321", "+551187654321"},
		{"5511987654321", "+5511987654321"},
		{"+55 11 98765-4321", "+5511987654321"},
	}
	for _, tc := range cases {
		if got := normalizePhone(tc.in); got != tc.want {
			t.Errorf("normalizePhone(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
