package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/rented/backend/internal/ai"
	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/repository"
	"github.com/rented/backend/internal/service"
	"github.com/rented/backend/internal/storage"
	"github.com/rented/backend/internal/token"
)

type nopDispatcher struct{}

func (nopDispatcher) Dispatch(ctx context.Context, documentID uint) error { return nil }

type stubExtractor struct{}

func (stubExtractor) Extract(ctx context.Context, docType, text string) (ai.ExtractionResult, error) {
	return ai.ExtractionResult{DocType: docType, Fields: map[string]any{}, Confidence: 0.5}, nil
}

type testServer struct {
	srv    *Server
	store  *repository.MemoryStore
	cookie *http.Cookie
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := repository.NewMemoryStore()
	authority := token.NewAuthority("test-secret", 336*time.Hour)
	blobs, err := storage.New(t.TempDir())
	if err != nil {
		t.Fatalf("storage: %v", err)
	}
	log := zerolog.Nop()

	auth := service.NewAuthService(store, time.Hour, log)
	srv := NewServer(
		auth,
		service.NewPropertyService(store, blobs, log),
		service.NewDocumentService(store, blobs, nopDispatcher{}, log),
		service.NewWorkOrderService(store, authority, nil, log),
		service.NewPortalService(store, authority, blobs),
		service.NewActivityService(store),
		service.NewImportService(store, stubExtractor{}, 0, 0, log),
		blobs,
		Options{CookieName: "session_id"},
		log,
	)

	username := "admin1"
	password := "Str0ng!pass"
	name := "Admin User"
	role := models.RoleAdmin
	cell := "(011) 98765 4321"
	email := "admin@example.com"
	cpf := "12345678901"
	if _, err := auth.CreateUser(context.Background(), service.UserInput{
		Username:   &username,
		Password:   &password,
		Role:       &role,
		Name:       &name,
		CellNumber: &cell,
		Email:      &email,
		CPF:        &cpf,
	}); err != nil {
		t.Fatalf("seed admin: %v", err)
	}

	ts := &testServer{srv: srv, store: store}
	resp := ts.do(t, http.MethodPost, "/auth/login", map[string]any{
		"username": "admin1",
		"password": "Str0ng!pass",
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("login status = %d body = %s", resp.Code, resp.Body.String())
	}
	for _, c := range resp.Result().Cookies() {
		if c.Name == "session_id" {
			ts.cookie = c
		}
	}
	if ts.cookie == nil {
		t.Fatal("login did not set a session cookie")
	}
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if ts.cookie != nil {
		req.AddCookie(ts.cookie)
	}
	rec := httptest.NewRecorder()
	ts.srv.Engine.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) createProperty(t *testing.T) uint {
	t.Helper()
	ctx := context.Background()
	owner := &models.User{Username: "owner9", Role: models.RolePropertyOwner, Name: "Owner"}
	if err := ts.store.Users().Create(ctx, owner); err != nil {
		t.Fatalf("seed owner: %v", err)
	}
	resp := ts.do(t, http.MethodPost, "/api/properties", map[string]any{
		"owner_user_id": owner.ID,
		"tag":           "apt-42",
		"address":       "Rua F 8",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create property status = %d body = %s", resp.Code, resp.Body.String())
	}
	var prop models.Property
	if err := json.Unmarshal(resp.Body.Bytes(), &prop); err != nil {
		t.Fatalf("decode property: %v", err)
	}
	return prop.ID
}

func TestAPIRejectsAnonymousRequests(t *testing.T) {
	ts := newTestServer(t)
	ts.cookie = nil
	resp := ts.do(t, http.MethodGet, "/api/work-orders", nil)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.Code)
	}
}

func TestQuoteFlowOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	propID := ts.createProperty(t)

	resp := ts.do(t, http.MethodPost, "/api/work-orders", map[string]any{
		"property_id": propID,
		"type":        "quote",
		"title":       "Fix kitchen sink",
		"description": "Leaking under the counter",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create status = %d body = %s", resp.Code, resp.Body.String())
	}
	var created struct {
		WorkOrder models.WorkOrder  `json:"work_order"`
		Links     map[string]string `json:"links"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.WorkOrder.Status != models.StatusQuoteRequested {
		t.Fatalf("status = %s, want quote_requested", created.WorkOrder.Status)
	}
	tokenValue := strings.TrimPrefix(created.Links["portal"], "/p/wo/")

	// public portal view needs no cookie
	anon := &testServer{srv: ts.srv}
	view := anon.do(t, http.MethodGet, "/portal/work-orders/"+tokenValue, nil)
	if view.Code != http.StatusOK {
		t.Fatalf("portal view status = %d body = %s", view.Code, view.Body.String())
	}
	var portalView struct {
		AllowedAction string `json:"allowed_action"`
	}
	if err := json.Unmarshal(view.Body.Bytes(), &portalView); err != nil {
		t.Fatalf("decode view: %v", err)
	}
	if portalView.AllowedAction != "submit_quote" {
		t.Fatalf("allowed_action = %s, want submit_quote", portalView.AllowedAction)
	}

	submit := anon.do(t, http.MethodPost, "/portal/work-orders/"+tokenValue+"/quote", map[string]any{
		"provider_name":  "Jose Silva",
		"provider_phone": "11 98765 4321",
		"lines":          []map[string]any{{"description": "labor", "amount": 500}},
		"total_amount":   500,
	})
	if submit.Code != http.StatusCreated {
		t.Fatalf("submit quote status = %d body = %s", submit.Code, submit.Body.String())
	}

	again := anon.do(t, http.MethodPost, "/portal/work-orders/"+tokenValue+"/quote", map[string]any{
		"provider_name":  "Jose Silva",
		"provider_phone": "11 98765 4321",
		"lines":          []map[string]any{{"description": "labor", "amount": 600}},
		"total_amount":   600,
	})
	if again.Code != http.StatusConflict {
		t.Fatalf("duplicate quote status = %d, want 409", again.Code)
	}

	detail := ts.do(t, http.MethodGet, fmt.Sprintf("/api/work-orders/%d", created.WorkOrder.ID), nil)
	if detail.Code != http.StatusOK {
		t.Fatalf("detail status = %d", detail.Code)
	}
	if strings.Contains(detail.Body.String(), tokenValue) {
		t.Fatal("work order detail leaked the token cleartext")
	}
}

func TestCancelDeadensPortalLink(t *testing.T) {
	ts := newTestServer(t)
	propID := ts.createProperty(t)

	resp := ts.do(t, http.MethodPost, "/api/work-orders", map[string]any{
		"property_id": propID,
		"type":        "quote",
		"title":       "Fix gate",
		"description": "Automatic gate stuck",
	})
	if resp.Code != http.StatusCreated {
		t.Fatalf("create status = %d", resp.Code)
	}
	var created struct {
		WorkOrder models.WorkOrder  `json:"work_order"`
		Links     map[string]string `json:"links"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	tokenValue := strings.TrimPrefix(created.Links["portal"], "/p/wo/")

	cancel := ts.do(t, http.MethodPost, fmt.Sprintf("/api/work-orders/%d/cancel", created.WorkOrder.ID), nil)
	if cancel.Code != http.StatusNoContent {
		t.Fatalf("cancel status = %d body = %s", cancel.Code, cancel.Body.String())
	}

	anon := &testServer{srv: ts.srv}
	view := anon.do(t, http.MethodGet, "/portal/work-orders/"+tokenValue, nil)
	if view.Code != http.StatusForbidden {
		t.Fatalf("canceled portal view status = %d, want 403", view.Code)
	}
	if !strings.Contains(view.Body.String(), "token_inactive") {
		t.Fatalf("body = %s, want token_inactive", view.Body.String())
	}
}

func TestUnknownPortalTokenIs404(t *testing.T) {
	ts := newTestServer(t)
	anon := &testServer{srv: ts.srv}
	resp := anon.do(t, http.MethodGet, "/portal/work-orders/bogus-token", nil)
	if resp.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "invalid_token") {
		t.Fatalf("body = %s, want invalid_token", resp.Body.String())
	}
}
