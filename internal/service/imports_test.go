package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/rented/backend/internal/ai"
	"github.com/rented/backend/internal/repository"
)

type fakeExtractor struct {
	result     ai.ExtractionResult
	err        error
	gotDocType string
	gotText    string
}

func (f *fakeExtractor) Extract(ctx context.Context, docType, text string) (ai.ExtractionResult, error) {
	f.gotDocType = docType
	f.gotText = text
	return f.result, f.err
}

func TestPreviewRunsExtraction(t *testing.T) {
	extractor := &fakeExtractor{result: ai.ExtractionResult{
		DocType:    "text",
		Fields:     map[string]any{"tag": "apt-3", "bedrooms": 2},
		Summary:    "two bedroom unit",
		Confidence: 0.9,
	}}
	svc := NewImportService(repository.NewMemoryStore(), extractor, 0, 0, zerolog.Nop())

	result, err := svc.Preview(context.Background(), 1, "units.csv", []byte("tag,bedrooms\napt-3,2\n"))
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if extractor.gotDocType != "text" {
		t.Fatalf("doc type hint = %s, want text", extractor.gotDocType)
	}
	if extractor.gotText == "" {
		t.Fatal("extractor did not receive the file text")
	}
	if result.Fields["tag"] != "apt-3" || result.Confidence != 0.9 {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestPreviewLogsActivity(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewImportService(store, &fakeExtractor{}, 0, 0, zerolog.Nop())

	if _, err := svc.Preview(context.Background(), 7, "lease.txt", []byte("contract text")); err != nil {
		t.Fatalf("preview: %v", err)
	}

	entries, err := store.Activity().List(context.Background(), nil, 10)
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("activity entries = %d, want 1", len(entries))
	}
	entry := entries[0]
	if entry.Event != "property_import_preview" {
		t.Fatalf("event = %s", entry.Event)
	}
	if entry.UserID == nil || *entry.UserID != 7 {
		t.Fatalf("user id = %v, want 7", entry.UserID)
	}
	if entry.Detail["file_name"] != "lease.txt" {
		t.Fatalf("detail = %v", entry.Detail)
	}
}

func TestPreviewFillsEmptyFieldsFromText(t *testing.T) {
	text := "CONTRATO No 2024/17\n" +
		"LOCADOR: Ana Souza, CPF 111.222.333-44\n" +
		"LOCATÁRIO: Bruno Lima, CPF 555.666.777-88\n" +
		"O aluguel mensal de R$ 1.800,00 com vencimento no dia 5\n"
	extractor := &fakeExtractor{result: ai.ExtractionResult{
		DocType:    "contract",
		Fields:     map[string]any{"tenant_cpf": "999.999.999-99"},
		Confidence: 0.7,
	}}
	svc := NewImportService(repository.NewMemoryStore(), extractor, 0, 0, zerolog.Nop())

	result, err := svc.Preview(context.Background(), 1, "contrato.txt", []byte(text))
	if err != nil {
		t.Fatalf("preview: %v", err)
	}
	if result.Fields["contract_number"] != "2024/17" {
		t.Fatalf("contract_number = %v", result.Fields["contract_number"])
	}
	if result.Fields["landlord_cpf"] != "111.222.333-44" {
		t.Fatalf("landlord_cpf = %v", result.Fields["landlord_cpf"])
	}
	if result.Fields["rent_amount"] != "1.800,00" {
		t.Fatalf("rent_amount = %v", result.Fields["rent_amount"])
	}
	// Extractor output wins over pattern matches.
	if result.Fields["tenant_cpf"] != "999.999.999-99" {
		t.Fatalf("tenant_cpf = %v", result.Fields["tenant_cpf"])
	}
}

func TestPreviewDegradesOnExtractionOutage(t *testing.T) {
	extractor := &fakeExtractor{err: errors.New("upstream 500")}
	svc := NewImportService(repository.NewMemoryStore(), extractor, 0, 0, zerolog.Nop())

	result, err := svc.Preview(context.Background(), 1, "notes.txt", []byte("needs paint"))
	if err != nil {
		t.Fatalf("preview should degrade, got %v", err)
	}
	if result.Confidence != 0 {
		t.Fatalf("confidence = %v, want 0", result.Confidence)
	}
	if len(result.Alerts) != 1 || result.Alerts[0] != "extraction_unavailable" {
		t.Fatalf("alerts = %v", result.Alerts)
	}
}

func TestPreviewRejectsEmptyFile(t *testing.T) {
	svc := NewImportService(repository.NewMemoryStore(), &fakeExtractor{}, 0, 0, zerolog.Nop())
	if _, err := svc.Preview(context.Background(), 1, "empty.txt", nil); !errors.Is(err, ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}
}
