package service

import (
	"context"
	"math"
	"strconv"
	"strings"

	"github.com/rented/backend/internal/models"
	"github.com/rented/backend/internal/repository"
)

// Keys in the display metadata whose presence marks a save as carrying
// lease data worth mirroring.
var contractTriggerKeys = []string{
	"contract_model_key",
	"contract_number",
	"document_code",
	"tenant_name",
	"landlord_name",
	"guarantor_name",
	"administrator_name",
	"guarantee_provider_name",
	"property_address",
}

// syncContract rewrites the typed lease mirror for the property whenever its
// display metadata carries contract data. Saves without contract data leave
// any existing row untouched.
func syncContract(ctx context.Context, store repository.Store, prop *models.Property) error {
	display := prop.Display
	if !hasContractData(display) {
		return nil
	}
	c := &models.PropertyContract{
		PropertyID: prop.ID,

		ContractTitle:    strField(display, "contract_title"),
		ContractNumber:   strField(display, "contract_number"),
		DocumentPlatform: strField(display, "document_platform"),
		DocumentCode:     strField(display, "document_code"),

		LandlordName:          strField(display, "landlord_name"),
		LandlordCPF:           strField(display, "landlord_cpf"),
		LandlordRG:            strField(display, "landlord_rg"),
		TenantName:            strField(display, "tenant_name"),
		TenantCPF:             strField(display, "tenant_cpf"),
		TenantRG:              strField(display, "tenant_rg"),
		TenantAddress:         strField(display, "tenant_address"),
		GuarantorName:         strField(display, "guarantor_name"),
		GuarantorCPF:          strField(display, "guarantor_cpf"),
		GuarantorRG:           strField(display, "guarantor_rg"),
		AdministratorName:     strField(display, "administrator_name"),
		GuaranteeProviderName: strField(display, "guarantee_provider_name"),

		PaymentMethod:        strField(display, "payment_method"),
		IncludesCondominium:  boolField(display, "includes_condominium"),
		IncludesIPTU:         boolField(display, "includes_iptu"),
		LateFeePercent:       strField(display, "late_fee_percent"),
		InterestPercentMonth: strField(display, "interest_percent_month"),
		RentCurrency:         strField(display, "rent_currency"),
		PaymentDay:           intField(display, "payment_day"),
		IndexationType:       strField(display, "indexation_type"),

		StartDate:  strField(display, "start_date"),
		EndDate:    strField(display, "end_date"),
		TermMonths: intField(display, "term_months"),
		SignDate:   strField(display, "sign_date"),

		ForumCity:   strField(display, "forum_city"),
		ForumState:  strField(display, "forum_state"),
		SignedCity:  strField(display, "signed_city"),
		SignedState: strField(display, "signed_state"),

		Witnesses:       strField(display, "witnesses"),
		Notes:           strField(display, "notes"),
		SensitiveTopics: strField(display, "sensitive_topics"),
	}
	if id := intField(display, "contract_document_id"); id != nil && *id > 0 {
		docID := uint(*id)
		c.DocumentID = &docID
	}
	if prop.CurrentRent != nil {
		cents := int(math.Round(*prop.CurrentRent * 100))
		c.RentAmountCents = &cents
	}
	switch fields := display["contract_fields"].(type) {
	case models.JSONMap:
		c.Fields = fields
	case map[string]any:
		c.Fields = models.JSONMap(fields)
	}
	if len(c.Fields) == 0 {
		c.Fields = display
	}
	return store.Contracts().Save(ctx, c)
}

func hasContractData(display models.JSONMap) bool {
	if len(display) == 0 {
		return false
	}
	if presentValue(display["contract_fields"]) {
		return true
	}
	for _, key := range contractTriggerKeys {
		if presentValue(display[key]) {
			return true
		}
	}
	return false
}

func presentValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case models.JSONMap:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	case []any:
		return len(t) > 0
	case bool:
		return t
	default:
		return true
	}
}

func strField(display models.JSONMap, key string) string {
	s, _ := display[key].(string)
	return strings.TrimSpace(s)
}

// intField tolerates the numeric shapes JSON decoding produces plus digit
// strings, matching how contract data arrives from the import preview.
func intField(display models.JSONMap, key string) *int {
	switch t := display[key].(type) {
	case float64:
		n := int(t)
		return &n
	case int:
		n := t
		return &n
	case string:
		if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
			return &n
		}
	}
	return nil
}

func boolField(display models.JSONMap, key string) bool {
	b, _ := display[key].(bool)
	return b
}
