package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covera-io/covera/internal/coverage"
	"github.com/covera-io/covera/internal/domain"
	"github.com/covera-io/covera/pkg/config"
	"github.com/covera-io/covera/pkg/logger"
)

type stubEntityStore struct {
	contracts  map[int64]*domain.Contract
	appendices map[int64]*domain.Appendix
}

func (s *stubEntityStore) ContractWithAppendices(ctx context.Context, id int64) (*domain.Contract, error) {
	contract, ok := s.contracts[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return contract, nil
}

func (s *stubEntityStore) AppendixWithLines(ctx context.Context, id int64) (*domain.Appendix, error) {
	appendix, ok := s.appendices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return appendix, nil
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testDecisionHandler() *DecisionHandler {
	line := &domain.ContractLine{
		ID:                     100,
		AppendixID:             20,
		ProductID:              1,
		StartDate:              day(2024, time.January, 1),
		EndDate:                day(2024, time.December, 31),
		Status:                 domain.StatusActive,
		WarrantyStartRule:      domain.RuleContractStart,
		WarrantyDurationMonths: 12,
		WarrantyOptions:        []string{"repair", "replace"},
		OutOfWarrantyOptions:   []string{"paid_repair"},
	}
	appendix := &domain.Appendix{
		ID:         20,
		ContractID: 10,
		StartDate:  day(2024, time.January, 1),
		EndDate:    day(2024, time.December, 31),
		Status:     domain.StatusActive,
		Lines:      []*domain.ContractLine{line},
	}
	contract := &domain.Contract{
		ID:         10,
		ClientID:   1,
		StartDate:  day(2024, time.January, 1),
		EndDate:    day(2024, time.December, 31),
		Status:     domain.StatusActive,
		Appendices: []*domain.Appendix{appendix},
	}

	store := &stubEntityStore{
		contracts:  map[int64]*domain.Contract{10: contract},
		appendices: map[int64]*domain.Appendix{20: appendix},
	}

	log := logger.New(&config.Config{
		Env:       "development",
		LogLevel:  "error",
		LogFormat: "console",
		Database:  config.DatabaseConfig{URL: "dummy"},
	})

	return NewDecisionHandler(coverage.NewEngine(store), log)
}

func decodeBody(rec *httptest.ResponseRecorder, dest interface{}) error {
	return json.NewDecoder(rec.Body).Decode(dest)
}

func postDecision(t *testing.T, handler *DecisionHandler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/decisions/coverage", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Decide(rec, req)
	return rec
}

func TestDecide_InWarranty(t *testing.T) {
	handler := testDecisionHandler()

	rec := postDecision(t, handler, `{
		"contract_id": 10,
		"product_id": 1,
		"event_date": "2024-06-01",
		"inputs": {"serial_number": "SN-1"}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.DecisionResult
	require.NoError(t, decodeBody(rec, &result))

	assert.True(t, result.Eligible)
	require.NotNil(t, result.InWarranty)
	assert.True(t, *result.InWarranty)
	assert.Equal(t, []string{"repair", "replace"}, result.AllowedResolutions)
	require.NotNil(t, result.ResolvedLineID)
	assert.Equal(t, int64(100), *result.ResolvedLineID)
	require.NotNil(t, result.WarrantyEndDate)
	assert.Equal(t, day(2025, time.January, 1), result.WarrantyEndDate.UTC())
}

func TestDecide_MissingContext(t *testing.T) {
	handler := testDecisionHandler()

	rec := postDecision(t, handler, `{
		"product_id": 1,
		"event_date": "2024-06-01",
		"inputs": {}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.DecisionResult
	require.NoError(t, decodeBody(rec, &result))

	assert.False(t, result.Eligible)
	assert.Nil(t, result.InWarranty)
	assert.Equal(t, []string{coverage.ReasonMissingContractOrAppendix}, result.ReasonCodes)
	assert.Nil(t, result.ResolvedContractID)
	assert.Nil(t, result.ResolvedAppendixID)
	assert.Nil(t, result.ResolvedLineID)
}

func TestDecide_AppendixPrecedence(t *testing.T) {
	handler := testDecisionHandler()

	// A bad contract id is ignored when the appendix resolves
	rec := postDecision(t, handler, `{
		"contract_id": 999,
		"appendix_id": 20,
		"product_id": 1,
		"event_date": "2024-06-01",
		"inputs": {}
	}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var result domain.DecisionResult
	require.NoError(t, decodeBody(rec, &result))

	assert.True(t, result.Eligible)
	require.NotNil(t, result.ResolvedAppendixID)
	assert.Equal(t, int64(20), *result.ResolvedAppendixID)
}

func TestDecide_BadRequests(t *testing.T) {
	handler := testDecisionHandler()

	tests := []struct {
		name string
		body string
	}{
		{
			name: "malformed json",
			body: `{"product_id": `,
		},
		{
			name: "bad event date",
			body: `{"product_id": 1, "event_date": "June 1st", "inputs": {}}`,
		},
		{
			name: "bad input date",
			body: `{"contract_id": 10, "product_id": 1, "event_date": "2024-06-01",
				"inputs": {"purchase_date": "01/05/2024"}}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := postDecision(t, handler, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestClaimInputs_AbsentFieldsStayMissing(t *testing.T) {
	proof := true
	serial := "SN-1"
	purchase := "2024-05-01"

	inputs, err := claimInputs(DecisionInputs{
		SerialNumber:  &serial,
		PurchaseDate:  &purchase,
		ProofProvided: &proof,
	})
	require.NoError(t, err)

	assert.True(t, inputs.Has("serial_number"))
	assert.True(t, inputs.Has("proof_provided"))
	assert.False(t, inputs.Has("activation_date"))

	date, ok := inputs.Date("purchase_date")
	require.True(t, ok)
	assert.Equal(t, day(2024, time.May, 1), date)
}
