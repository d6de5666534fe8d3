package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/covera-io/covera/internal/coverage"
	"github.com/covera-io/covera/internal/domain"
	"github.com/covera-io/covera/pkg/logger"
)

// DecisionHandler handles coverage decision endpoints
// ⭐ SSOT: 판정 API 핸들러는 이 구조체에서만
type DecisionHandler struct {
	engine *coverage.Engine
	logger *logger.Logger
}

// NewDecisionHandler creates a new decision handler
func NewDecisionHandler(engine *coverage.Engine, log *logger.Logger) *DecisionHandler {
	return &DecisionHandler{
		engine: engine,
		logger: log,
	}
}

// DecisionInputs carries the claim data supplied by the caller. Absent
// fields stay nil and count as missing for required-input checks.
type DecisionInputs struct {
	SerialNumber    *string `json:"serial_number"`
	PurchaseDate    *string `json:"purchase_date"`
	ActivationDate  *string `json:"activation_date"`
	ManufactureDate *string `json:"manufacture_date"`
	ProofProvided   *bool   `json:"proof_provided"`
	Country         *string `json:"country"`
	Channel         *string `json:"channel"`
}

// DecisionRequest represents a coverage decision request
type DecisionRequest struct {
	ContractID *int64         `json:"contract_id"`
	AppendixID *int64         `json:"appendix_id"`
	ProductID  int64          `json:"product_id"`
	EventDate  string         `json:"event_date"`
	Inputs     DecisionInputs `json:"inputs"`
}

// Decide evaluates warranty coverage for one claim
// POST /decisions/coverage
func (h *DecisionHandler) Decide(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	eventDate, err := parseDate(req.EventDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'event_date' format (expected YYYY-MM-DD)")
		return
	}

	inputs, err := claimInputs(req.Inputs)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.engine.Decide(ctx, coverage.Request{
		ContractID: req.ContractID,
		AppendixID: req.AppendixID,
		ProductID:  req.ProductID,
		EventDate:  eventDate,
		Inputs:     inputs,
	})
	if err != nil {
		h.logger.WithError(err).Error("Failed to decide coverage")
		respondError(w, http.StatusInternalServerError, "Failed to decide coverage")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// claimInputs converts the wire inputs into the engine's claim map.
// Date fields become time.Time values; everything else is passed through.
func claimInputs(in DecisionInputs) (domain.ClaimInputs, error) {
	inputs := domain.ClaimInputs{}

	if in.SerialNumber != nil {
		inputs["serial_number"] = *in.SerialNumber
	}
	if in.ProofProvided != nil {
		inputs["proof_provided"] = *in.ProofProvided
	}
	if in.Country != nil {
		inputs["country"] = *in.Country
	}
	if in.Channel != nil {
		inputs["channel"] = *in.Channel
	}

	dateFields := map[string]*string{
		"purchase_date":    in.PurchaseDate,
		"activation_date":  in.ActivationDate,
		"manufacture_date": in.ManufactureDate,
	}
	for field, value := range dateFields {
		if value == nil {
			continue
		}
		date, err := time.Parse("2006-01-02", *value)
		if err != nil {
			return nil, fmt.Errorf("Invalid '%s' format (expected YYYY-MM-DD)", field)
		}
		inputs[field] = date
	}

	return inputs, nil
}
