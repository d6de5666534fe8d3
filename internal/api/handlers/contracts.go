package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/covera-io/covera/internal/domain"
	"github.com/covera-io/covera/internal/store"
	"github.com/covera-io/covera/pkg/logger"
)

// ContractHandler handles contract hierarchy endpoints
// ⭐ SSOT: 계약 API 핸들러는 이 구조체에서만
type ContractHandler struct {
	contracts *store.ContractRepository
	catalog   *store.CatalogRepository
	logger    *logger.Logger
}

// NewContractHandler creates a new contract handler
func NewContractHandler(
	contracts *store.ContractRepository,
	catalog *store.CatalogRepository,
	log *logger.Logger,
) *ContractHandler {
	return &ContractHandler{
		contracts: contracts,
		catalog:   catalog,
		logger:    log,
	}
}

// CreateContractRequest represents a contract creation request
type CreateContractRequest struct {
	ClientID               int64    `json:"client_id"`
	Name                   string   `json:"name"`
	StartDate              string   `json:"start_date"`
	EndDate                string   `json:"end_date"`
	Status                 string   `json:"status"`
	WarrantyStartRule      string   `json:"warranty_start_rule"`
	WarrantyDurationMonths int      `json:"warranty_duration_months"`
	WarrantyOptions        []string `json:"warranty_options"`
	OutOfWarrantyOptions   []string `json:"out_of_warranty_options"`
}

// CreateContract creates a contract for an existing client
// POST /contracts
func (h *ContractHandler) CreateContract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateContractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'start_date' format (expected YYYY-MM-DD)")
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'end_date' format (expected YYYY-MM-DD)")
		return
	}
	if endDate.Before(startDate) {
		respondError(w, http.StatusBadRequest, "'end_date' must not precede 'start_date'")
		return
	}

	// Client must exist
	if _, err := h.catalog.GetClient(ctx, req.ClientID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Client not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load client")
		respondError(w, http.StatusInternalServerError, "Failed to load client")
		return
	}

	contract := &domain.Contract{
		ClientID:               req.ClientID,
		Name:                   req.Name,
		StartDate:              startDate,
		EndDate:                endDate,
		Status:                 defaultStatus(req.Status),
		WarrantyStartRule:      req.WarrantyStartRule,
		WarrantyDurationMonths: req.WarrantyDurationMonths,
		WarrantyOptions:        req.WarrantyOptions,
		OutOfWarrantyOptions:   req.OutOfWarrantyOptions,
	}

	if err := h.contracts.CreateContract(ctx, contract); err != nil {
		h.logger.WithError(err).Error("Failed to create contract")
		respondError(w, http.StatusInternalServerError, "Failed to create contract")
		return
	}

	respondJSON(w, http.StatusCreated, contract)
}

// CreateAppendixRequest represents an appendix creation request
type CreateAppendixRequest struct {
	ContractID int64  `json:"contract_id"`
	Name       string `json:"name"`
	StartDate  string `json:"start_date"`
	EndDate    string `json:"end_date"`
	Status     string `json:"status"`
}

// CreateAppendix creates an appendix under an existing contract
// POST /appendices
func (h *ContractHandler) CreateAppendix(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateAppendixRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'start_date' format (expected YYYY-MM-DD)")
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'end_date' format (expected YYYY-MM-DD)")
		return
	}
	if endDate.Before(startDate) {
		respondError(w, http.StatusBadRequest, "'end_date' must not precede 'start_date'")
		return
	}

	// Parent contract must exist. Date nesting inside the contract window
	// is not enforced here; the coverage engine checks containment at
	// decision time.
	if _, err := h.contracts.GetContract(ctx, req.ContractID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Contract not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load contract")
		respondError(w, http.StatusInternalServerError, "Failed to load contract")
		return
	}

	appendix := &domain.Appendix{
		ContractID: req.ContractID,
		Name:       req.Name,
		StartDate:  startDate,
		EndDate:    endDate,
		Status:     defaultStatus(req.Status),
	}

	if err := h.contracts.CreateAppendix(ctx, appendix); err != nil {
		h.logger.WithError(err).Error("Failed to create appendix")
		respondError(w, http.StatusInternalServerError, "Failed to create appendix")
		return
	}

	respondJSON(w, http.StatusCreated, appendix)
}

// CreateLineRequest represents a contract line creation request
type CreateLineRequest struct {
	AppendixID             int64    `json:"appendix_id"`
	ProductID              int64    `json:"product_id"`
	StartDate              string   `json:"start_date"`
	EndDate                string   `json:"end_date"`
	Status                 string   `json:"status"`
	WarrantyStartRule      string   `json:"warranty_start_rule"`
	WarrantyDurationMonths int      `json:"warranty_duration_months"`
	WarrantyOptions        []string `json:"warranty_options"`
	OutOfWarrantyOptions   []string `json:"out_of_warranty_options"`
	RequiredInputs         []string `json:"required_inputs"`
}

// CreateLine creates a per-product line under an existing appendix
// POST /contract-lines
func (h *ContractHandler) CreateLine(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CreateLineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	startDate, err := parseDate(req.StartDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'start_date' format (expected YYYY-MM-DD)")
		return
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid 'end_date' format (expected YYYY-MM-DD)")
		return
	}
	if endDate.Before(startDate) {
		respondError(w, http.StatusBadRequest, "'end_date' must not precede 'start_date'")
		return
	}

	if _, err := h.contracts.AppendixWithLines(ctx, req.AppendixID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Appendix not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load appendix")
		respondError(w, http.StatusInternalServerError, "Failed to load appendix")
		return
	}

	if _, err := h.catalog.GetProduct(ctx, req.ProductID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			respondError(w, http.StatusNotFound, "Product not found")
			return
		}
		h.logger.WithError(err).Error("Failed to load product")
		respondError(w, http.StatusInternalServerError, "Failed to load product")
		return
	}

	line := &domain.ContractLine{
		AppendixID:             req.AppendixID,
		ProductID:              req.ProductID,
		StartDate:              startDate,
		EndDate:                endDate,
		Status:                 defaultStatus(req.Status),
		WarrantyStartRule:      req.WarrantyStartRule,
		WarrantyDurationMonths: req.WarrantyDurationMonths,
		WarrantyOptions:        req.WarrantyOptions,
		OutOfWarrantyOptions:   req.OutOfWarrantyOptions,
		RequiredInputs:         req.RequiredInputs,
	}

	if err := h.contracts.CreateLine(ctx, line); err != nil {
		// Unique (appendix_id, product_id) key
		if strings.Contains(err.Error(), "duplicate key") {
			respondError(w, http.StatusConflict, "A line for this product already exists in the appendix")
			return
		}
		h.logger.WithError(err).Error("Failed to create contract line")
		respondError(w, http.StatusInternalServerError, "Failed to create contract line")
		return
	}

	respondJSON(w, http.StatusCreated, line)
}

func defaultStatus(status string) string {
	if status == "" {
		return domain.StatusActive
	}
	return status
}
