package domain

import "time"

// Warranty start-date rules a contract line may declare
const (
	RulePurchaseDate    = "purchase_date"
	RuleActivationDate  = "activation_date"
	RuleManufactureDate = "manufacture_date"
	RuleContractStart   = "contract_start"
)

// ClaimInputs is the caller-supplied claim data, keyed by input field name.
// A nil value counts as absent.
type ClaimInputs map[string]interface{}

// Has reports whether the field is present with a non-nil value
func (c ClaimInputs) Has(field string) bool {
	v, ok := c[field]
	return ok && v != nil
}

// Date returns the field as a date when present
func (c ClaimInputs) Date(field string) (time.Time, bool) {
	v, ok := c[field]
	if !ok || v == nil {
		return time.Time{}, false
	}
	d, ok := v.(time.Time)
	return d, ok
}

// DecisionResult is the outcome of a coverage decision for a single claim.
// All failure modes are expressed through ReasonCodes; the engine never
// errors on data-driven outcomes.
type DecisionResult struct {
	Eligible           bool       `json:"eligible"`
	InWarranty         *bool      `json:"in_warranty"`
	RequiredInputs     []string   `json:"required_inputs"`
	AllowedResolutions []string   `json:"allowed_resolutions"`
	ReasonCodes        []string   `json:"reason_codes"`
	ResolvedContractID *int64     `json:"resolved_contract_id"`
	ResolvedAppendixID *int64     `json:"resolved_appendix_id"`
	ResolvedLineID     *int64     `json:"resolved_line_id"`
	WarrantyEndDate    *time.Time `json:"warranty_end_date"`
}
