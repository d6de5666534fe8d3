package coverage

import (
	"context"
	"sort"
	"time"

	"github.com/covera-io/covera/internal/domain"
)

// Reason codes accumulated by the decision pipeline. All are recoverable
// caller-facing outcomes, never errors.
const (
	ReasonAppendixNotFound              = "appendix_not_found"
	ReasonContractNotFound              = "contract_not_found"
	ReasonMissingContractOrAppendix     = "missing_contract_or_appendix"
	ReasonContractInactiveOrOutsideDate = "contract_inactive_or_outside_dates"
	ReasonNoActiveLineForProduct        = "no_active_line_for_product"
	ReasonDateHierarchyInvalid          = "date_hierarchy_invalid"
	ReasonMissingRequiredInputs         = "missing_required_inputs"
	ReasonWarrantyStartRuleInvalid      = "warranty_start_rule_invalid"
)

// Request carries one coverage claim to decide
type Request struct {
	ContractID *int64
	AppendixID *int64
	ProductID  int64
	EventDate  time.Time
	Inputs     domain.ClaimInputs
}

// Engine decides warranty coverage for claims
// ⭐ SSOT: 커버리지 판정은 이 엔진에서만
type Engine struct {
	store domain.EntityStore
}

// NewEngine creates a coverage engine over an entity store
func NewEngine(store domain.EntityStore) *Engine {
	return &Engine{store: store}
}

// Decide resolves the applicable contract line for the claim and
// determines eligibility, warranty status and allowed resolutions.
//
// The pipeline runs through ordered terminal states: unresolved context,
// inactive contract or event outside its window, no line selected, missing
// required inputs, and finally the in/out-of-warranty verdict. Each
// terminal carries every reason code accumulated up to that point. The
// returned error is non-nil only for store failures; every data-driven
// outcome is a DecisionResult.
func (e *Engine) Decide(ctx context.Context, req Request) (*domain.DecisionResult, error) {
	contract, pinned, reasons, err := resolveContext(ctx, e.store, req.ContractID, req.AppendixID)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return &domain.DecisionResult{
			RequiredInputs:     []string{},
			AllowedResolutions: []string{},
			ReasonCodes:        reasons,
		}, nil
	}

	return Evaluate(contract, pinned, req.ProductID, req.EventDate, req.Inputs, reasons), nil
}

// Evaluate runs the decision pipeline over already-loaded snapshots. It is
// a pure function: it never mutates its inputs and touches no store.
func Evaluate(contract *domain.Contract, pinned *domain.Appendix, productID int64, eventDate time.Time, inputs domain.ClaimInputs, reasons []string) *domain.DecisionResult {
	if reasons == nil {
		reasons = []string{}
	}

	if contract.Status != domain.StatusActive || !contract.Covers(eventDate) {
		return &domain.DecisionResult{
			RequiredInputs:     []string{},
			AllowedResolutions: []string{},
			ReasonCodes:        append(reasons, ReasonContractInactiveOrOutsideDate),
			ResolvedContractID: &contract.ID,
		}
	}

	appendix, line, lineReasons := selectLine(contract, pinned, productID, eventDate)
	reasons = append(reasons, lineReasons...)

	if line == nil {
		return &domain.DecisionResult{
			RequiredInputs:     []string{},
			AllowedResolutions: []string{},
			ReasonCodes:        reasons,
			ResolvedContractID: &contract.ID,
			ResolvedAppendixID: appendixID(appendix),
		}
	}

	missing := missingRequiredInputs(line, inputs)
	startDate, startMissing := warrantyStartDate(line, contract, inputs)
	missing = append(missing, startMissing...)

	if len(missing) > 0 {
		return &domain.DecisionResult{
			RequiredInputs:     sortedUnique(missing),
			AllowedResolutions: []string{},
			ReasonCodes:        append(reasons, ReasonMissingRequiredInputs),
			ResolvedContractID: &contract.ID,
			ResolvedAppendixID: appendixID(appendix),
			ResolvedLineID:     &line.ID,
		}
	}

	warrantyEnd := AddMonths(startDate, line.WarrantyDurationMonths)
	inWarranty := !eventDate.After(warrantyEnd)

	options := line.WarrantyOptions
	if !inWarranty {
		options = line.OutOfWarrantyOptions
	}

	return &domain.DecisionResult{
		Eligible:           true,
		InWarranty:         &inWarranty,
		RequiredInputs:     []string{},
		AllowedResolutions: options,
		ReasonCodes:        reasons,
		ResolvedContractID: &contract.ID,
		ResolvedAppendixID: appendixID(appendix),
		ResolvedLineID:     &line.ID,
		WarrantyEndDate:    &warrantyEnd,
	}
}

func appendixID(appendix *domain.Appendix) *int64 {
	if appendix == nil {
		return nil
	}
	return &appendix.ID
}

// sortedUnique reports missing fields in a stable, de-duplicated order
func sortedUnique(fields []string) []string {
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	sort.Strings(out)
	return out
}
