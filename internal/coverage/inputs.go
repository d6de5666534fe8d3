package coverage

import (
	"time"

	"github.com/covera-io/covera/internal/domain"
)

// missingRequiredInputs returns the line's required input fields that are
// absent or nil in the claim inputs
func missingRequiredInputs(line *domain.ContractLine, inputs domain.ClaimInputs) []string {
	var missing []string
	for _, field := range line.RequiredInputs {
		if !inputs.Has(field) {
			missing = append(missing, field)
		}
	}
	return missing
}

// warrantyStartDate maps the line's warranty-start rule to a concrete
// date. Rules reading a claim input report that field as missing when the
// input is absent; an unknown rule reports ReasonWarrantyStartRuleInvalid.
// The missing list shares reporting with missingRequiredInputs: both feed
// the decision's required_inputs field.
// A zero date with a non-empty missing list means the rule could not be
// resolved; the missing list is empty exactly when the date is usable.
func warrantyStartDate(line *domain.ContractLine, contract *domain.Contract, inputs domain.ClaimInputs) (time.Time, []string) {
	switch line.WarrantyStartRule {
	case domain.RulePurchaseDate, domain.RuleActivationDate, domain.RuleManufactureDate:
		field := line.WarrantyStartRule
		if date, ok := inputs.Date(field); ok {
			return date, nil
		}
		return time.Time{}, []string{field}

	case domain.RuleContractStart:
		return contract.StartDate, nil

	default:
		return time.Time{}, []string{ReasonWarrantyStartRuleInvalid}
	}
}
