package coverage

import (
	"time"

	"github.com/covera-io/covera/internal/domain"
)

// selectLine finds the single line covering product on eventDate.
//
// Candidates are the pinned appendix when given, otherwise every appendix
// of the contract, filtered to active ones whose window contains the date.
// Lines are scanned in iteration order and the first one matching product,
// active status and date window wins: first match, not best match.
//
// A matching line whose dates break the contract ⊇ appendix ⊇ line
// containment is skipped with ReasonDateHierarchyInvalid and the scan
// continues: a later valid line can still be accepted, and the recorded
// reason survives as informational context on the final result.
func selectLine(contract *domain.Contract, pinned *domain.Appendix, productID int64, eventDate time.Time) (*domain.Appendix, *domain.ContractLine, []string) {
	var reasons []string

	candidates := contract.Appendices
	if pinned != nil {
		candidates = []*domain.Appendix{pinned}
	}

	for _, appendix := range candidates {
		if appendix == nil || appendix.Status != domain.StatusActive || !appendix.Covers(eventDate) {
			continue
		}

		for _, line := range appendix.Lines {
			if line.ProductID != productID || line.Status != domain.StatusActive || !line.Covers(eventDate) {
				continue
			}

			if !containmentValid(contract, appendix, line) {
				reasons = append(reasons, ReasonDateHierarchyInvalid)
				continue
			}

			return appendix, line, reasons
		}
	}

	reasons = append(reasons, ReasonNoActiveLineForProduct)
	return pinned, nil, reasons
}

// containmentValid checks contract.start ≤ appendix.start ≤ line.start and
// line.end ≤ appendix.end ≤ contract.end. Enforced only here, at decision
// time; writes do not validate nesting.
func containmentValid(contract *domain.Contract, appendix *domain.Appendix, line *domain.ContractLine) bool {
	if contract.StartDate.After(appendix.StartDate) || appendix.StartDate.After(line.StartDate) {
		return false
	}
	if line.EndDate.After(appendix.EndDate) || appendix.EndDate.After(contract.EndDate) {
		return false
	}
	return true
}
