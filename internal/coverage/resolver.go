package coverage

import (
	"context"
	"errors"
	"fmt"

	"github.com/covera-io/covera/internal/domain"
)

// resolveContext loads the contract (and appendix, when pinned) for a
// decision. An appendix id takes precedence over a contract id; the
// contract is then derived from the appendix's owner. Lookup misses are
// reported as reason codes, not errors; only store failures error out.
func resolveContext(ctx context.Context, store domain.EntityStore, contractID, appendixID *int64) (*domain.Contract, *domain.Appendix, []string, error) {
	var reasons []string

	switch {
	case appendixID != nil:
		appendix, err := store.AppendixWithLines(ctx, *appendixID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, append(reasons, ReasonAppendixNotFound), nil
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load appendix %d: %w", *appendixID, err)
		}

		contract, err := store.ContractWithAppendices(ctx, appendix.ContractID)
		if err != nil {
			// The owning contract must exist; a miss here is a store
			// integrity failure, not a caller mistake
			return nil, nil, nil, fmt.Errorf("load contract %d for appendix %d: %w", appendix.ContractID, appendix.ID, err)
		}
		return contract, appendix, reasons, nil

	case contractID != nil:
		contract, err := store.ContractWithAppendices(ctx, *contractID)
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, append(reasons, ReasonContractNotFound), nil
		}
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load contract %d: %w", *contractID, err)
		}
		return contract, nil, reasons, nil

	default:
		return nil, nil, append(reasons, ReasonMissingContractOrAppendix), nil
	}
}
