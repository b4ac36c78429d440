package syncer

import (
	"errors"
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/encoding"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
)

// Validate checks the fields of raw that do not depend on stored state.
// Failures wrap protocols.ErrMalformedBlock.
func Validate(raw *model.RawBlock) error {
	if raw == nil {
		return fmt.Errorf("nil block: %w", protocols.ErrMalformedBlock)
	}
	if err := validate(raw); err != nil {
		return fmt.Errorf("block %d: %w: %w", raw.Level, protocols.ErrMalformedBlock, err)
	}
	return nil
}

func validate(raw *model.RawBlock) error {
	if raw.Level < protocols.GenesisLevel {
		return fmt.Errorf("level %d below genesis", raw.Level)
	}
	if err := encoding.ValidateBlockHash(raw.Hash); err != nil {
		return fmt.Errorf("hash: %w", err)
	}
	if err := encoding.ValidateBlockHash(raw.Predecessor); err != nil {
		return fmt.Errorf("predecessor: %w", err)
	}
	if raw.Protocol == "" {
		return errors.New("protocol is empty")
	}
	if raw.Header.Timestamp.IsZero() {
		return errors.New("timestamp is empty")
	}
	if raw.Level == protocols.GenesisLevel {
		return nil
	}
	if err := encoding.ValidateAddress(raw.Metadata.Baker); err != nil {
		return fmt.Errorf("baker: %w", err)
	}
	for i, op := range raw.Operations {
		if err := validateOperation(op); err != nil {
			return fmt.Errorf("operation %d (%s): %w", i, op.Hash, err)
		}
	}
	for _, acc := range raw.Bootstrap {
		if err := encoding.ValidateAddress(acc.Address); err != nil {
			return fmt.Errorf("bootstrap account: %w", err)
		}
		if acc.Delegate != "" {
			if err := encoding.ValidateAddress(acc.Delegate); err != nil {
				return fmt.Errorf("bootstrap delegate: %w", err)
			}
		}
		if acc.Balance < 0 {
			return fmt.Errorf("bootstrap account %s: negative balance", acc.Address)
		}
	}
	return nil
}

func validateOperation(op model.RawOperation) error {
	if op.Fee < 0 {
		return errors.New("negative fee")
	}
	if err := encoding.ValidateAddress(op.Source); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	switch op.Kind {
	case model.OpTransaction:
		if op.Amount < 0 {
			return errors.New("negative amount")
		}
		if err := encoding.ValidateAddress(op.Destination); err != nil {
			return fmt.Errorf("destination: %w", err)
		}
	case model.OpDelegation:
		if op.Delegate == "" {
			return nil
		}
		if err := encoding.ValidateAddress(op.Delegate); err != nil {
			return fmt.Errorf("delegate: %w", err)
		}
	default:
		return fmt.Errorf("unsupported kind %q", op.Kind)
	}
	return nil
}
