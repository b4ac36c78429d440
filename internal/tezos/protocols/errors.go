package protocols

import "errors"

var (
	// ErrMalformedBlock marks raw input that violates chain rules.
	ErrMalformedBlock = errors.New("malformed block")
	// ErrUnknownProtocol is returned when no handler is registered for a protocol code.
	ErrUnknownProtocol = errors.New("unknown protocol")
	// ErrMissingEntity is returned when an entity the block references is not stored.
	ErrMissingEntity = errors.New("missing entity")
	// ErrRevertOrder is returned when a block other than the top one is reverted.
	ErrRevertOrder = errors.New("revert out of order")
	// ErrNotApplied is returned when reverting a level with no stored block.
	ErrNotApplied = errors.New("block not applied")
)
