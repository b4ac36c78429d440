package badger

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
)

var encMode = mustEncMode()

func mustEncMode() cbor.EncMode {
	em, err := cbor.EncOptions{Sort: cbor.SortCanonical, Time: cbor.TimeRFC3339Nano}.EncMode()
	if err != nil {
		panic(fmt.Sprintf("cbor enc mode: %v", err))
	}
	return em
}

// accountRecord keeps the variant tag next to exactly one populated variant.
type accountRecord struct {
	Kind     model.AccountKind `cbor:"k"`
	User     *model.User       `cbor:"u,omitempty"`
	Delegate *model.Delegate   `cbor:"d,omitempty"`
	Contract *model.Contract   `cbor:"c,omitempty"`
}

const (
	opKindTransaction uint8 = 1
	opKindDelegation  uint8 = 2
)

type operationRecord struct {
	Kind        uint8                       `cbor:"k"`
	Transaction *model.TransactionOperation `cbor:"t,omitempty"`
	Delegation  *model.DelegationOperation  `cbor:"d,omitempty"`
}

func encode(v any) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	return b, nil
}

func decode(b []byte, v any) error {
	if err := cbor.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %T: %w", v, err)
	}
	return nil
}

func encodeAccount(a model.Account) ([]byte, error) {
	rec := accountRecord{Kind: a.Kind()}
	switch v := a.(type) {
	case *model.User:
		rec.User = v
	case *model.Delegate:
		rec.Delegate = v
	case *model.Contract:
		rec.Contract = v
	default:
		return nil, fmt.Errorf("encode account: unsupported type %T", a)
	}
	return encode(rec)
}

func decodeAccount(b []byte) (model.Account, error) {
	var rec accountRecord
	if err := decode(b, &rec); err != nil {
		return nil, err
	}
	switch {
	case rec.Kind == model.KindUser && rec.User != nil:
		return rec.User, nil
	case rec.Kind == model.KindDelegate && rec.Delegate != nil:
		return rec.Delegate, nil
	case rec.Kind == model.KindContract && rec.Contract != nil:
		return rec.Contract, nil
	default:
		return nil, fmt.Errorf("decode account: inconsistent record of kind %s", rec.Kind)
	}
}

func encodeOperation(op model.Operation) ([]byte, error) {
	var rec operationRecord
	switch v := op.(type) {
	case *model.TransactionOperation:
		rec = operationRecord{Kind: opKindTransaction, Transaction: v}
	case *model.DelegationOperation:
		rec = operationRecord{Kind: opKindDelegation, Delegation: v}
	default:
		return nil, fmt.Errorf("encode operation: unsupported type %T", op)
	}
	return encode(rec)
}

func decodeOperation(b []byte) (model.Operation, error) {
	var rec operationRecord
	if err := decode(b, &rec); err != nil {
		return nil, err
	}
	switch {
	case rec.Kind == opKindTransaction && rec.Transaction != nil:
		return rec.Transaction, nil
	case rec.Kind == opKindDelegation && rec.Delegation != nil:
		return rec.Delegation, nil
	default:
		return nil, fmt.Errorf("decode operation: inconsistent record of kind %d", rec.Kind)
	}
}
