package proto1

import (
	"errors"
	"fmt"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/protocols"
	"github.com/goodnatureofminers/blockinsight7000-tezos/pkg/safe"
)

func missing(err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("%w: %w", protocols.ErrMissingEntity, err)
	}
	return err
}

// move adds delta to *field, naming field in the error.
func move(field *int64, delta int64, name string) error {
	v, err := safe.Add(*field, delta)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	*field = v
	return nil
}
