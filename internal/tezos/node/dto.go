package node

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
)

// mutez decodes int64 amounts the node sends either as strings or numbers.
type mutez int64

func (m *mutez) UnmarshalJSON(b []byte) error {
	b = bytes.Trim(b, `"`)
	if len(b) == 0 || string(b) == "null" {
		*m = 0
		return nil
	}
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return fmt.Errorf("decode amount %q: %w", b, err)
	}
	*m = mutez(v)
	return nil
}

type headerDTO struct {
	Level       int64     `json:"level"`
	Hash        string    `json:"hash"`
	Predecessor string    `json:"predecessor"`
	Protocol    string    `json:"protocol"`
	Timestamp   time.Time `json:"timestamp"`
	Priority    int32     `json:"priority"`
}

type blockDTO struct {
	Protocol string `json:"protocol"`
	Hash     string `json:"hash"`
	Header   struct {
		Level       int64     `json:"level"`
		Predecessor string    `json:"predecessor"`
		Timestamp   time.Time `json:"timestamp"`
		Priority    int32     `json:"priority"`
	} `json:"header"`
	Metadata struct {
		Protocol     string `json:"protocol"`
		NextProtocol string `json:"next_protocol"`
		Baker        string `json:"baker"`
	} `json:"metadata"`
	Operations [][]operationDTO `json:"operations"`
}

type operationDTO struct {
	Hash     string       `json:"hash"`
	Contents []contentDTO `json:"contents"`
}

type contentDTO struct {
	Kind        string `json:"kind"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Delegate    string `json:"delegate"`
	Amount      mutez  `json:"amount"`
	Fee         mutez  `json:"fee"`
	Counter     mutez  `json:"counter"`
	Metadata    struct {
		OperationResult struct {
			Status string `json:"status"`
		} `json:"operation_result"`
	} `json:"metadata"`
}

type constantsDTO struct {
	BlocksPerCycle        int64 `json:"blocks_per_cycle"`
	BlocksPerVotingPeriod int64 `json:"blocks_per_voting_period"`
	PreservedCycles       int   `json:"preserved_cycles"`
	TokensPerRoll         mutez `json:"tokens_per_roll"`
	BlockReward           mutez `json:"block_reward"`
	BlockDeposit          mutez `json:"block_security_deposit"`
}

type contractDTO struct {
	Balance  mutez  `json:"balance"`
	Delegate string `json:"delegate"`
}

func (d constantsDTO) model() model.Constants {
	return model.Constants{
		BlocksPerCycle:        d.BlocksPerCycle,
		BlocksPerVotingPeriod: d.BlocksPerVotingPeriod,
		PreservedCycles:       d.PreservedCycles,
		TokensPerRoll:         int64(d.TokensPerRoll),
		BlockReward:           int64(d.BlockReward),
		BlockDeposit:          int64(d.BlockDeposit),
	}
}

// rawBlock converts a node block. Only applied transactions and delegations
// are kept, in inclusion order.
func (d *blockDTO) rawBlock() *model.RawBlock {
	raw := &model.RawBlock{
		Level:       d.Header.Level,
		Hash:        d.Hash,
		Predecessor: d.Header.Predecessor,
		Protocol:    d.Protocol,
		Header: model.RawHeader{
			Timestamp: d.Header.Timestamp.UTC(),
			Priority:  d.Header.Priority,
		},
		Metadata: model.RawMetadata{
			Baker:        d.Metadata.Baker,
			Protocol:     d.Metadata.Protocol,
			NextProtocol: d.Metadata.NextProtocol,
		},
	}
	for _, pass := range d.Operations {
		for _, op := range pass {
			for _, c := range op.Contents {
				if status := c.Metadata.OperationResult.Status; status != "" && status != "applied" {
					continue
				}
				switch model.RawOperationKind(c.Kind) {
				case model.OpTransaction:
					raw.Operations = append(raw.Operations, model.RawOperation{
						Hash:        op.Hash,
						Kind:        model.OpTransaction,
						Source:      c.Source,
						Destination: c.Destination,
						Amount:      int64(c.Amount),
						Fee:         int64(c.Fee),
						Counter:     int64(c.Counter),
					})
				case model.OpDelegation:
					raw.Operations = append(raw.Operations, model.RawOperation{
						Hash:     op.Hash,
						Kind:     model.OpDelegation,
						Source:   c.Source,
						Delegate: c.Delegate,
						Fee:      int64(c.Fee),
						Counter:  int64(c.Counter),
					})
				}
			}
		}
	}
	return raw
}

func decodeJSON(body []byte, v any) error {
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
