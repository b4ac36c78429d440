package model

import "time"

// BlockEvents is a bitmask of boundary events a block triggers.
type BlockEvents uint32

const (
	CycleBegin BlockEvents = 1 << iota
	CycleEnd
	ProtocolBegin
	ProtocolEnd
	VotingPeriodBegin
	VotingPeriodEnd
)

// Has reports whether all events in e are set.
func (b BlockEvents) Has(e BlockEvents) bool {
	return b&e == e
}

// Block is the indexed representation of one chain level.
type Block struct {
	Level           int64
	Hash            string
	Predecessor     string
	Timestamp       time.Time
	Priority        int32
	ProtoCode       string
	BakerID         *int64
	Events          BlockEvents
	Fees            int64
	OperationsCount int32
}
