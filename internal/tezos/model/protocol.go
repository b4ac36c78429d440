package model

// Constants holds the consensus parameters of one protocol version.
type Constants struct {
	BlocksPerCycle        int64
	BlocksPerVotingPeriod int64
	PreservedCycles       int
	TokensPerRoll         int64
	BlockReward           int64
	BlockDeposit          int64
}

// Protocol is a protocol version together with the number of applied blocks referencing it.
type Protocol struct {
	Code   string
	Weight int64
	Constants
}

// CycleStart returns the first level of the cycle.
func (p *Protocol) CycleStart(index int) int64 {
	return int64(index)*p.BlocksPerCycle + 1
}

// CycleEnd returns the last level of the cycle.
func (p *Protocol) CycleEnd(index int) int64 {
	return int64(index+1) * p.BlocksPerCycle
}

// Cycle returns the index of the cycle containing level.
func (p *Protocol) Cycle(level int64) int {
	if level < 1 {
		return 0
	}
	return int((level - 1) / p.BlocksPerCycle)
}
