package model

// Cycle holds the stake snapshot that governs one cycle.
type Cycle struct {
	Index           int
	FirstLevel      int64
	LastLevel       int64
	SnapshotIndex   int
	SnapshotLevel   int64
	TotalStaking    int64
	TotalDelegated  int64
	TotalDelegators int64
	TotalBakers     int64
	SelectedStake   int64
	SelectedBakers  int64
	Seed            string
}
