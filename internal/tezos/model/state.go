package model

import "time"

// AppState holds the sync head and the process-wide counters.
type AppState struct {
	Level          int64
	Hash           string
	Protocol       string
	NextProtocol   string
	Timestamp      time.Time
	BlocksCount    int64
	AccountCounter int64
	CyclesCount    int
	ManagerCounter int64
}
