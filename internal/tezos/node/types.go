package node

import "time"

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	// Metrics records node RPC outcomes.
	Metrics interface {
		Observe(operation string, err error, started time.Time)
	}
)
