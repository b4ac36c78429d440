package model

import "time"

// RawOperationKind names the operation kinds the engine understands.
type RawOperationKind string

var (
	OpTransaction RawOperationKind = "transaction"
	OpDelegation  RawOperationKind = "delegation"
)

// RawBlock is a block as decoded from the node, before indexing.
type RawBlock struct {
	Level       int64
	Hash        string
	Predecessor string
	Protocol    string
	Header      RawHeader
	Metadata    RawMetadata
	Operations  []RawOperation
	// Bootstrap lists the genesis accounts. Sources fill it only for the
	// block that activates the first protocol.
	Bootstrap []RawBootstrapAccount
}

// RawHeader carries the shell header fields the engine uses.
type RawHeader struct {
	Timestamp time.Time
	Priority  int32
}

// RawMetadata carries the block metadata fields the engine uses.
type RawMetadata struct {
	Baker        string
	Protocol     string
	NextProtocol string
	Constants    *Constants
}

// RawOperation is a manager operation in inclusion order.
type RawOperation struct {
	Hash        string
	Kind        RawOperationKind
	Source      string
	Destination string
	Delegate    string
	Amount      int64
	Fee         int64
	Counter     int64
}

// RawBootstrapAccount is an account present in the genesis context.
// An account delegated to itself is a bootstrap baker.
type RawBootstrapAccount struct {
	Address   string
	PublicKey string
	Balance   int64
	Delegate  string
}
