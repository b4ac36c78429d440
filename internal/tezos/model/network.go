// Package model defines the entities materialized by the Tezos indexer.
package model

import "errors"

// Network names the chain an indexer instance follows.
type Network string

var (
	Mainnet  Network = "mainnet"
	Ghostnet Network = "ghostnet"
)

// ErrNotFound is returned by stores when an entity does not exist.
var ErrNotFound = errors.New("not found")
