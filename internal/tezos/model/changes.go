package model

// ChangeSet lists the rows one committed transaction wrote and removed.
// Version increases with every commit and orders rows in the table mirror.
type ChangeSet struct {
	Version          uint64
	Protocols        []Protocol
	DeletedProtocols []string
	Blocks           []Block
	DeletedBlocks    []int64
	Accounts         []Account
	DeletedAccounts  []int64
	Cycles           []Cycle
	DeletedCycles    []int
}

// Empty reports whether the change set carries no rows.
func (c ChangeSet) Empty() bool {
	return len(c.Protocols) == 0 && len(c.DeletedProtocols) == 0 &&
		len(c.Blocks) == 0 && len(c.DeletedBlocks) == 0 &&
		len(c.Accounts) == 0 && len(c.DeletedAccounts) == 0 &&
		len(c.Cycles) == 0 && len(c.DeletedCycles) == 0
}
