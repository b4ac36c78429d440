package model

// Operation is implemented by *TransactionOperation and *DelegationOperation.
type Operation interface {
	Position() (level int64, index int32)
}

// TransactionOperation is a stored transfer. It keeps the values the transfer
// overwrote so that reverting it restores the accounts exactly.
type TransactionOperation struct {
	Level               int64
	Index               int32
	Hash                string
	Sender              string
	Target              string
	SenderID            int64
	TargetID            int64
	Amount              int64
	Fee                 int64
	Counter             int64
	PrevCounter         int64
	SenderPrevLastLevel int64
	TargetPrevLastLevel int64
	TargetCreated       bool
}

func (o *TransactionOperation) Position() (int64, int32) { return o.Level, o.Index }

// DelegationOperation is a stored delegation change or delegate registration.
type DelegationOperation struct {
	Level          int64
	Index          int32
	Hash           string
	Sender         string
	Delegate       string
	SenderID       int64
	DelegateID     *int64
	PrevDelegateID *int64
	Fee            int64
	Counter        int64
	PrevCounter    int64
	PrevLastLevel  int64
	Registration   bool
}

func (o *DelegationOperation) Position() (int64, int32) { return o.Level, o.Index }
