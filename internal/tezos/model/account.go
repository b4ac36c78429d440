package model

// AccountKind is the discriminant stored with every account row.
type AccountKind uint8

const (
	KindUser     AccountKind = 0
	KindDelegate AccountKind = 1
	KindContract AccountKind = 2
)

func (k AccountKind) String() string {
	switch k {
	case KindUser:
		return "user"
	case KindDelegate:
		return "delegate"
	case KindContract:
		return "contract"
	default:
		return "unknown"
	}
}

// Account is implemented by *User, *Delegate and *Contract.
// Callers switch on the concrete type to reach variant fields.
type Account interface {
	Base() *AccountBase
	Kind() AccountKind
}

// AccountBase holds the fields shared by every account variant.
type AccountBase struct {
	ID                int64
	Address           string
	Balance           int64
	Counter           int64
	FirstLevel        int64
	LastLevel         int64
	DelegateID        *int64
	TransactionsCount int64
	DelegationsCount  int64
}

// User is an implicit account.
type User struct {
	AccountBase
	PublicKey string
}

func (u *User) Base() *AccountBase { return &u.AccountBase }
func (u *User) Kind() AccountKind  { return KindUser }

// Delegate is a user registered as a baker.
type Delegate struct {
	User
	ActivationLevel   int64
	DeactivationLevel int64
	FrozenDeposits    int64
	FrozenRewards     int64
	FrozenFees        int64
	StakingBalance    int64
	DelegatedBalance  int64
	DelegatorsCount   int64
}

func (d *Delegate) Kind() AccountKind { return KindDelegate }

// Contract is an originated account.
type Contract struct {
	AccountBase
	ManagerID *int64
}

func (c *Contract) Base() *AccountBase { return &c.AccountBase }
func (c *Contract) Kind() AccountKind  { return KindContract }

// CloneAccount returns a deep copy of a.
func CloneAccount(a Account) Account {
	switch v := a.(type) {
	case *User:
		c := *v
		c.DelegateID = cloneID(v.DelegateID)
		return &c
	case *Delegate:
		c := *v
		c.DelegateID = cloneID(v.DelegateID)
		return &c
	case *Contract:
		c := *v
		c.DelegateID = cloneID(v.DelegateID)
		c.ManagerID = cloneID(v.ManagerID)
		return &c
	default:
		return nil
	}
}

func cloneID(id *int64) *int64 {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
