package clickhouse

import (
	"time"

	"github.com/goodnatureofminers/blockinsight7000-tezos/internal/tezos/model"
)

const (
	rowLive    uint8 = 0
	rowDeleted uint8 = 1
)

const insertProtocols = `
INSERT INTO tezos_protocols (
	network,
	code,
	weight,
	blocks_per_cycle,
	blocks_per_voting_period,
	preserved_cycles,
	tokens_per_roll,
	block_reward,
	block_deposit,
	version,
	is_deleted
) VALUES`

const insertBlocks = `
INSERT INTO tezos_blocks (
	network,
	level,
	hash,
	predecessor,
	timestamp,
	priority,
	proto_code,
	baker_id,
	events,
	fees,
	operations_count,
	version,
	is_deleted
) VALUES`

const insertAccounts = `
INSERT INTO tezos_accounts (
	network,
	id,
	address,
	kind,
	balance,
	counter,
	first_level,
	last_level,
	delegate_id,
	transactions_count,
	delegations_count,
	public_key,
	activation_level,
	deactivation_level,
	frozen_deposits,
	frozen_rewards,
	frozen_fees,
	staking_balance,
	delegated_balance,
	delegators_count,
	manager_id,
	version,
	is_deleted
) VALUES`

const insertCycles = `
INSERT INTO tezos_cycles (
	network,
	cycle_index,
	first_level,
	last_level,
	snapshot_index,
	snapshot_level,
	total_staking,
	total_delegated,
	total_delegators,
	total_bakers,
	selected_stake,
	selected_bakers,
	seed,
	version,
	is_deleted
) VALUES`

func protocolRow(n model.Network, p model.Protocol, version uint64, deleted uint8) []any {
	return []any{
		string(n),
		p.Code,
		p.Weight,
		p.BlocksPerCycle,
		p.BlocksPerVotingPeriod,
		int32(p.PreservedCycles),
		p.TokensPerRoll,
		p.BlockReward,
		p.BlockDeposit,
		version,
		deleted,
	}
}

func blockRow(n model.Network, b model.Block, version uint64, deleted uint8) []any {
	ts := b.Timestamp
	if ts.IsZero() {
		ts = time.Unix(0, 0)
	}
	return []any{
		string(n),
		b.Level,
		b.Hash,
		b.Predecessor,
		ts.UTC(),
		b.Priority,
		b.ProtoCode,
		b.BakerID,
		uint32(b.Events),
		b.Fees,
		b.OperationsCount,
		version,
		deleted,
	}
}

func accountRow(n model.Network, a model.Account, version uint64, deleted uint8) []any {
	base := a.Base()
	var (
		publicKey string
		delegate  model.Delegate
		managerID *int64
	)
	switch v := a.(type) {
	case *model.User:
		publicKey = v.PublicKey
	case *model.Delegate:
		publicKey = v.PublicKey
		delegate = *v
	case *model.Contract:
		managerID = v.ManagerID
	}
	return []any{
		string(n),
		base.ID,
		base.Address,
		uint8(a.Kind()),
		base.Balance,
		base.Counter,
		base.FirstLevel,
		base.LastLevel,
		base.DelegateID,
		base.TransactionsCount,
		base.DelegationsCount,
		publicKey,
		delegate.ActivationLevel,
		delegate.DeactivationLevel,
		delegate.FrozenDeposits,
		delegate.FrozenRewards,
		delegate.FrozenFees,
		delegate.StakingBalance,
		delegate.DelegatedBalance,
		delegate.DelegatorsCount,
		managerID,
		version,
		deleted,
	}
}

func cycleRow(n model.Network, c model.Cycle, version uint64, deleted uint8) []any {
	return []any{
		string(n),
		int32(c.Index),
		c.FirstLevel,
		c.LastLevel,
		int32(c.SnapshotIndex),
		c.SnapshotLevel,
		c.TotalStaking,
		c.TotalDelegated,
		c.TotalDelegators,
		c.TotalBakers,
		c.SelectedStake,
		c.SelectedBakers,
		c.Seed,
		version,
		deleted,
	}
}

// tableRows renders the rows of one table, upserts first then tombstones.
func tableRows(n model.Network, table string, cs model.ChangeSet) [][]any {
	var rows [][]any
	switch table {
	case tableProtocols:
		for _, p := range cs.Protocols {
			rows = append(rows, protocolRow(n, p, cs.Version, rowLive))
		}
		for _, code := range cs.DeletedProtocols {
			rows = append(rows, protocolRow(n, model.Protocol{Code: code}, cs.Version, rowDeleted))
		}
	case tableBlocks:
		for _, b := range cs.Blocks {
			rows = append(rows, blockRow(n, b, cs.Version, rowLive))
		}
		for _, level := range cs.DeletedBlocks {
			rows = append(rows, blockRow(n, model.Block{Level: level}, cs.Version, rowDeleted))
		}
	case tableAccounts:
		for _, a := range cs.Accounts {
			rows = append(rows, accountRow(n, a, cs.Version, rowLive))
		}
		for _, id := range cs.DeletedAccounts {
			rows = append(rows, accountRow(n, &model.User{AccountBase: model.AccountBase{ID: id}}, cs.Version, rowDeleted))
		}
	case tableCycles:
		for _, c := range cs.Cycles {
			rows = append(rows, cycleRow(n, c, cs.Version, rowLive))
		}
		for _, index := range cs.DeletedCycles {
			rows = append(rows, cycleRow(n, model.Cycle{Index: index}, cs.Version, rowDeleted))
		}
	}
	return rows
}

func insertQuery(table string) string {
	switch table {
	case tableProtocols:
		return insertProtocols
	case tableBlocks:
		return insertBlocks
	case tableAccounts:
		return insertAccounts
	default:
		return insertCycles
	}
}
