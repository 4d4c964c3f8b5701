package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activityScope/internal/model"
)

func TestAggregateStakes(t *testing.T) {
	events := aggregateStakes([]model.StakeActivity{
		stakeRecord(t, model.StakeWithdrawEvent, poolB, "10"),
		stakeRecord(t, model.StakeAddEvent, poolA, "5000000000"),
		stakeRecord(t, model.StakeWithdrawEvent, poolA, "1"),
		stakeRecord(t, "0x1::delegation_pool::DistributeCommissionEvent", poolA, "99"),
		stakeRecord(t, model.StakeUnlockEvent, poolA, "7300046211"),
		stakeRecord(t, model.StakeWithdrawEvent, poolB, "20"),
	})

	type summary struct {
		kind   model.EventType
		amount string
		pool   string
	}
	got := make([]summary, 0, len(events))
	for _, event := range events {
		stake, ok := event.(*model.StakeEvent)
		require.True(t, ok, "got %T", event)
		got = append(got, summary{stake.Kind, stake.Amount, stake.Pool})
	}

	assert.Equal(t, []summary{
		{model.EventAddStake, "5000000000", poolA},
		{model.EventUnstake, "7300046211", poolA},
		{model.EventWithdrawStake, "30", poolB},
		{model.EventWithdrawStake, "1", poolA},
	}, got)
}

func TestAggregateStakesLargeWithdrawal(t *testing.T) {
	events := aggregateStakes([]model.StakeActivity{
		stakeRecord(t, model.StakeWithdrawEvent, poolA, "340282366920938463463374607431768211455"),
		stakeRecord(t, model.StakeWithdrawEvent, poolA, "1"),
	})
	require.Len(t, events, 1)
	assert.Equal(t, "340282366920938463463374607431768211456", events[0].(*model.StakeEvent).Amount)
}

func TestAggregateStakesUnknownOnly(t *testing.T) {
	events := aggregateStakes([]model.StakeActivity{
		stakeRecord(t, "0x1::delegation_pool::ReactivateStakeEvent", poolA, "1"),
	})
	assert.Empty(t, events)
}

func TestErrorKind(t *testing.T) {
	assert.Equal(t, KindOther, ErrorKind(assert.AnError))
	assert.Equal(t, KindGasRecordNotFound, ErrorKind(ErrGasRecordNotFound))
}
