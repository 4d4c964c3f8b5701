package activity

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activityScope/internal/model"
)

func TestTransformSendCoin(t *testing.T) {
	b := bundle(alice, []model.CoinActivity{
		gasRecord(t, alice, "54100"),
		withdrawal(t, alice, aptosCoin, "2440000"),
		deposit(t, bob, aptosCoin, "2440000"),
	}, nil, nil)

	events, err := Transform(b)
	require.NoError(t, err)

	requireEventsJSON(t, `[{
		"_type": "send",
		"account": "`+alice+`",
		"event_index": 0,
		"gas": "54100",
		"success": true,
		"timestamp": "2022-10-20T04:01:35Z",
		"version": 4980001,
		"amount": "2440000",
		"coin": "0x1::aptos_coin::AptosCoin",
		"receiver": {"address": "`+bob+`"}
	}]`, events)
}

func TestTransformSendToSelf(t *testing.T) {
	b := bundle(alice, []model.CoinActivity{
		gasRecord(t, alice, "750"),
		deposit(t, alice, aptosCoin, "717"),
		withdrawal(t, alice, aptosCoin, "717"),
	}, nil, nil)

	events, err := Transform(b)
	require.NoError(t, err)
	require.Len(t, events, 1)

	send, ok := events[0].(*model.SendCoinEvent)
	require.True(t, ok, "got %T", events[0])
	assert.Equal(t, "717", send.Amount.String())
	assert.Equal(t, alice, send.Receiver.Address)
	assert.Equal(t, "750", send.Gas.String())
}

func TestTransformReceiveCoinWithName(t *testing.T) {
	w := withdrawal(t, bob, aptosCoin, "100000000")
	w.AptosNames = []model.AptosName{{Domain: "bob"}}
	info := &model.CoinInfo{CoinType: aptosCoin, Decimals: 8, Name: "Aptos Coin", Symbol: "APT"}
	d := deposit(t, alice, aptosCoin, "100000000")
	d.CoinInfo = info

	events, err := Transform(bundle(alice, []model.CoinActivity{
		gasRecord(t, bob, "500"),
		w,
		d,
	}, nil, nil))
	require.NoError(t, err)
	require.Len(t, events, 1)

	receive, ok := events[0].(*model.ReceiveCoinEvent)
	require.True(t, ok, "got %T", events[0])
	assert.Equal(t, model.Identity{Address: bob, Name: "bob"}, receive.Sender)
	assert.Equal(t, info, receive.CoinInfo)
	assert.Equal(t, "100000000", receive.Amount.String())
	assert.Equal(t, "500", receive.Gas.String())
}

func TestTransformSwap(t *testing.T) {
	const usdc = "0xf22bede237a07e121b56d91a491eb7bcdfd1f5907926a9e58338f964a01b17fa::asset::USDC"
	events, err := Transform(bundle(alice, []model.CoinActivity{
		gasRecord(t, alice, "1000"),
		withdrawal(t, alice, aptosCoin, "21362666"),
		deposit(t, alice, usdc, "173317163"),
	}, nil, nil))
	require.NoError(t, err)

	requireEventsJSON(t, `[{
		"_type": "swap",
		"account": "`+alice+`",
		"event_index": 0,
		"gas": "1000",
		"success": true,
		"timestamp": "2022-10-20T04:01:35Z",
		"version": 4980001,
		"amount": "21362666",
		"coin": "0x1::aptos_coin::AptosCoin",
		"swap_amount": "173317163",
		"swap_coin": "`+usdc+`"
	}]`, events)
}

func TestTransformGasOnly(t *testing.T) {
	events, err := Transform(bundle(alice, []model.CoinActivity{gasRecord(t, alice, "99600")}, nil, nil))
	require.NoError(t, err)
	require.Len(t, events, 1)

	gas, ok := events[0].(*model.GasEvent)
	require.True(t, ok, "got %T", events[0])
	assert.Equal(t, "99600", gas.Gas.String())
	assert.Equal(t, 0, gas.EventIndex)
	assert.Equal(t, txTime, gas.Timestamp)
}

func TestTransformNoGasEventForOtherPayer(t *testing.T) {
	events, err := Transform(bundle(alice, []model.CoinActivity{gasRecord(t, bob, "99600")}, nil, nil))
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestTransformMissingGasRecord(t *testing.T) {
	events, err := Transform(bundle(alice, []model.CoinActivity{
		withdrawal(t, alice, aptosCoin, "10"),
		deposit(t, bob, aptosCoin, "10"),
	}, nil, nil))
	require.ErrorIs(t, err, ErrGasRecordNotFound)
	assert.Nil(t, events)
	assert.Equal(t, KindGasRecordNotFound, ErrorKind(err))
}

func TestTransformStakeSuppressesCoins(t *testing.T) {
	events, err := Transform(bundle(alice, []model.CoinActivity{
		gasRecord(t, alice, "54100"),
		withdrawal(t, alice, aptosCoin, "5000000000"),
		deposit(t, poolA, aptosCoin, "5000000000"),
	}, nil, []model.StakeActivity{
		stakeRecord(t, model.StakeAddEvent, poolA, "5000000000"),
	}))
	require.NoError(t, err)
	require.Len(t, events, 1)

	stake, ok := events[0].(*model.StakeEvent)
	require.True(t, ok, "got %T", events[0])
	assert.Equal(t, model.EventAddStake, stake.Type())
	assert.Equal(t, "5000000000", stake.Amount)
	assert.Equal(t, poolA, stake.Pool)
}

func TestTransformStakeSuppressesCoinErrors(t *testing.T) {
	// A lone deposit would be a mismatch if coins were classified.
	events, err := Transform(bundle(alice, []model.CoinActivity{
		gasRecord(t, alice, "54100"),
		deposit(t, alice, aptosCoin, "3000"),
	}, nil, []model.StakeActivity{
		stakeRecord(t, model.StakeWithdrawEvent, poolA, "3000"),
	}))
	require.NoError(t, err)
	assert.Equal(t, []model.EventType{model.EventWithdrawStake}, eventTypes(events))
}

func TestTransformWithdrawStakeChunks(t *testing.T) {
	events, err := Transform(bundle(alice, []model.CoinActivity{gasRecord(t, alice, "54100")}, nil, []model.StakeActivity{
		stakeRecord(t, model.StakeWithdrawEvent, poolA, "5000000000"),
		stakeRecord(t, model.StakeWithdrawEvent, poolA, "3000"),
	}))
	require.NoError(t, err)

	requireEventsJSON(t, `[{
		"_type": "withdraw-stake",
		"account": "`+alice+`",
		"event_index": 0,
		"gas": "54100",
		"success": true,
		"timestamp": "2022-10-20T04:01:35Z",
		"version": 4980001,
		"amount": "5000003000",
		"pool": "`+poolA+`"
	}]`, events)
}

func TestTransformOrderCoinStakeToken(t *testing.T) {
	// Stake events suppress coins, so order is checked with coin + token and
	// stake + token separately.
	events, err := Transform(bundle(alice, []model.CoinActivity{
		gasRecord(t, alice, "61200"),
		withdrawal(t, alice, aptosCoin, "4830000"),
		deposit(t, carol, aptosCoin, "4830000"),
	}, []model.TokenActivity{
		tokenRecord(model.TokenDepositEvent, alice, nil, nil, "hash-1"),
	}, nil))
	require.NoError(t, err)
	assert.Equal(t, []model.EventType{model.EventSend, model.EventReceiveToken}, eventTypes(events))

	events, err = Transform(bundle(alice, []model.CoinActivity{gasRecord(t, alice, "61200")},
		[]model.TokenActivity{tokenRecord(model.TokenMintEvent, alice, strPtr(alice), nil, "hash-1")},
		[]model.StakeActivity{stakeRecord(t, model.StakeUnlockEvent, poolB, "7300046211")},
	))
	require.NoError(t, err)
	assert.Equal(t, []model.EventType{model.EventUnstake, model.EventMintToken}, eventTypes(events))
}

func TestTransformBuyingToken(t *testing.T) {
	marketplace := "0x2c7bccf7b31baf770fdbcc768d9e9cb3d87805e255355df5db32ac9a669010a2"
	events, err := Transform(bundle(alice, []model.CoinActivity{
		gasRecord(t, alice, "61200"),
		deposit(t, marketplace, aptosCoin, "2415000"),
		deposit(t, carol, aptosCoin, "4830000"),
		deposit(t, bob, aptosCoin, "89355000"),
		withdrawal(t, alice, aptosCoin, "96600000"),
	}, []model.TokenActivity{
		tokenRecord(model.TokenDepositEvent, alice, nil, nil, "hash-978"),
	}, nil))
	require.NoError(t, err)

	require.Equal(t, []model.EventType{
		model.EventSend, model.EventSend, model.EventSend, model.EventReceiveToken,
	}, eventTypes(events))
	assert.Equal(t, marketplace, events[0].(*model.SendCoinEvent).Receiver.Address)
	assert.Equal(t, carol, events[1].(*model.SendCoinEvent).Receiver.Address)
	assert.Equal(t, bob, events[2].(*model.SendCoinEvent).Receiver.Address)
	assert.Nil(t, events[3].(*model.ReceiveTokenEvent).Sender)
}

func TestTransformSharedBaseFields(t *testing.T) {
	gas := gasRecord(t, alice, "61200")
	gas.IsTransactionSuccess = false
	gas.TransactionVersion = 120165703

	events, err := Transform(bundle(alice, []model.CoinActivity{
		gas,
		deposit(t, bob, aptosCoin, "5"),
		deposit(t, carol, aptosCoin, "7"),
		withdrawal(t, alice, aptosCoin, "12"),
	}, []model.TokenActivity{
		tokenRecord(model.TokenOfferEvent, alice, strPtr(alice), strPtr(bob), "hash-1"),
	}, nil))
	require.NoError(t, err)
	require.Len(t, events, 3)

	for i, event := range events {
		base := event.Base()
		assert.Equal(t, i, base.EventIndex)
		assert.Equal(t, alice, base.Account)
		assert.Equal(t, "61200", base.Gas.String())
		assert.False(t, base.Success)
		assert.Equal(t, txTime, base.Timestamp)
		assert.Equal(t, uint64(120165703), base.Version)
	}
}

func TestTransformTokenMismatchPropagates(t *testing.T) {
	_, err := Transform(bundle(alice, []model.CoinActivity{gasRecord(t, alice, "100")}, []model.TokenActivity{
		tokenRecord(model.TokenDepositEvent, bob, nil, nil, "hash-1"),
	}, nil))
	require.ErrorIs(t, err, ErrDepositWithdrawalMismatch)
	assert.Equal(t, KindDepositWithdrawalMismatch, ErrorKind(err))
}

// randomBundle builds a well-formed bundle for alice mixing coin transfers,
// delegation pool events and mints. It returns the per-pool withdraw totals
// the stake aggregator should report.
func randomBundle(t *testing.T, rng *rand.Rand) (model.Bundle, map[string]model.Amount) {
	t.Helper()
	randAmount := func() string {
		return strconv.FormatUint(uint64(rng.Int63n(1_000_000_000))+1, 10)
	}

	payer := alice
	if rng.Intn(4) == 0 {
		payer = bob
	}
	coins := []model.CoinActivity{gasRecord(t, payer, randAmount())}

	for i := rng.Intn(3); i > 0; i-- {
		value := randAmount()
		if rng.Intn(2) == 0 {
			coins = append(coins, withdrawal(t, alice, aptosCoin, value), deposit(t, bob, aptosCoin, value))
		} else {
			coins = append(coins, withdrawal(t, carol, aptosCoin, value), deposit(t, alice, aptosCoin, value))
		}
	}

	withdrawn := make(map[string]model.Amount)
	var stakes []model.StakeActivity
	if rng.Intn(2) == 0 {
		kinds := []string{
			model.StakeAddEvent,
			model.StakeUnlockEvent,
			model.StakeWithdrawEvent,
			"0x1::delegation_pool::ReactivateStakeEvent",
		}
		for i := rng.Intn(5); i > 0; i-- {
			pool := poolA
			if rng.Intn(2) == 0 {
				pool = poolB
			}
			kind := kinds[rng.Intn(len(kinds))]
			record := stakeRecord(t, kind, pool, randAmount())
			if kind == model.StakeWithdrawEvent {
				withdrawn[pool] = withdrawn[pool].Add(record.Amount)
			}
			stakes = append(stakes, record)
		}
	}

	var tokens []model.TokenActivity
	if rng.Intn(3) == 0 {
		tokens = append(tokens, tokenRecord(model.TokenMintEvent, alice, strPtr(alice), nil, "hash-1"))
	}

	return bundle(alice, coins, tokens, stakes), withdrawn
}

func TestTransformProperties(t *testing.T) {
	rng := rand.New(rand.NewSource(20221020))
	for i := 0; i < 500; i++ {
		b, withdrawn := randomBundle(t, rng)
		events, err := Transform(b)
		require.NoError(t, err, "bundle %d", i)

		gas := b.CoinActivities[0]
		var stakeEvents, coinEvents int
		sums := make(map[string]string)
		for idx, event := range events {
			base := event.Base()
			// Every event shares the gas record's base fields and its position.
			require.Equal(t, idx, base.EventIndex, "bundle %d", i)
			require.Equal(t, alice, base.Account)
			require.Equal(t, gas.Amount, base.Gas)
			require.Equal(t, gas.IsTransactionSuccess, base.Success)
			require.True(t, base.Timestamp.Equal(gas.TransactionTimestamp.Time))
			require.Equal(t, uint64(gas.TransactionVersion), base.Version)

			switch e := event.(type) {
			case *model.StakeEvent:
				stakeEvents++
				if e.Kind == model.EventWithdrawStake {
					_, seen := sums[e.Pool]
					require.False(t, seen, "pool %s withdrawn twice in bundle %d", e.Pool, i)
					sums[e.Pool] = e.Amount
				}
			case *model.SendCoinEvent, *model.ReceiveCoinEvent, *model.SwapCoinEvent:
				coinEvents++
			case *model.GasEvent:
				require.Len(t, events, 1, "gas event must stand alone in bundle %d", i)
				require.Equal(t, alice, gas.EventAccountAddress)
			}
		}

		if stakeEvents > 0 {
			require.Zero(t, coinEvents, "coin events next to stake events in bundle %d", i)
		}
		require.Len(t, sums, len(withdrawn), "bundle %d", i)
		for pool, total := range withdrawn {
			require.Equal(t, total.String(), sums[pool], "pool %s in bundle %d", pool, i)
		}
		if len(events) == 0 {
			require.Equal(t, bob, gas.EventAccountAddress, "no events although alice paid in bundle %d", i)
		}
	}
}
