package activity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activityScope/internal/model"
)

func TestClassifyTokensClaim(t *testing.T) {
	claim := tokenRecord(model.TokenClaimEvent, alice, strPtr(bob), strPtr(alice), "hash-1")
	claim.OwnerNames = []model.AptosName{{Domain: "bob"}}

	events, err := classifyTokens(alice, []model.TokenActivity{claim})
	require.NoError(t, err)
	require.Len(t, events, 1)

	receive, ok := events[0].(*model.ReceiveTokenEvent)
	require.True(t, ok, "got %T", events[0])
	assert.Equal(t, &model.Identity{Address: bob, Name: "bob"}, receive.Sender)
	assert.Equal(t, "Aptos Zero", receive.Collection)
	assert.Equal(t, "Aptos Zero: 1234", receive.Name)
	assert.Equal(t, "https://example.com/1234.json", receive.URI)

	events, err = classifyTokens(bob, []model.TokenActivity{claim})
	require.NoError(t, err)
	require.Len(t, events, 1)

	send, ok := events[0].(*model.SendTokenEvent)
	require.True(t, ok, "got %T", events[0])
	assert.Equal(t, &model.Identity{Address: alice}, send.Receiver)
}

func TestClassifyTokensOffer(t *testing.T) {
	offer := tokenRecord(model.TokenOfferEvent, alice, strPtr(alice), strPtr(bob), "hash-1")
	offer.ToNames = []model.AptosName{{Domain: "bob"}}

	events, err := classifyTokens(alice, []model.TokenActivity{offer})
	require.NoError(t, err)
	require.Len(t, events, 1)
	send, ok := events[0].(*model.SendTokenOfferEvent)
	require.True(t, ok, "got %T", events[0])
	assert.Equal(t, &model.Identity{Address: bob, Name: "bob"}, send.Receiver)

	events, err = classifyTokens(bob, []model.TokenActivity{offer})
	require.NoError(t, err)
	require.Len(t, events, 1)
	receive, ok := events[0].(*model.ReceiveTokenOfferEvent)
	require.True(t, ok, "got %T", events[0])
	assert.Equal(t, &model.Identity{Address: alice}, receive.Sender)
}

func TestClassifyTokensOfferTakesPriority(t *testing.T) {
	// Offers win over mints and direct transfers in the same bundle.
	events, err := classifyTokens(alice, []model.TokenActivity{
		tokenRecord(model.TokenMintEvent, alice, strPtr(alice), nil, "hash-1"),
		tokenRecord(model.TokenDepositEvent, bob, nil, nil, "hash-1"),
		tokenRecord(model.TokenOfferEvent, alice, strPtr(alice), strPtr(bob), "hash-1"),
	})
	require.NoError(t, err)
	assert.Equal(t, []model.EventType{model.EventSendTokenOffer}, eventTypes(events))
}

func TestClassifyTokensUnrelatedOffer(t *testing.T) {
	events, err := classifyTokens(carol, []model.TokenActivity{
		tokenRecord(model.TokenOfferEvent, alice, strPtr(alice), strPtr(bob), "hash-1"),
	})
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestClassifyTokensMint(t *testing.T) {
	mint := tokenRecord(model.TokenMintEvent, alice, strPtr(alice), nil, "hash-1")
	mint.TokenAmount = model.AmountFromUint64(3)

	events, err := classifyTokens(alice, []model.TokenActivity{
		tokenRecord(model.TokenDepositEvent, alice, nil, nil, "hash-1"),
		mint,
	})
	require.NoError(t, err)

	requireEventsJSON(t, `[{
		"_type": "mint_token",
		"account": "",
		"event_index": 0,
		"gas": "0",
		"success": false,
		"timestamp": "0001-01-01T00:00:00Z",
		"version": 0,
		"amount": "3",
		"collection": "Aptos Zero",
		"name": "Aptos Zero: 1234",
		"uri": "https://example.com/1234.json",
		"minter": {"address": "`+alice+`"}
	}]`, events)
}

func TestClassifyTokensMintWithoutOwner(t *testing.T) {
	events, err := classifyTokens(alice, []model.TokenActivity{
		tokenRecord(model.TokenMintEvent, alice, nil, nil, "hash-1"),
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Nil(t, events[0].(*model.MintTokenEvent).Minter)
}

func TestClassifyTokensDirectTransfer(t *testing.T) {
	withdraw := tokenRecord(model.TokenWithdrawEvent, alice, strPtr(alice), strPtr(bob), "hash-1")
	withdraw.OwnerNames = []model.AptosName{{Domain: "alice"}}
	receive := tokenRecord(model.TokenDepositEvent, bob, strPtr(alice), strPtr(bob), "hash-1")
	receive.ToNames = []model.AptosName{{Domain: "bob"}}
	activities := []model.TokenActivity{withdraw, receive}

	events, err := classifyTokens(alice, activities)
	require.NoError(t, err)
	require.Len(t, events, 1)
	send, ok := events[0].(*model.SendTokenEvent)
	require.True(t, ok, "got %T", events[0])
	assert.Equal(t, &model.Identity{Address: bob, Name: "bob"}, send.Receiver)

	events, err = classifyTokens(bob, activities)
	require.NoError(t, err)
	require.Len(t, events, 1)
	got, ok := events[0].(*model.ReceiveTokenEvent)
	require.True(t, ok, "got %T", events[0])
	assert.Equal(t, &model.Identity{Address: alice, Name: "alice"}, got.Sender)
}

func TestClassifyTokensHashMismatch(t *testing.T) {
	_, err := classifyTokens(alice, []model.TokenActivity{
		tokenRecord(model.TokenWithdrawEvent, alice, strPtr(alice), strPtr(bob), "hash-1"),
		tokenRecord(model.TokenDepositEvent, bob, strPtr(alice), strPtr(bob), "hash-2"),
	})
	require.ErrorIs(t, err, ErrDepositWithdrawalMismatch)
}

func TestClassifyTokensMarketplacePurchase(t *testing.T) {
	events, err := classifyTokens(alice, []model.TokenActivity{
		tokenRecord(model.TokenDepositEvent, alice, nil, nil, "hash-978"),
	})
	require.NoError(t, err)
	require.Len(t, events, 1)

	data, err := events[0].(*model.ReceiveTokenEvent).MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sender":null`)
}

func TestClassifyTokensMarketplaceWithoutAccountDeposit(t *testing.T) {
	_, err := classifyTokens(alice, []model.TokenActivity{
		tokenRecord(model.TokenDepositEvent, bob, nil, nil, "hash-978"),
		tokenRecord(model.TokenDepositEvent, carol, nil, nil, "hash-979"),
		tokenRecord(model.TokenWithdrawEvent, dave, nil, nil, "hash-978"),
	})
	require.ErrorIs(t, err, ErrDepositWithdrawalMismatch)
}

func TestClassifyTokensEmpty(t *testing.T) {
	events, err := classifyTokens(alice, nil)
	require.NoError(t, err)
	assert.Empty(t, events)
}
