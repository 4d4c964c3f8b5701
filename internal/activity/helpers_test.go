package activity

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"activityScope/internal/model"
)

const (
	aptosCoin = "0x1::aptos_coin::AptosCoin"

	alice = "0xa7c0fb9acaae1208b141f6b94f768e0daa14c4722b09074816925355d73875c6"
	bob   = "0xbf3cb724ea6eae637284c0a3ac0937c8e961c9720505372ec5903d7a9ad016c4"
	carol = "0x5b9fcc35e2ec419fc44d18cb1dd499bc9685fcaab3b66aeb3d6ea60f4a84993f"
	dave  = "0x92e00bccf40c70d701d60830b91aaed4bd52dae9dc2833271261af06a13d38d5"

	poolA = "0xcd3cdfbd25f69dd03f2a5697445a914b54eb9c687dffe4f0f98c03a70728a18d"
	poolB = "0xbd50bb20e1972747db365c3a6e31255d78867c6b8df9877ea6054bb335dd6031"
)

var txTime = time.Date(2022, 10, 20, 4, 1, 35, 0, time.UTC)

func amount(t *testing.T, value string) model.Amount {
	t.Helper()
	parsed, err := model.ParseAmount(value)
	require.NoError(t, err)
	return parsed
}

func coinRecord(t *testing.T, activityType, address, coinType, value string) model.CoinActivity {
	t.Helper()
	return model.CoinActivity{
		ActivityType:         activityType,
		Amount:               amount(t, value),
		CoinType:             coinType,
		EventAccountAddress:  address,
		IsGasFee:             activityType == model.CoinGasFeeEvent,
		IsTransactionSuccess: true,
		TransactionTimestamp: model.Timestamp{Time: txTime},
		TransactionVersion:   4980001,
	}
}

func gasRecord(t *testing.T, payer, value string) model.CoinActivity {
	return coinRecord(t, model.CoinGasFeeEvent, payer, aptosCoin, value)
}

func deposit(t *testing.T, address, coinType, value string) model.CoinActivity {
	return coinRecord(t, model.CoinDepositEvent, address, coinType, value)
}

func withdrawal(t *testing.T, address, coinType, value string) model.CoinActivity {
	return coinRecord(t, model.CoinWithdrawEvent, address, coinType, value)
}

func strPtr(s string) *string {
	return &s
}

func tokenRecord(transferType, eventAccount string, from, to *string, hash string) model.TokenActivity {
	return model.TokenActivity{
		TransferType:        transferType,
		CollectionName:      "Aptos Zero",
		Name:                "Aptos Zero: 1234",
		TokenDataIDHash:     hash,
		TokenAmount:         model.AmountFromUint64(1),
		EventAccountAddress: eventAccount,
		FromAddress:         from,
		ToAddress:           to,
		CurrentTokenData:    model.TokenData{MetadataURI: "https://example.com/1234.json"},
	}
}

func stakeRecord(t *testing.T, eventType, pool, value string) model.StakeActivity {
	return model.StakeActivity{
		Amount:           amount(t, value),
		DelegatorAddress: alice,
		EventType:        eventType,
		PoolAddress:      pool,
	}
}

func bundle(account string, coins []model.CoinActivity, tokens []model.TokenActivity, stakes []model.StakeActivity) model.Bundle {
	return model.Bundle{
		AccountAddress:     account,
		TransactionVersion: 4980001,
		CoinActivities:     coins,
		TokenActivities:    tokens,
		StakeActivities:    stakes,
	}
}

func requireEventsJSON(t *testing.T, expected string, events []model.ActivityEvent) {
	t.Helper()
	data, err := json.Marshal(events)
	require.NoError(t, err)
	require.JSONEq(t, expected, string(data))
}

func eventTypes(events []model.ActivityEvent) []model.EventType {
	out := make([]model.EventType, 0, len(events))
	for _, event := range events {
		out = append(out, event.Type())
	}
	return out
}
