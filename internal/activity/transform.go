package activity

import (
	"fmt"

	"activityScope/internal/model"
)

// Transform classifies one bundle into the activity events of its account.
//
// Events are ordered coin, stake, token. Coin events are dropped when the
// bundle has stake events, since delegation pool operations also emit coin
// deposits and withdrawals. A bare GasEvent is emitted when nothing else was
// produced and the account paid the fee. Every event carries the gas record's
// base fields and its position as EventIndex.
//
// Transform is pure and safe for concurrent use.
func Transform(bundle model.Bundle) ([]model.ActivityEvent, error) {
	gas, ok := findGasRecord(bundle.CoinActivities)
	if !ok {
		return nil, fmt.Errorf("%w: account %s version %d",
			ErrGasRecordNotFound, bundle.AccountAddress, bundle.TransactionVersion)
	}

	stakeEvents := aggregateStakes(bundle.StakeActivities)

	var coinEvents []model.ActivityEvent
	if len(stakeEvents) == 0 {
		var err error
		coinEvents, err = classifyCoins(bundle.AccountAddress, withoutGas(bundle.CoinActivities))
		if err != nil {
			return nil, fmt.Errorf("classify coins at version %d: %w", bundle.TransactionVersion, err)
		}
	}

	tokenEvents, err := classifyTokens(bundle.AccountAddress, bundle.TokenActivities)
	if err != nil {
		return nil, fmt.Errorf("classify tokens at version %d: %w", bundle.TransactionVersion, err)
	}

	events := make([]model.ActivityEvent, 0, len(coinEvents)+len(stakeEvents)+len(tokenEvents)+1)
	events = append(events, coinEvents...)
	events = append(events, stakeEvents...)
	events = append(events, tokenEvents...)

	if len(events) == 0 && gas.EventAccountAddress == bundle.AccountAddress {
		events = append(events, &model.GasEvent{})
	}

	base := model.BaseEvent{
		Account:   bundle.AccountAddress,
		Gas:       gas.Amount,
		Success:   gas.IsTransactionSuccess,
		Timestamp: gas.TransactionTimestamp.Time,
		Version:   uint64(gas.TransactionVersion),
	}
	for i, event := range events {
		stamped := base
		stamped.EventIndex = i
		*event.Base() = stamped
	}

	return events, nil
}

func findGasRecord(activities []model.CoinActivity) (model.CoinActivity, bool) {
	for _, activity := range activities {
		if activity.IsGas() {
			return activity, true
		}
	}
	return model.CoinActivity{}, false
}

func withoutGas(activities []model.CoinActivity) []model.CoinActivity {
	out := make([]model.CoinActivity, 0, len(activities))
	for _, activity := range activities {
		if activity.IsGas() {
			continue
		}
		out = append(out, activity)
	}
	return out
}
