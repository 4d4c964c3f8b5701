package activity

import (
	"fmt"
	"slices"

	"activityScope/internal/model"
)

// classifyCoins turns the non-gas coin activities of a bundle into swap, send
// or receive events.
func classifyCoins(account string, activities []model.CoinActivity) ([]model.ActivityEvent, error) {
	if isCoinSwap(account, activities) {
		return classifySwaps(activities)
	}
	return classifyTransfers(account, activities)
}

// splitCoinActivities partitions deposits and withdrawals and sorts each side
// ascending by amount. Sorting is stable so equal amounts keep input order.
func splitCoinActivities(activities []model.CoinActivity) ([]model.CoinActivity, []model.CoinActivity) {
	var deposits, withdrawals []model.CoinActivity
	for _, activity := range activities {
		switch activity.ActivityType {
		case model.CoinDepositEvent:
			deposits = append(deposits, activity)
		case model.CoinWithdrawEvent:
			withdrawals = append(withdrawals, activity)
		}
	}

	byAmount := func(a, b model.CoinActivity) int {
		return a.Amount.Cmp(b.Amount)
	}
	slices.SortStableFunc(deposits, byAmount)
	slices.SortStableFunc(withdrawals, byAmount)
	return deposits, withdrawals
}

// isCoinSwap reports an exchange internal to the account: more than one coin
// type and no counterparty.
func isCoinSwap(account string, activities []model.CoinActivity) bool {
	coinTypes := make(map[string]struct{}, len(activities))
	for _, activity := range activities {
		if activity.EventAccountAddress != account {
			return false
		}
		coinTypes[activity.CoinType] = struct{}{}
	}
	return len(coinTypes) > 1
}

func classifySwaps(activities []model.CoinActivity) ([]model.ActivityEvent, error) {
	deposits, withdrawals := splitCoinActivities(activities)
	if len(deposits) != len(withdrawals) {
		return nil, fmt.Errorf("%w: only one-for-one coin swaps are supported (%d deposits, %d withdrawals)",
			ErrDepositWithdrawalMismatch, len(deposits), len(withdrawals))
	}

	events := make([]model.ActivityEvent, 0, len(deposits))
	for i := range deposits {
		deposit := deposits[i]
		withdrawal := withdrawals[i]
		events = append(events, &model.SwapCoinEvent{
			Amount:     withdrawal.Amount,
			Coin:       withdrawal.CoinType,
			CoinInfo:   withdrawal.CoinInfo,
			SwapAmount: deposit.Amount,
			SwapCoin:   deposit.CoinType,
		})
	}
	return events, nil
}

func classifyTransfers(account string, activities []model.CoinActivity) ([]model.ActivityEvent, error) {
	deposits, withdrawals := splitCoinActivities(activities)

	events := make([]model.ActivityEvent, 0, len(deposits))
	for _, deposit := range deposits {
		// The search does not consume the withdrawal; one withdrawal may
		// back several deposits of the same coin type.
		idx := slices.IndexFunc(withdrawals, func(w model.CoinActivity) bool {
			return w.CoinType == deposit.CoinType
		})
		if idx < 0 {
			return nil, fmt.Errorf("%w: no matching withdrawal for deposit of %s %s",
				ErrDepositWithdrawalMismatch, deposit.Amount, deposit.CoinType)
		}
		withdrawal := withdrawals[idx]

		switch {
		case withdrawal.EventAccountAddress == account:
			events = append(events, &model.SendCoinEvent{
				Amount:   deposit.Amount,
				Coin:     withdrawal.CoinType,
				CoinInfo: withdrawal.CoinInfo,
				Receiver: coinIdentity(deposit),
			})
		case deposit.EventAccountAddress == account:
			events = append(events, &model.ReceiveCoinEvent{
				Amount:   deposit.Amount,
				Coin:     deposit.CoinType,
				CoinInfo: deposit.CoinInfo,
				Sender:   coinIdentity(withdrawal),
			})
		default:
			// unrelated parties, e.g. marketplace fan-out
		}
	}
	return events, nil
}
