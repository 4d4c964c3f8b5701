package activity

import "activityScope/internal/model"

var stakeKinds = map[string]model.EventType{
	model.StakeAddEvent:      model.EventAddStake,
	model.StakeUnlockEvent:   model.EventUnstake,
	model.StakeWithdrawEvent: model.EventWithdrawStake,
}

// aggregateStakes maps delegation pool events to stake events. Withdrawals are
// reported by the pool in chunks; they are summed per pool and emitted once,
// after the add/unstake events, in first-seen pool order.
func aggregateStakes(activities []model.StakeActivity) []model.ActivityEvent {
	var events []model.ActivityEvent

	withdrawn := make(map[string]model.Amount)
	var pools []string

	for _, activity := range activities {
		kind, ok := stakeKinds[activity.EventType]
		if !ok {
			continue
		}

		if kind == model.EventWithdrawStake {
			total, seen := withdrawn[activity.PoolAddress]
			if !seen {
				pools = append(pools, activity.PoolAddress)
			}
			withdrawn[activity.PoolAddress] = total.Add(activity.Amount)
			continue
		}

		events = append(events, &model.StakeEvent{
			Kind:   kind,
			Amount: activity.Amount.String(),
			Pool:   activity.PoolAddress,
		})
	}

	for _, pool := range pools {
		events = append(events, &model.StakeEvent{
			Kind:   model.EventWithdrawStake,
			Amount: withdrawn[pool].String(),
			Pool:   pool,
		})
	}
	return events
}
