package activity

import (
	"fmt"

	"activityScope/internal/model"
)

// classifyTokens applies the first matching rule: offers and claims, then
// mints, then deposit/withdrawal pairing.
func classifyTokens(account string, activities []model.TokenActivity) ([]model.ActivityEvent, error) {
	switch {
	case hasTransferType(activities, model.TokenClaimEvent, model.TokenOfferEvent):
		return classifyIndirectTransfers(account, activities), nil
	case hasTransferType(activities, model.TokenMintEvent):
		return classifyMints(activities), nil
	default:
		return classifyDirectTransfers(account, activities)
	}
}

func hasTransferType(activities []model.TokenActivity, types ...string) bool {
	for _, activity := range activities {
		for _, t := range types {
			if activity.TransferType == t {
				return true
			}
		}
	}
	return false
}

func addressIs(address *string, account string) bool {
	return address != nil && *address == account
}

func classifyIndirectTransfers(account string, activities []model.TokenActivity) []model.ActivityEvent {
	var events []model.ActivityEvent
	for _, activity := range activities {
		uri := activity.CurrentTokenData.MetadataURI
		switch activity.TransferType {
		case model.TokenClaimEvent:
			if addressIs(activity.ToAddress, account) {
				events = append(events, &model.ReceiveTokenEvent{
					Collection: activity.CollectionName,
					Name:       activity.Name,
					URI:        uri,
					Sender:     ownerIdentity(activity),
				})
			} else if addressIs(activity.FromAddress, account) {
				events = append(events, &model.SendTokenEvent{
					Collection: activity.CollectionName,
					Name:       activity.Name,
					URI:        uri,
					Receiver:   receiverIdentity(activity),
				})
			}
		case model.TokenOfferEvent:
			if addressIs(activity.ToAddress, account) {
				events = append(events, &model.ReceiveTokenOfferEvent{
					Collection: activity.CollectionName,
					Name:       activity.Name,
					URI:        uri,
					Sender:     ownerIdentity(activity),
				})
			} else if addressIs(activity.FromAddress, account) {
				events = append(events, &model.SendTokenOfferEvent{
					Collection: activity.CollectionName,
					Name:       activity.Name,
					URI:        uri,
					Receiver:   receiverIdentity(activity),
				})
			}
		}
	}
	return events
}

func classifyMints(activities []model.TokenActivity) []model.ActivityEvent {
	var events []model.ActivityEvent
	for _, activity := range activities {
		if activity.TransferType != model.TokenMintEvent {
			continue
		}
		events = append(events, &model.MintTokenEvent{
			Amount:     activity.TokenAmount,
			Collection: activity.CollectionName,
			Name:       activity.Name,
			URI:        activity.CurrentTokenData.MetadataURI,
			Minter:     ownerIdentity(activity),
		})
	}
	return events
}

func classifyDirectTransfers(account string, activities []model.TokenActivity) ([]model.ActivityEvent, error) {
	var deposits, withdrawals []model.TokenActivity
	for _, activity := range activities {
		switch activity.TransferType {
		case model.TokenDepositEvent:
			deposits = append(deposits, activity)
		case model.TokenWithdrawEvent:
			withdrawals = append(withdrawals, activity)
		}
	}

	var events []model.ActivityEvent

	// Not a two-party transfer; a marketplace purchase deposits without a
	// matching withdrawal by the seller.
	if len(deposits) != len(withdrawals) {
		for _, deposit := range deposits {
			if deposit.EventAccountAddress != account {
				continue
			}
			events = append(events, &model.ReceiveTokenEvent{
				Collection: deposit.CollectionName,
				Name:       deposit.Name,
				URI:        deposit.CurrentTokenData.MetadataURI,
				Sender:     nil,
			})
		}
		if len(events) == 0 {
			return nil, fmt.Errorf("%w: deposits must have corresponding withdrawals (%d deposits, %d withdrawals)",
				ErrDepositWithdrawalMismatch, len(deposits), len(withdrawals))
		}
		return events, nil
	}

	for i := range deposits {
		deposit := deposits[i]
		withdrawal := withdrawals[i]
		if deposit.TokenDataIDHash != withdrawal.TokenDataIDHash {
			return nil, fmt.Errorf("%w: token hashes do not match (%s != %s)",
				ErrDepositWithdrawalMismatch, deposit.TokenDataIDHash, withdrawal.TokenDataIDHash)
		}

		switch {
		case deposit.EventAccountAddress == account:
			events = append(events, &model.ReceiveTokenEvent{
				Collection: deposit.CollectionName,
				Name:       deposit.Name,
				URI:        deposit.CurrentTokenData.MetadataURI,
				Sender:     ownerIdentity(withdrawal),
			})
		case withdrawal.EventAccountAddress == account:
			events = append(events, &model.SendTokenEvent{
				Collection: withdrawal.CollectionName,
				Name:       withdrawal.Name,
				URI:        withdrawal.CurrentTokenData.MetadataURI,
				Receiver:   receiverIdentity(deposit),
			})
		}
	}
	return events, nil
}
