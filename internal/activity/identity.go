package activity

import "activityScope/internal/model"

// NewIdentity builds an Identity; an empty name means none was resolved.
func NewIdentity(address, name string) model.Identity {
	return model.Identity{Address: address, Name: name}
}

func firstDomain(names []model.AptosName) string {
	if len(names) == 0 {
		return ""
	}
	return names[0].Domain
}

func coinIdentity(activity model.CoinActivity) model.Identity {
	return NewIdentity(activity.EventAccountAddress, firstDomain(activity.AptosNames))
}

// ownerIdentity resolves the token's previous owner (from_address).
func ownerIdentity(activity model.TokenActivity) *model.Identity {
	if activity.FromAddress == nil || *activity.FromAddress == "" {
		return nil
	}
	identity := NewIdentity(*activity.FromAddress, firstDomain(activity.OwnerNames))
	return &identity
}

// receiverIdentity resolves the token's recipient (to_address).
func receiverIdentity(activity model.TokenActivity) *model.Identity {
	if activity.ToAddress == nil || *activity.ToAddress == "" {
		return nil
	}
	identity := NewIdentity(*activity.ToAddress, firstDomain(activity.ToNames))
	return &identity
}
