package model

import (
	"encoding/json"
	"fmt"
)

// DecodeEvent decodes a JSON-encoded activity event using its `_type` tag.
func DecodeEvent(data []byte) (ActivityEvent, error) {
	var tag struct {
		Type EventType `json:"_type"`
	}
	if err := json.Unmarshal(data, &tag); err != nil {
		return nil, fmt.Errorf("decode event tag: %w", err)
	}

	var event ActivityEvent
	switch tag.Type {
	case EventSend:
		event = &SendCoinEvent{}
	case EventReceive:
		event = &ReceiveCoinEvent{}
	case EventSwap:
		event = &SwapCoinEvent{}
	case EventGas:
		event = &GasEvent{}
	case EventSendToken:
		event = &SendTokenEvent{}
	case EventReceiveToken:
		event = &ReceiveTokenEvent{}
	case EventSendTokenOffer:
		event = &SendTokenOfferEvent{}
	case EventReceiveTokenOffer:
		event = &ReceiveTokenOfferEvent{}
	case EventMintToken:
		event = &MintTokenEvent{}
	case EventAddStake, EventUnstake, EventWithdrawStake:
		event = &StakeEvent{Kind: tag.Type}
	default:
		return nil, fmt.Errorf("unknown event type: %q", tag.Type)
	}

	if err := json.Unmarshal(data, event); err != nil {
		return nil, fmt.Errorf("decode %s event: %w", tag.Type, err)
	}
	return event, nil
}
