package model

import (
	"encoding/json"
	"time"
)

// EventType is the `_type` tag of an encoded activity event.
type EventType string

const (
	EventSend              EventType = "send"
	EventReceive           EventType = "receive"
	EventSwap              EventType = "swap"
	EventGas               EventType = "gas"
	EventSendToken         EventType = "send_token"
	EventReceiveToken      EventType = "receive_token"
	EventSendTokenOffer    EventType = "send_token_offer"
	EventReceiveTokenOffer EventType = "receive_token_offer"
	EventMintToken         EventType = "mint_token"
	EventAddStake          EventType = "add-stake"
	EventUnstake           EventType = "unstake"
	EventWithdrawStake     EventType = "withdraw-stake"
)

// ActivityEvent is one of the event structs in this file. The set is closed;
// consumers switch over the concrete pointer types.
type ActivityEvent interface {
	Type() EventType
	Base() *BaseEvent
	isActivityEvent()
}

// BaseEvent holds the transaction-level fields shared by every event of a bundle.
type BaseEvent struct {
	Account    string    `json:"account"`
	EventIndex int       `json:"event_index"`
	Gas        Amount    `json:"gas"`
	Success    bool      `json:"success"`
	Timestamp  time.Time `json:"timestamp"`
	Version    uint64    `json:"version"`
}

// Identity is an address with an optional display name.
type Identity struct {
	Address string `json:"address"`
	Name    string `json:"name,omitempty"`
}

// SendCoinEvent is a coin transfer from the account.
type SendCoinEvent struct {
	BaseEvent
	Amount   Amount    `json:"amount"`
	Coin     string    `json:"coin"`
	CoinInfo *CoinInfo `json:"coin_info,omitempty"`
	Receiver Identity  `json:"receiver"`
}

// ReceiveCoinEvent is a coin transfer to the account.
type ReceiveCoinEvent struct {
	BaseEvent
	Amount   Amount    `json:"amount"`
	Coin     string    `json:"coin"`
	CoinInfo *CoinInfo `json:"coin_info,omitempty"`
	Sender   Identity  `json:"sender"`
}

// SwapCoinEvent exchanges {Coin, Amount} for {SwapCoin, SwapAmount}.
type SwapCoinEvent struct {
	BaseEvent
	Amount     Amount    `json:"amount"`
	Coin       string    `json:"coin"`
	CoinInfo   *CoinInfo `json:"coin_info,omitempty"`
	SwapAmount Amount    `json:"swap_amount"`
	SwapCoin   string    `json:"swap_coin"`
}

// GasEvent is a fee paid by a transaction with no other balance change.
type GasEvent struct {
	BaseEvent
}

// SendTokenEvent is a token sent by direct transfer or a claimed offer.
type SendTokenEvent struct {
	BaseEvent
	Collection string    `json:"collection"`
	Name       string    `json:"name"`
	URI        string    `json:"uri"`
	Receiver   *Identity `json:"receiver"`
}

// ReceiveTokenEvent is a token received by direct transfer, a claimed offer,
// or a purchase. Sender is nil when the counterparty is unknown.
type ReceiveTokenEvent struct {
	BaseEvent
	Collection string    `json:"collection"`
	Name       string    `json:"name"`
	URI        string    `json:"uri"`
	Sender     *Identity `json:"sender"`
}

// SendTokenOfferEvent is a pending token offer made by the account.
type SendTokenOfferEvent struct {
	BaseEvent
	Collection string    `json:"collection"`
	Name       string    `json:"name"`
	URI        string    `json:"uri"`
	Receiver   *Identity `json:"receiver"`
}

// ReceiveTokenOfferEvent is a pending token offer made to the account.
type ReceiveTokenOfferEvent struct {
	BaseEvent
	Collection string    `json:"collection"`
	Name       string    `json:"name"`
	URI        string    `json:"uri"`
	Sender     *Identity `json:"sender"`
}

// MintTokenEvent is a token mint.
type MintTokenEvent struct {
	BaseEvent
	Amount     Amount    `json:"amount"`
	Collection string    `json:"collection"`
	Name       string    `json:"name"`
	URI        string    `json:"uri"`
	Minter     *Identity `json:"minter"`
}

// StakeEvent is a delegation pool operation. Kind is one of EventAddStake,
// EventUnstake or EventWithdrawStake.
type StakeEvent struct {
	BaseEvent
	Kind   EventType `json:"-"`
	Amount string    `json:"amount"`
	Pool   string    `json:"pool"`
}

func (e *SendCoinEvent) Type() EventType          { return EventSend }
func (e *ReceiveCoinEvent) Type() EventType       { return EventReceive }
func (e *SwapCoinEvent) Type() EventType          { return EventSwap }
func (e *GasEvent) Type() EventType               { return EventGas }
func (e *SendTokenEvent) Type() EventType         { return EventSendToken }
func (e *ReceiveTokenEvent) Type() EventType      { return EventReceiveToken }
func (e *SendTokenOfferEvent) Type() EventType    { return EventSendTokenOffer }
func (e *ReceiveTokenOfferEvent) Type() EventType { return EventReceiveTokenOffer }
func (e *MintTokenEvent) Type() EventType         { return EventMintToken }
func (e *StakeEvent) Type() EventType             { return e.Kind }

func (e *SendCoinEvent) Base() *BaseEvent          { return &e.BaseEvent }
func (e *ReceiveCoinEvent) Base() *BaseEvent       { return &e.BaseEvent }
func (e *SwapCoinEvent) Base() *BaseEvent          { return &e.BaseEvent }
func (e *GasEvent) Base() *BaseEvent               { return &e.BaseEvent }
func (e *SendTokenEvent) Base() *BaseEvent         { return &e.BaseEvent }
func (e *ReceiveTokenEvent) Base() *BaseEvent      { return &e.BaseEvent }
func (e *SendTokenOfferEvent) Base() *BaseEvent    { return &e.BaseEvent }
func (e *ReceiveTokenOfferEvent) Base() *BaseEvent { return &e.BaseEvent }
func (e *MintTokenEvent) Base() *BaseEvent         { return &e.BaseEvent }
func (e *StakeEvent) Base() *BaseEvent             { return &e.BaseEvent }

func (*SendCoinEvent) isActivityEvent()          {}
func (*ReceiveCoinEvent) isActivityEvent()       {}
func (*SwapCoinEvent) isActivityEvent()          {}
func (*GasEvent) isActivityEvent()               {}
func (*SendTokenEvent) isActivityEvent()         {}
func (*ReceiveTokenEvent) isActivityEvent()      {}
func (*SendTokenOfferEvent) isActivityEvent()    {}
func (*ReceiveTokenOfferEvent) isActivityEvent() {}
func (*MintTokenEvent) isActivityEvent()         {}
func (*StakeEvent) isActivityEvent()             {}

// MarshalJSON adds the `_type` tag. The alias types drop the method set so the
// embedded struct encodes with its plain field names.
func (e SendCoinEvent) MarshalJSON() ([]byte, error) {
	type alias SendCoinEvent
	return json.Marshal(struct {
		Type EventType `json:"_type"`
		alias
	}{EventSend, alias(e)})
}

func (e ReceiveCoinEvent) MarshalJSON() ([]byte, error) {
	type alias ReceiveCoinEvent
	return json.Marshal(struct {
		Type EventType `json:"_type"`
		alias
	}{EventReceive, alias(e)})
}

func (e SwapCoinEvent) MarshalJSON() ([]byte, error) {
	type alias SwapCoinEvent
	return json.Marshal(struct {
		Type EventType `json:"_type"`
		alias
	}{EventSwap, alias(e)})
}

func (e GasEvent) MarshalJSON() ([]byte, error) {
	type alias GasEvent
	return json.Marshal(struct {
		Type EventType `json:"_type"`
		alias
	}{EventGas, alias(e)})
}

func (e SendTokenEvent) MarshalJSON() ([]byte, error) {
	type alias SendTokenEvent
	return json.Marshal(struct {
		Type EventType `json:"_type"`
		alias
	}{EventSendToken, alias(e)})
}

func (e ReceiveTokenEvent) MarshalJSON() ([]byte, error) {
	type alias ReceiveTokenEvent
	return json.Marshal(struct {
		Type EventType `json:"_type"`
		alias
	}{EventReceiveToken, alias(e)})
}

func (e SendTokenOfferEvent) MarshalJSON() ([]byte, error) {
	type alias SendTokenOfferEvent
	return json.Marshal(struct {
		Type EventType `json:"_type"`
		alias
	}{EventSendTokenOffer, alias(e)})
}

func (e ReceiveTokenOfferEvent) MarshalJSON() ([]byte, error) {
	type alias ReceiveTokenOfferEvent
	return json.Marshal(struct {
		Type EventType `json:"_type"`
		alias
	}{EventReceiveTokenOffer, alias(e)})
}

func (e MintTokenEvent) MarshalJSON() ([]byte, error) {
	type alias MintTokenEvent
	return json.Marshal(struct {
		Type EventType `json:"_type"`
		alias
	}{EventMintToken, alias(e)})
}

func (e StakeEvent) MarshalJSON() ([]byte, error) {
	type alias StakeEvent
	return json.Marshal(struct {
		Type EventType `json:"_type"`
		alias
	}{e.Kind, alias(e)})
}
