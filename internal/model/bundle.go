package model

// Coin activity types emitted by the indexer.
const (
	CoinDepositEvent  = "0x1::coin::DepositEvent"
	CoinWithdrawEvent = "0x1::coin::WithdrawEvent"
	CoinGasFeeEvent   = "0x1::aptos_coin::GasFeeEvent"
)

// Token transfer types emitted by the indexer.
const (
	TokenDepositEvent  = "0x3::token::DepositEvent"
	TokenWithdrawEvent = "0x3::token::WithdrawEvent"
	TokenMintEvent     = "0x3::token::MintTokenEvent"
	TokenClaimEvent    = "0x3::token_transfers::TokenClaimEvent"
	TokenOfferEvent    = "0x3::token_transfers::TokenOfferEvent"
)

// Delegation pool event types emitted by the indexer.
const (
	StakeAddEvent      = "0x1::delegation_pool::AddStakeEvent"
	StakeUnlockEvent   = "0x1::delegation_pool::UnlockStakeEvent"
	StakeWithdrawEvent = "0x1::delegation_pool::WithdrawStakeEvent"
)

// Bundle holds every indexed activity row of one transaction, scoped to the
// observed account.
type Bundle struct {
	AccountAddress     string          `json:"account_address"`
	TransactionVersion Version         `json:"transaction_version"`
	CoinActivities     []CoinActivity  `json:"coin_activities"`
	TokenActivities    []TokenActivity `json:"token_activities"`
	StakeActivities    []StakeActivity `json:"delegated_staking_activities"`
}

// AptosName is a resolved name attached to an address by the indexer.
type AptosName struct {
	Domain string `json:"domain"`
}

// CoinInfo is optional coin metadata joined by the indexer.
type CoinInfo struct {
	CoinType string `json:"coin_type"`
	Decimals uint8  `json:"decimals"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
}

// CoinActivity is a single coin movement or the gas fee of a transaction.
type CoinActivity struct {
	ActivityType         string      `json:"activity_type"`
	Amount               Amount      `json:"amount"`
	AptosNames           []AptosName `json:"aptos_names"`
	CoinInfo             *CoinInfo   `json:"coin_info,omitempty"`
	CoinType             string      `json:"coin_type"`
	EntryFunction        *string     `json:"entry_function_id_str,omitempty"`
	EventAccountAddress  string      `json:"event_account_address"`
	IsGasFee             bool        `json:"is_gas_fee"`
	IsTransactionSuccess bool        `json:"is_transaction_success"`
	TransactionTimestamp Timestamp   `json:"transaction_timestamp"`
	TransactionVersion   Version     `json:"transaction_version"`
}

// IsGas reports whether the row is the transaction's gas fee record.
func (c CoinActivity) IsGas() bool {
	return c.IsGasFee || c.ActivityType == CoinGasFeeEvent
}

// TokenData is the current token data joined by the indexer.
type TokenData struct {
	MetadataURI string `json:"metadata_uri"`
}

// TokenActivity is a single token (NFT) movement.
type TokenActivity struct {
	TransferType         string      `json:"transfer_type"`
	CollectionName       string      `json:"collection_name"`
	CollectionDataIDHash string      `json:"collection_data_id_hash"`
	CreatorAddress       string      `json:"creator_address"`
	Name                 string      `json:"name"`
	TokenDataIDHash      string      `json:"token_data_id_hash"`
	PropertyVersion      Version     `json:"property_version"`
	TokenAmount          Amount      `json:"token_amount"`
	EventAccountAddress  string      `json:"event_account_address"`
	FromAddress          *string     `json:"from_address,omitempty"`
	ToAddress            *string     `json:"to_address,omitempty"`
	OwnerNames           []AptosName `json:"aptos_names_owner"`
	ToNames              []AptosName `json:"aptos_names_to"`
	CurrentTokenData     TokenData   `json:"current_token_data"`
}

// StakeActivity is a delegated staking pool event.
type StakeActivity struct {
	Amount             Amount  `json:"amount"`
	DelegatorAddress   string  `json:"delegator_address"`
	EventIndex         int     `json:"event_index"`
	EventType          string  `json:"event_type"`
	PoolAddress        string  `json:"pool_address"`
	TransactionVersion Version `json:"transaction_version"`
}
