package chain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"activityScope/internal/model"
)

// MaxIndexerVersion is the largest bigint the indexer accepts; it stands in
// for "latest" in the version bound.
const MaxIndexerVersion uint64 = 9223372036854775807

const (
	DefaultPageSize = 10
	DefaultPageTTL  = 60 * time.Second
)

const consolidatedActivitiesQuery = `query getConsolidatedActivities($address: String, $limit: Int, $max_transaction_version: bigint) {
  account_transactions(
    where: {account_address: {_eq: $address}, transaction_version: {_lt: $max_transaction_version}}
    order_by: {transaction_version: desc}
    limit: $limit
  ) {
    transaction_version
    coin_activities(order_by: {event_index: asc}) {
      activity_type
      amount
      aptos_names { domain }
      coin_info { coin_type decimals name symbol }
      coin_type
      entry_function_id_str
      event_account_address
      is_gas_fee
      is_transaction_success
      transaction_timestamp
      transaction_version
    }
    token_activities(order_by: {event_index: asc}) {
      transfer_type
      collection_name
      collection_data_id_hash
      creator_address
      name
      token_data_id_hash
      property_version
      token_amount
      event_account_address
      from_address
      to_address
      aptos_names_owner { domain }
      aptos_names_to { domain }
      current_token_data { metadata_uri }
    }
    delegated_staking_activities(order_by: {event_index: asc}) {
      amount
      delegator_address
      event_index
      event_type
      pool_address
      transaction_version
    }
  }
}`

// Options tunes the indexer client.
type Options struct {
	// RequestsPerSecond caps outgoing queries; zero disables the limit.
	RequestsPerSecond float64
	Burst             int
	// PageTTL is how long a fetched page is served from memory.
	PageTTL    time.Duration
	HTTPClient *http.Client
}

// PageQuery selects one page of an account's transactions. MaxVersion is an
// exclusive upper bound; zero means latest.
type PageQuery struct {
	Address    string
	Limit      int
	MaxVersion uint64
}

// Client queries the indexer GraphQL endpoint for activity bundles.
type Client struct {
	endpoint string
	http     *http.Client
	limiter  *rate.Limiter
	pages    *cache.Cache
}

// NewClient creates an indexer client for the GraphQL endpoint.
func NewClient(endpoint string, opts Options) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("indexer url is required")
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}

	ttl := opts.PageTTL
	if ttl <= 0 {
		ttl = DefaultPageTTL
	}

	return &Client{
		endpoint: endpoint,
		http:     httpClient,
		limiter:  rate.NewLimiter(limit, burst),
		pages:    cache.New(ttl, 2*ttl),
	}, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type consolidatedActivitiesResponse struct {
	Data struct {
		AccountTransactions []model.Bundle `json:"account_transactions"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// AccountActivities returns one page of bundles for the account, newest first.
// Each bundle is stamped with the queried address.
func (c *Client) AccountActivities(ctx context.Context, query PageQuery) ([]model.Bundle, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	maxVersion := query.MaxVersion
	if maxVersion == 0 || maxVersion > MaxIndexerVersion {
		maxVersion = MaxIndexerVersion
	}

	key := query.Address + ":" + strconv.Itoa(limit) + ":" + strconv.FormatUint(maxVersion, 10)
	if cached, ok := c.pages.Get(key); ok {
		return cached.([]model.Bundle), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	body, err := json.Marshal(graphQLRequest{
		Query: consolidatedActivitiesQuery,
		Variables: map[string]any{
			"address":                 query.Address,
			"limit":                   limit,
			"max_transaction_version": strconv.FormatUint(maxVersion, 10),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("encode query: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query indexer: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("indexer status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var decoded consolidatedActivitiesResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode indexer response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		messages := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			messages = append(messages, e.Message)
		}
		return nil, fmt.Errorf("indexer query failed: %s", strings.Join(messages, "; "))
	}

	bundles := decoded.Data.AccountTransactions
	for i := range bundles {
		bundles[i].AccountAddress = query.Address
	}

	c.pages.Set(key, bundles, cache.DefaultExpiration)
	return bundles, nil
}
