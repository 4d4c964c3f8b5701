package feed

import (
	"fmt"
	"strings"

	"activityScope/internal/model"
)

// Filter selects event categories. The zero value keeps nothing; use
// FilterAll to keep everything.
type Filter struct {
	Coins bool
	NFTs  bool
	Fees  bool
}

// FilterAll keeps every event.
var FilterAll = Filter{Coins: true, NFTs: true, Fees: true}

// ParseFilter reads a comma separated list of "coins", "nfts" and "fees".
// An empty list means FilterAll.
func ParseFilter(raw string) (Filter, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return FilterAll, nil
	}

	var filter Filter
	for _, part := range strings.Split(raw, ",") {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "coins":
			filter.Coins = true
		case "nfts":
			filter.NFTs = true
		case "fees":
			filter.Fees = true
		case "":
		default:
			return Filter{}, fmt.Errorf("unknown activity filter: %s", part)
		}
	}
	return filter, nil
}

// Keep reports whether the filter selects event.
func (f Filter) Keep(event model.ActivityEvent) bool {
	switch event.(type) {
	case *model.SendCoinEvent, *model.ReceiveCoinEvent, *model.SwapCoinEvent, *model.StakeEvent:
		return f.Coins
	case *model.SendTokenEvent, *model.ReceiveTokenEvent,
		*model.SendTokenOfferEvent, *model.ReceiveTokenOfferEvent, *model.MintTokenEvent:
		return f.NFTs
	case *model.GasEvent:
		return f.Fees
	default:
		return false
	}
}

// Apply returns the selected events in input order.
func (f Filter) Apply(events []model.ActivityEvent) []model.ActivityEvent {
	if f == FilterAll {
		return events
	}
	out := make([]model.ActivityEvent, 0, len(events))
	for _, event := range events {
		if f.Keep(event) {
			out = append(out, event)
		}
	}
	return out
}
