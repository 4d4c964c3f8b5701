package model

// Page is the classified output of one indexer page. MinVersion is the
// smallest transaction version among the page's source bundles and is the
// exclusive upper bound of the next page.
type Page struct {
	Events     []ActivityEvent `json:"events"`
	MinVersion uint64          `json:"min_version"`
}
