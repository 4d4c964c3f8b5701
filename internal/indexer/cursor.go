package indexer

import "activityScope/internal/model"

// NextCursor returns the smallest transaction version of a page, which is the
// exclusive upper bound of the following page. ok is false for an empty page.
func NextCursor(bundles []model.Bundle) (cursor uint64, ok bool) {
	for i, bundle := range bundles {
		version := uint64(bundle.TransactionVersion)
		if i == 0 || version < cursor {
			cursor = version
		}
	}
	return cursor, len(bundles) > 0
}
