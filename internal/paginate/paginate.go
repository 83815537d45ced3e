// Package paginate implements the offset-based collection loop shared by
// every paged upstream endpoint. Callers supply a fetch closure for one
// resource; Collect drives it to exhaustion or to the configured record
// ceiling.
package paginate

import (
	"context"
	"encoding/json"
)

// Page is one bounded slice of an upstream collection. Items are opaque
// records in upstream order. More reports whether the collection continues
// past this page; producers must leave it false when the upstream response
// carries no usable pagination metadata.
type Page struct {
	Items []json.RawMessage
	More  bool
}

// FetchFunc requests the page starting at offset. Errors abort the whole
// aggregation; there is no retry.
type FetchFunc func(ctx context.Context, offset int) (*Page, error)

// Options control a single Collect run.
type Options struct {
	// PageSize is the offset step between fetches. Set it to the
	// upstream's documented per-request maximum to minimize round-trips.
	PageSize int
	// MaxRecords caps how far the offset may advance. Zero or negative
	// disables the cap; Config.Validate keeps the server from ever running
	// uncapped.
	MaxRecords int
	// CountOnly tracks the running total without materializing items.
	CountOnly bool
}

// Result is the outcome of one aggregation. It is owned by the invocation
// that produced it and never shared or cached.
type Result struct {
	// Items holds the accumulated records in fetch order: page N's items
	// precede page N+1's. Nil in count-only mode.
	Items []json.RawMessage
	// Count is the number of records seen, in both modes.
	Count int
	// PagesFetched is how many upstream calls were made.
	PagesFetched int
	// TerminatedEarly is set when the record ceiling stopped the loop while
	// the upstream still reported more items. The partial result is still
	// valid; this is a marker, not an error.
	TerminatedEarly bool
}

// Collect drives fetch from offset zero until the upstream reports no more
// items or the ceiling is reached. Page fetches are strictly sequential:
// each depends on the previous page's More flag. A fetch error is returned
// immediately and discards the partial accumulation; aggregations are
// all-or-nothing. No deduplication is performed; if the upstream dataset
// mutates between fetches, duplicates or gaps across page boundaries are
// possible.
func Collect(ctx context.Context, fetch FetchFunc, opts Options) (*Result, error) {
	if opts.PageSize <= 0 {
		opts.PageSize = 1
	}

	res := &Result{}
	offset := 0
	hasMore := true

	for hasMore && (opts.MaxRecords <= 0 || offset < opts.MaxRecords) {
		page, err := fetch(ctx, offset)
		if err != nil {
			return nil, err
		}
		res.PagesFetched++
		if page == nil {
			page = &Page{}
		}

		if opts.CountOnly {
			res.Count += len(page.Items)
		} else {
			res.Items = append(res.Items, page.Items...)
			res.Count = len(res.Items)
		}

		if page.More {
			offset += opts.PageSize
		} else {
			hasMore = false
		}
	}

	if hasMore {
		res.TerminatedEarly = true
	}
	return res, nil
}
