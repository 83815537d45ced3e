package paginate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// datasetFetch serves a synthetic collection of total records in pageSize
// slices, recording each requested offset.
func datasetFetch(total, pageSize int, offsets *[]int) FetchFunc {
	return func(ctx context.Context, offset int) (*Page, error) {
		if offsets != nil {
			*offsets = append(*offsets, offset)
		}
		page := &Page{}
		for i := offset; i < offset+pageSize && i < total; i++ {
			page.Items = append(page.Items, json.RawMessage(fmt.Sprintf(`{"id":%d}`, i)))
		}
		page.More = offset+pageSize < total
		return page, nil
	}
}

func TestCollectReturnsAllRecordsInFetchOrder(t *testing.T) {
	var offsets []int
	res, err := Collect(context.Background(), datasetFetch(1234, 500, &offsets), Options{
		PageSize:   500,
		MaxRecords: 10000,
	})
	require.NoError(t, err)

	assert.Equal(t, 1234, res.Count)
	assert.Len(t, res.Items, 1234)
	assert.Equal(t, 3, res.PagesFetched)
	assert.False(t, res.TerminatedEarly)
	assert.Equal(t, []int{0, 500, 1000}, offsets)

	for i, raw := range res.Items {
		var rec struct {
			ID int `json:"id"`
		}
		require.NoError(t, json.Unmarshal(raw, &rec))
		require.Equal(t, i, rec.ID)
	}
}

func TestCollectThreeFullPages(t *testing.T) {
	res, err := Collect(context.Background(), datasetFetch(1500, 500, nil), Options{
		PageSize:   500,
		MaxRecords: 10000,
	})
	require.NoError(t, err)

	assert.Equal(t, 1500, res.Count)
	assert.Equal(t, 3, res.PagesFetched)
	assert.False(t, res.TerminatedEarly)
}

func TestCollectTerminatesAtCeiling(t *testing.T) {
	// Upstream that claims more items forever must not loop unboundedly.
	endless := func(ctx context.Context, offset int) (*Page, error) {
		page := &Page{More: true}
		for i := 0; i < 500; i++ {
			page.Items = append(page.Items, json.RawMessage(`{}`))
		}
		return page, nil
	}

	res, err := Collect(context.Background(), endless, Options{
		PageSize:   500,
		MaxRecords: 10000,
	})
	require.NoError(t, err)

	assert.True(t, res.TerminatedEarly)
	assert.Equal(t, 20, res.PagesFetched)
	assert.Equal(t, 10000, res.Count)
}

func TestCollectMissingMetadataStopsLoop(t *testing.T) {
	// A page with no usable pagination metadata arrives as zero items with
	// More unset; whatever accumulated so far is returned without error.
	calls := 0
	fetch := func(ctx context.Context, offset int) (*Page, error) {
		calls++
		if calls == 1 {
			page := &Page{More: true}
			for i := 0; i < 500; i++ {
				page.Items = append(page.Items, json.RawMessage(`{}`))
			}
			return page, nil
		}
		return &Page{}, nil
	}

	res, err := Collect(context.Background(), fetch, Options{PageSize: 500, MaxRecords: 10000})
	require.NoError(t, err)

	assert.Equal(t, 500, res.Count)
	assert.Equal(t, 2, res.PagesFetched)
	assert.False(t, res.TerminatedEarly)
}

func TestCollectNilPageTreatedAsEmpty(t *testing.T) {
	fetch := func(ctx context.Context, offset int) (*Page, error) {
		return nil, nil
	}

	res, err := Collect(context.Background(), fetch, Options{PageSize: 500, MaxRecords: 10000})
	require.NoError(t, err)
	assert.Equal(t, 0, res.Count)
	assert.Equal(t, 1, res.PagesFetched)
}

func TestCollectCountOnlyMatchesItemTotal(t *testing.T) {
	full, err := Collect(context.Background(), datasetFetch(1234, 500, nil), Options{
		PageSize:   500,
		MaxRecords: 10000,
	})
	require.NoError(t, err)

	counted, err := Collect(context.Background(), datasetFetch(1234, 500, nil), Options{
		PageSize:   500,
		MaxRecords: 10000,
		CountOnly:  true,
	})
	require.NoError(t, err)

	assert.Equal(t, full.Count, counted.Count)
	assert.Equal(t, full.PagesFetched, counted.PagesFetched)
	assert.Nil(t, counted.Items)
}

func TestCollectPropagatesFetchError(t *testing.T) {
	boom := errors.New("upstream exploded")
	calls := 0
	fetch := func(ctx context.Context, offset int) (*Page, error) {
		calls++
		if calls == 2 {
			return nil, boom
		}
		page := &Page{More: true}
		for i := 0; i < 500; i++ {
			page.Items = append(page.Items, json.RawMessage(`{}`))
		}
		return page, nil
	}

	res, err := Collect(context.Background(), fetch, Options{PageSize: 500, MaxRecords: 10000})
	require.ErrorIs(t, err, boom)
	assert.Nil(t, res)
	assert.Equal(t, 2, calls)
}

func TestCollectEmptyCollection(t *testing.T) {
	res, err := Collect(context.Background(), datasetFetch(0, 500, nil), Options{
		PageSize:   500,
		MaxRecords: 10000,
	})
	require.NoError(t, err)

	assert.Equal(t, 0, res.Count)
	assert.Equal(t, 1, res.PagesFetched)
	assert.False(t, res.TerminatedEarly)
	assert.Empty(t, res.Items)
}

func TestCollectUncappedWhenMaxRecordsUnset(t *testing.T) {
	res, err := Collect(context.Background(), datasetFetch(2500, 500, nil), Options{
		PageSize: 500,
	})
	require.NoError(t, err)

	assert.Equal(t, 2500, res.Count)
	assert.Equal(t, 5, res.PagesFetched)
	assert.False(t, res.TerminatedEarly)
}
