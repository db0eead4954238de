package crawler

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCachedDetailSource(t *testing.T) {
	mockCache := NewMockCacheService()
	next := &mockDetailSource{details: map[string]*DetailInfoRecord{
		"1021234560000": {RegistrationStatus: StatusMaintained, ClaimCount: "12", LastRow: &AnnuityPaymentRow{Year: "4", PaidAmount: "112,000원"}},
	}}
	cached := NewCachedDetailSource(next, mockCache, time.Hour)

	first, err := cached.Lookup(context.Background(), "1021234560000")
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, []string{"detail:21234560000"}, mockCache.setKeys)

	// Same registration number in its 11-digit form hits the cache
	second, err := cached.Lookup(context.Background(), "21234560000")
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)
}

func TestCachedDetailSourceDoesNotCacheFailures(t *testing.T) {
	mockCache := NewMockCacheService()
	next := &mockDetailSource{errs: map[string]error{"1021234560000": stderrors.New("timeout")}}
	cached := NewCachedDetailSource(next, mockCache, time.Hour)

	_, err := cached.Lookup(context.Background(), "1021234560000")
	require.Error(t, err)
	_, err = cached.Lookup(context.Background(), "1021234560000")
	require.Error(t, err)

	assert.Equal(t, 2, next.calls)
	assert.Empty(t, mockCache.setKeys)
}

func TestCachedDetailSourceFallsThroughOnCacheErrors(t *testing.T) {
	mockCache := NewMockCacheService()
	mockCache.getErr = stderrors.New("connection refused")
	mockCache.setErr = stderrors.New("connection refused")
	next := &mockDetailSource{}
	cached := NewCachedDetailSource(next, mockCache, time.Hour)

	detail, err := cached.Lookup(context.Background(), "1021234560000")
	require.NoError(t, err)
	assert.Equal(t, StatusMaintained, detail.RegistrationStatus)
	assert.Equal(t, 1, next.calls)
}

func TestCachedDetailSourceDiscardsCorruptEntry(t *testing.T) {
	mockCache := NewMockCacheService()
	mockCache.cache["detail:21234560000"] = []byte("not json")
	next := &mockDetailSource{}
	cached := NewCachedDetailSource(next, mockCache, time.Hour)

	_, err := cached.Lookup(context.Background(), "1021234560000")
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)

	data, err := mockCache.Get("detail:21234560000")
	require.NoError(t, err)
	assert.Contains(t, string(data), StatusMaintained)
}

func TestCachedDetailSourceReportsHits(t *testing.T) {
	mockCache := NewMockCacheService()
	cached := NewCachedDetailSource(&mockDetailSource{}, mockCache, time.Hour)

	_, hit, err := cached.LookupCached(context.Background(), "1021234560000")
	require.NoError(t, err)
	assert.False(t, hit)

	_, hit, err = cached.LookupCached(context.Background(), "1021234560000")
	require.NoError(t, err)
	assert.True(t, hit)
}
