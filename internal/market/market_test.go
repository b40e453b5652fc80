package market

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func entry(id, user int64, size string, side Side, price string, instant bool, ageHours int) Entry {
	return Entry{
		ID:        id,
		UserID:    user,
		Size:      size,
		Side:      side,
		PriceBase: decimal.RequireFromString(price),
		Instant:   instant,
		CreatedAt: t0.Add(-time.Duration(ageHours) * time.Hour),
	}
}

func TestAggregate(t *testing.T) {
	entries := []Entry{
		entry(1, 10, "US 9", SideOffer, "180", false, 1),
		entry(2, 11, "US 9", SideOffer, "190", false, 1),
		entry(3, 12, "US 9", SideList, "230", false, 1),
		entry(4, 13, "US 9", SideList, "220", true, 1),
		entry(5, 14, "US 10", SideList, "210", false, 1),
		entry(6, 15, "US 10", SideOffer, "200", false, 1),
	}

	s := Aggregate(entries, 0)

	require.Len(t, s.Sizes, 2)
	assert.Equal(t, "US 9", s.Sizes[0].Size)

	us9 := s.Size("US 9")
	assert.Equal(t, int64(2), us9.HighestOffer.ID)
	assert.Equal(t, int64(3), us9.LowestList.ID)
	assert.Equal(t, int64(4), us9.LowestInstantList.ID)
	assert.Equal(t, int64(4), us9.BestList().ID)

	assert.Equal(t, int64(6), s.Overall.HighestOffer.ID)
	assert.Equal(t, int64(5), s.Overall.LowestList.ID)
}

func TestAggregate_ExcludesViewer(t *testing.T) {
	entries := []Entry{
		entry(1, 10, "US 9", SideOffer, "300", false, 1),
		entry(2, 11, "US 9", SideOffer, "190", false, 1),
	}

	s := Aggregate(entries, 10)
	assert.Equal(t, int64(2), s.Overall.HighestOffer.ID)
}

func TestAggregate_OlderWinsOnTie(t *testing.T) {
	entries := []Entry{
		entry(1, 10, "US 9", SideList, "200", false, 1),
		entry(2, 11, "US 9", SideList, "200", false, 5),
		entry(3, 12, "US 9", SideList, "200", false, 3),
	}

	s := Aggregate(entries, 0)
	assert.Equal(t, int64(2), s.Size("US 9").LowestList.ID)
}

func TestAggregate_Empty(t *testing.T) {
	s := Aggregate(nil, 0)
	assert.Nil(t, s.Overall.HighestOffer)
	assert.Nil(t, s.Overall.BestList())

	q := s.Size("US 11")
	assert.Equal(t, "US 11", q.Size)
	assert.Nil(t, q.LowestList)
}
