// Package market summarizes open offers and lists into the highest offer and
// lowest list per size, the figures suggested prices are derived from.
package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Side is whether an entry is a bid or an ask.
type Side string

const (
	SideOffer Side = "offer"
	SideList  Side = "list"
)

// Entry is one open offer or list. PriceBase is in base currency.
type Entry struct {
	ID        int64           `json:"id"`
	UserID    int64           `json:"user_id"`
	Size      string          `json:"size"`
	Side      Side            `json:"side"`
	PriceBase decimal.Decimal `json:"price_base"`
	Instant   bool            `json:"instant"`
	CreatedAt time.Time       `json:"created_at"`
}

// Quote is the top of the book for one size, or overall when Size is empty.
type Quote struct {
	Size              string `json:"size,omitempty"`
	HighestOffer      *Entry `json:"highest_offer,omitempty"`
	LowestList        *Entry `json:"lowest_list,omitempty"`
	LowestInstantList *Entry `json:"lowest_instant_list,omitempty"`
}

// Summary is the aggregated market for one product.
type Summary struct {
	Overall Quote   `json:"overall"`
	Sizes   []Quote `json:"sizes"`
}

// Size returns the quote for size, or an empty quote.
func (s Summary) Size(size string) Quote {
	for _, q := range s.Sizes {
		if q.Size == size {
			return q
		}
	}
	return Quote{Size: size}
}

// Aggregate builds a Summary from open entries, ignoring the viewer's own
// entries. On equal price the older entry wins. Sizes are returned in the order
// they first appear.
func Aggregate(entries []Entry, viewerID int64) Summary {
	var summary Summary
	index := make(map[string]int)

	for i := range entries {
		e := entries[i]
		if viewerID != 0 && e.UserID == viewerID {
			continue
		}
		pos, ok := index[e.Size]
		if !ok {
			pos = len(summary.Sizes)
			index[e.Size] = pos
			summary.Sizes = append(summary.Sizes, Quote{Size: e.Size})
		}
		summary.Sizes[pos].add(e)
		summary.Overall.add(e)
	}
	return summary
}

func (q *Quote) add(e Entry) {
	switch e.Side {
	case SideOffer:
		if better(e, q.HighestOffer, true) {
			q.HighestOffer = &e
		}
	case SideList:
		if e.Instant {
			if better(e, q.LowestInstantList, false) {
				q.LowestInstantList = &e
			}
			return
		}
		if better(e, q.LowestList, false) {
			q.LowestList = &e
		}
	}
}

// better reports whether e should replace current: a higher offer or lower
// list, or an equal price placed earlier.
func better(e Entry, current *Entry, higher bool) bool {
	if current == nil {
		return true
	}
	if e.PriceBase.Equal(current.PriceBase) {
		return e.CreatedAt.Before(current.CreatedAt)
	}
	if higher {
		return e.PriceBase.GreaterThan(current.PriceBase)
	}
	return e.PriceBase.LessThan(current.PriceBase)
}

// BestList is the cheapest list for a quote across instant and regular stock.
func (q Quote) BestList() *Entry {
	switch {
	case q.LowestList == nil:
		return q.LowestInstantList
	case q.LowestInstantList == nil:
		return q.LowestList
	case better(*q.LowestInstantList, q.LowestList, false):
		return q.LowestInstantList
	default:
		return q.LowestList
	}
}
