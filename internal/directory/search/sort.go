package search

import (
	"cmp"
	"slices"

	"github.com/vietddude/localguide/internal/core/domain"
	"github.com/vietddude/localguide/internal/core/tags"
)

// sortBusinesses orders in place. Only rating applies to businesses; any
// other key keeps the backend order.
func sortBusinesses(bs []domain.Business, key string) {
	if key != tags.SortRating {
		return
	}
	slices.SortStableFunc(bs, func(a, b domain.Business) int {
		return cmp.Compare(rating(b.AverageRating), rating(a.AverageRating))
	})
}

func rating(r *float64) float64 {
	if r == nil {
		return -1
	}
	return *r
}

// sortListings orders in place by key. Unknown keys keep the input order.
func sortListings(ls []domain.Listing, key string) {
	var less func(a, b domain.Listing) int
	switch key {
	case tags.SortRating:
		less = func(a, b domain.Listing) int { return cmp.Compare(b.Rating, a.Rating) }
	case tags.SortFreeFirst:
		less = func(a, b domain.Listing) int { return first(isFree(a), isFree(b)) }
	case tags.SortPriceAsc:
		less = func(a, b domain.Listing) int { return comparePrice(a, b, false) }
	case tags.SortPriceDesc:
		less = func(a, b domain.Listing) int { return comparePrice(a, b, true) }
	case tags.SortYearDesc:
		less = func(a, b domain.Listing) int { return cmp.Compare(b.Year, a.Year) }
	case tags.SortRecent:
		less = func(a, b domain.Listing) int { return cmp.Compare(b.PostedAt, a.PostedAt) }
	case tags.SortRentFirst:
		less = func(a, b domain.Listing) int { return first(isRent(a), isRent(b)) }
	default:
		return
	}
	slices.SortStableFunc(ls, less)
}

// first puts records with the property ahead of those without.
func first(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return -1
	default:
		return 1
	}
}

func isFree(l domain.Listing) bool {
	return tags.NormalizeTag(l.PriceLevel) == "gratis" || tags.MatchesFilter(l, "gratis", "")
}

func isRent(l domain.Listing) bool {
	return tags.NormalizeTag(l.TransactionType) == "alugar"
}

// price is the sale price, or the rent when only a rent is set.
func price(l domain.Listing) float64 {
	if l.Price > 0 {
		return l.Price
	}
	return l.RentPrice
}

// comparePrice orders by price; listings without any price go last in
// both directions.
func comparePrice(a, b domain.Listing, desc bool) int {
	pa, pb := price(a), price(b)
	if c := first(pa > 0, pb > 0); c != 0 {
		return c
	}
	if desc {
		return cmp.Compare(pb, pa)
	}
	return cmp.Compare(pa, pb)
}
