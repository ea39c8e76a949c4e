package model

import "github.com/shopspring/decimal"

// ListingSummary is the display-ready view of one active listing.
// Fields missing from the marketplace record are nil (or an invalid Price).
type ListingSummary struct {
	ItemID   string
	Title    *string
	Price    decimal.NullDecimal
	Currency *string
	URL      *string
	ImageURL *string
}

// ListingPage is one page of a seller's active listings
type ListingPage struct {
	Page         int
	TotalPages   int
	TotalEntries int
	Listings     []ListingSummary
}

// HasPrev reports whether a previous page exists
func (p *ListingPage) HasPrev() bool {
	return p.Page > 1
}

// HasNext reports whether the marketplace reported more pages
func (p *ListingPage) HasNext() bool {
	return p.Page < p.TotalPages
}

// PrevPage returns the previous page number
func (p *ListingPage) PrevPage() int {
	return p.Page - 1
}

// NextPage returns the next page number
func (p *ListingPage) NextPage() int {
	return p.Page + 1
}
