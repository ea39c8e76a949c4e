package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sellwithus/storefront/internal/ebay"
	"github.com/sellwithus/storefront/internal/logger"
	"github.com/sellwithus/storefront/internal/metrics"
	"github.com/sellwithus/storefront/internal/model"
)

// ErrListingsUnavailable wraps every failure to obtain listings from the
// marketplace. An empty page is not an error.
var ErrListingsUnavailable = errors.New("listings service unavailable")

// ActiveListingsAPI is the marketplace call the listing service depends on
type ActiveListingsAPI interface {
	GetActiveListings(ctx context.Context, page int) (*ebay.ActiveListPage, error)
}

// ListingService fetches the seller's active listings for display
type ListingService struct {
	api ActiveListingsAPI
	log *logger.Logger
}

// NewListingService creates a new ListingService
func NewListingService(api ActiveListingsAPI, log *logger.Logger) *ListingService {
	return &ListingService{
		api: api,
		log: log.WithComponent("listings"),
	}
}

// FetchListings returns one page of at most ebay.EntriesPerPage listings.
// Pages below 1 are treated as page 1.
func (s *ListingService) FetchListings(ctx context.Context, page int) (*model.ListingPage, error) {
	if page < 1 {
		page = 1
	}

	res, err := s.api.GetActiveListings(ctx, page)
	if err != nil {
		metrics.ListingFetches.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Int("page", page).Msg("failed to fetch active listings")
		return nil, fmt.Errorf("%w: %w", ErrListingsUnavailable, err)
	}

	for _, w := range res.Warnings {
		s.log.Warn().
			Str("code", w.ErrorCode).
			Str("message", w.ShortMessage).
			Msg("marketplace returned a warning")
	}

	items := res.Items
	if len(items) > ebay.EntriesPerPage {
		items = items[:ebay.EntriesPerPage]
	}

	listings := make([]model.ListingSummary, 0, len(items))
	for _, item := range items {
		listings = append(listings, toSummary(item))
	}

	metrics.ListingFetches.WithLabelValues("ok").Inc()

	return &model.ListingPage{
		Page:         page,
		TotalPages:   res.TotalPages,
		TotalEntries: res.TotalEntries,
		Listings:     listings,
	}, nil
}

// toSummary maps a marketplace record field by field; absent elements stay nil.
func toSummary(item ebay.Item) model.ListingSummary {
	summary := model.ListingSummary{
		ItemID: item.ItemID,
		Title:  item.Title,
	}

	if item.SellingStatus != nil && item.SellingStatus.CurrentPrice != nil {
		price := item.SellingStatus.CurrentPrice
		if d, err := decimal.NewFromString(strings.TrimSpace(price.Value)); err == nil {
			summary.Price = decimal.NewNullDecimal(d)
		}
		if price.CurrencyID != "" {
			currency := price.CurrencyID
			summary.Currency = &currency
		}
	}

	if item.ListingDetails != nil {
		summary.URL = item.ListingDetails.ViewItemURL
	}

	if item.PictureDetails != nil {
		summary.ImageURL = item.PictureDetails.GalleryURL
	}

	return summary
}
