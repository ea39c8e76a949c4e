package handler

import (
	"net/http"
	"strconv"

	"github.com/sellwithus/storefront/internal/model"
	"github.com/sellwithus/storefront/internal/web"
)

type listingsView struct {
	Listings *model.ListingPage
	Error    string
	Year     int
}

// Listings renders one page of the seller's active listings
func (h *Handler) Listings(w http.ResponseWriter, r *http.Request) {
	page := parsePage(r.URL.Query().Get("page"))

	result, err := h.listings.FetchListings(r.Context(), page)
	if err != nil {
		h.requestLog(r).Error().Err(err).Int("page", page).Msg("listings unavailable")
		h.render(w, r, http.StatusBadGateway, web.PageListings, listingsView{
			Error: "We couldn't load our listings right now. Please try again in a few minutes.",
			Year:  h.now().Year(),
		})
		return
	}

	h.render(w, r, http.StatusOK, web.PageListings, listingsView{
		Listings: result,
		Year:     h.now().Year(),
	})
}

// parsePage returns the requested page, or 1 when it is absent or not a
// positive integer.
func parsePage(raw string) int {
	page, err := strconv.Atoi(raw)
	if err != nil || page < 1 {
		return 1
	}
	return page
}
