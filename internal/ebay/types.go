package ebay

import "encoding/xml"

const tradingNamespace = "urn:ebay:apis:eBLBaseComponents"

type requesterCredentials struct {
	EBayAuthToken string `xml:"eBayAuthToken"`
}

type pagination struct {
	EntriesPerPage int `xml:"EntriesPerPage"`
	PageNumber     int `xml:"PageNumber"`
}

type activeListRequest struct {
	Include    bool       `xml:"Include"`
	Pagination pagination `xml:"Pagination"`
}

type getMyeBaySellingRequest struct {
	XMLName              xml.Name             `xml:"GetMyeBaySellingRequest"`
	Xmlns                string               `xml:"xmlns,attr"`
	RequesterCredentials requesterCredentials `xml:"RequesterCredentials"`
	ActiveList           activeListRequest    `xml:"ActiveList"`
	WarningLevel         string               `xml:"WarningLevel"`
}

// APIError is one entry of the Errors list in a Trading API response
type APIError struct {
	ShortMessage  string `xml:"ShortMessage"`
	LongMessage   string `xml:"LongMessage"`
	ErrorCode     string `xml:"ErrorCode"`
	SeverityCode  string `xml:"SeverityCode"`
	ErrorCategory string `xml:"ErrorCategory"`
}

// Amount is a monetary value with its currencyID attribute
type Amount struct {
	Value      string `xml:",chardata"`
	CurrencyID string `xml:"currencyID,attr"`
}

// SellingStatus holds the current price of a listing
type SellingStatus struct {
	CurrentPrice *Amount `xml:"CurrentPrice"`
}

// ListingDetails holds the public URL of a listing
type ListingDetails struct {
	ViewItemURL *string `xml:"ViewItemURL"`
}

// PictureDetails holds the gallery thumbnail of a listing
type PictureDetails struct {
	GalleryURL *string `xml:"GalleryURL"`
}

// Item is one listing record as returned by GetMyeBaySelling.
// Nested elements are pointers so absence can be told apart from emptiness.
type Item struct {
	ItemID         string          `xml:"ItemID"`
	Title          *string         `xml:"Title"`
	SellingStatus  *SellingStatus  `xml:"SellingStatus"`
	ListingDetails *ListingDetails `xml:"ListingDetails"`
	PictureDetails *PictureDetails `xml:"PictureDetails"`
}

type paginationResult struct {
	TotalNumberOfPages   int `xml:"TotalNumberOfPages"`
	TotalNumberOfEntries int `xml:"TotalNumberOfEntries"`
}

type itemArray struct {
	Items []Item `xml:"Item"`
}

type activeListResponse struct {
	ItemArray        *itemArray        `xml:"ItemArray"`
	PaginationResult *paginationResult `xml:"PaginationResult"`
}

type getMyeBaySellingResponse struct {
	XMLName    xml.Name            `xml:"GetMyeBaySellingResponse"`
	Ack        string              `xml:"Ack"`
	Errors     []APIError          `xml:"Errors"`
	ActiveList *activeListResponse `xml:"ActiveList"`
}

// ActiveListPage is one page of the seller's active list
type ActiveListPage struct {
	Items        []Item
	TotalPages   int
	TotalEntries int
	Warnings     []APIError
}
