package ebay

import (
	"context"
	"encoding/xml"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const activeListResponseXML = `<?xml version="1.0" encoding="UTF-8"?>
<GetMyeBaySellingResponse xmlns="urn:ebay:apis:eBLBaseComponents">
  <Ack>Success</Ack>
  <ActiveList>
    <ItemArray>
      <Item>
        <ItemID>110001</ItemID>
        <Title>Vintage Camera</Title>
        <SellingStatus><CurrentPrice currencyID="USD">49.99</CurrentPrice></SellingStatus>
        <ListingDetails><ViewItemURL>https://www.ebay.com/itm/110001</ViewItemURL></ListingDetails>
        <PictureDetails><GalleryURL>https://i.ebayimg.com/110001.jpg</GalleryURL></PictureDetails>
      </Item>
      <Item>
        <ItemID>110002</ItemID>
        <Title>Record Player</Title>
        <SellingStatus><CurrentPrice currencyID="GBP">120.00</CurrentPrice></SellingStatus>
        <ListingDetails><ViewItemURL>https://www.ebay.com/itm/110002</ViewItemURL></ListingDetails>
      </Item>
    </ItemArray>
    <PaginationResult>
      <TotalNumberOfPages>3</TotalNumberOfPages>
      <TotalNumberOfEntries>42</TotalNumberOfEntries>
    </PaginationResult>
  </ActiveList>
</GetMyeBaySellingResponse>`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		Credentials: Credentials{
			AppID:     "app-id",
			DevID:     "dev-id",
			CertID:    "cert-id",
			AuthToken: "user-token",
		},
		Endpoint:           srv.URL,
		SiteID:             "0",
		CompatibilityLevel: "1193",
		Timeout:            5 * time.Second,
	})
}

func TestGetActiveListingsRequest(t *testing.T) {
	var got getMyeBaySellingRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "GetMyeBaySelling", r.Header.Get("X-EBAY-API-CALL-NAME"))
		require.Equal(t, "0", r.Header.Get("X-EBAY-API-SITEID"))
		require.Equal(t, "1193", r.Header.Get("X-EBAY-API-COMPATIBILITY-LEVEL"))
		require.Equal(t, "app-id", r.Header.Get("X-EBAY-API-APP-NAME"))
		require.Equal(t, "dev-id", r.Header.Get("X-EBAY-API-DEV-NAME"))
		require.Equal(t, "cert-id", r.Header.Get("X-EBAY-API-CERT-NAME"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		require.NoError(t, xml.Unmarshal(body, &got))

		io.WriteString(w, activeListResponseXML)
	})

	_, err := client.GetActiveListings(context.Background(), 2)
	require.NoError(t, err)

	require.Equal(t, tradingNamespace, got.XMLName.Space)
	require.Equal(t, "user-token", got.RequesterCredentials.EBayAuthToken)
	require.True(t, got.ActiveList.Include)
	require.Equal(t, EntriesPerPage, got.ActiveList.Pagination.EntriesPerPage)
	require.Equal(t, 2, got.ActiveList.Pagination.PageNumber)
}

func TestGetActiveListingsDecodesItems(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, activeListResponseXML)
	})

	page, err := client.GetActiveListings(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, 3, page.TotalPages)
	require.Equal(t, 42, page.TotalEntries)

	first := page.Items[0]
	require.Equal(t, "110001", first.ItemID)
	require.Equal(t, "Vintage Camera", *first.Title)
	require.Equal(t, "49.99", first.SellingStatus.CurrentPrice.Value)
	require.Equal(t, "USD", first.SellingStatus.CurrentPrice.CurrencyID)
	require.Equal(t, "https://www.ebay.com/itm/110001", *first.ListingDetails.ViewItemURL)
	require.Equal(t, "https://i.ebayimg.com/110001.jpg", *first.PictureDetails.GalleryURL)

	require.Nil(t, page.Items[1].PictureDetails)
}

func TestGetActiveListingsClampsPage(t *testing.T) {
	var got getMyeBaySellingRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, xml.Unmarshal(body, &got))
		io.WriteString(w, activeListResponseXML)
	})

	_, err := client.GetActiveListings(context.Background(), 0)
	require.NoError(t, err)
	require.Equal(t, 1, got.ActiveList.Pagination.PageNumber)
}

func TestGetActiveListingsEmpty(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<GetMyeBaySellingResponse xmlns="urn:ebay:apis:eBLBaseComponents"><Ack>Success</Ack></GetMyeBaySellingResponse>`)
	})

	page, err := client.GetActiveListings(context.Background(), 1)
	require.NoError(t, err)
	require.Empty(t, page.Items)
	require.Zero(t, page.TotalPages)
}

func TestGetActiveListingsWarningIsSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<GetMyeBaySellingResponse xmlns="urn:ebay:apis:eBLBaseComponents">
  <Ack>Warning</Ack>
  <Errors><ShortMessage>Token expiring.</ShortMessage><ErrorCode>841</ErrorCode><SeverityCode>Warning</SeverityCode></Errors>
  <ActiveList><ItemArray><Item><ItemID>1</ItemID></Item></ItemArray></ActiveList>
</GetMyeBaySellingResponse>`)
	})

	page, err := client.GetActiveListings(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Len(t, page.Warnings, 1)
	require.Equal(t, "841", page.Warnings[0].ErrorCode)
}

func TestGetActiveListingsFailureAck(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `<GetMyeBaySellingResponse xmlns="urn:ebay:apis:eBLBaseComponents">
  <Ack>Failure</Ack>
  <Errors><ShortMessage>Invalid token.</ShortMessage><LongMessage>Auth token is invalid.</LongMessage><ErrorCode>931</ErrorCode><SeverityCode>Error</SeverityCode></Errors>
</GetMyeBaySellingResponse>`)
	})

	_, err := client.GetActiveListings(context.Background(), 1)
	require.ErrorIs(t, err, ErrAPIFailure)
	require.Contains(t, err.Error(), "Auth token is invalid. (code 931)")
}

func TestGetActiveListingsHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := client.GetActiveListings(context.Background(), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "HTTP 503")
}

func TestGetActiveListingsMalformed(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<not-xml")
	})

	_, err := client.GetActiveListings(context.Background(), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "malformed")
}

func TestGetActiveListingsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	endpoint := srv.URL
	srv.Close()

	client := NewClient(Config{Endpoint: endpoint, Timeout: time.Second})
	_, err := client.GetActiveListings(context.Background(), 1)
	require.Error(t, err)
	require.Contains(t, err.Error(), "request failed")
}
