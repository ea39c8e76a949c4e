// Package ebay is a minimal client for the eBay Trading API, covering the
// calls the storefront needs.
package ebay

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sellwithus/storefront/internal/config"
)

// EntriesPerPage is the fixed page size of the active listing view
const EntriesPerPage = 20

const (
	callGetMyeBaySelling = "GetMyeBaySelling"
	maxResponseBytes     = 8 << 20
)

// ErrAPIFailure is returned when eBay answers with Ack=Failure
var ErrAPIFailure = errors.New("ebay: request failed")

// Credentials are the long-lived Trading API keys and user token
type Credentials struct {
	AppID     string
	DevID     string
	CertID    string
	AuthToken string
}

// Config configures a Client
type Config struct {
	Credentials        Credentials
	Endpoint           string
	SiteID             string
	CompatibilityLevel string
	Timeout            time.Duration
}

// Client calls the Trading API over HTTP
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// NewClient creates a new Client. The timeout bounds every call.
func NewClient(cfg Config) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout})
}

// NewClientWithHTTP creates a Client with a custom HTTP client
func NewClientWithHTTP(cfg Config, httpClient *http.Client) *Client {
	return &Client{cfg: cfg, httpClient: httpClient}
}

// GetActiveListings returns one page of the authenticated seller's active listings
func (c *Client) GetActiveListings(ctx context.Context, page int) (*ActiveListPage, error) {
	if page < 1 {
		page = 1
	}

	reqBody := getMyeBaySellingRequest{
		Xmlns:                tradingNamespace,
		RequesterCredentials: requesterCredentials{EBayAuthToken: c.cfg.Credentials.AuthToken},
		ActiveList: activeListRequest{
			Include: true,
			Pagination: pagination{
				EntriesPerPage: EntriesPerPage,
				PageNumber:     page,
			},
		},
		WarningLevel: "High",
	}

	var resp getMyeBaySellingResponse
	if err := c.call(ctx, callGetMyeBaySelling, reqBody, &resp); err != nil {
		return nil, err
	}

	var warnings []APIError
	for _, e := range resp.Errors {
		if strings.EqualFold(e.SeverityCode, "Warning") {
			warnings = append(warnings, e)
		}
	}

	if strings.EqualFold(resp.Ack, "Failure") {
		return nil, fmt.Errorf("%w: %s", ErrAPIFailure, describeErrors(resp.Errors))
	}

	result := &ActiveListPage{Warnings: warnings}
	if resp.ActiveList != nil {
		if resp.ActiveList.ItemArray != nil {
			result.Items = resp.ActiveList.ItemArray.Items
		}
		if resp.ActiveList.PaginationResult != nil {
			result.TotalPages = resp.ActiveList.PaginationResult.TotalNumberOfPages
			result.TotalEntries = resp.ActiveList.PaginationResult.TotalNumberOfEntries
		}
	}

	return result, nil
}

func (c *Client) call(ctx context.Context, callName string, in, out interface{}) error {
	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	if err := xml.NewEncoder(&buf).Encode(in); err != nil {
		return fmt.Errorf("ebay: failed to encode %s request: %w", callName, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, &buf)
	if err != nil {
		return fmt.Errorf("ebay: failed to build request: %w", err)
	}

	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("X-EBAY-API-CALL-NAME", callName)
	req.Header.Set("X-EBAY-API-SITEID", c.cfg.SiteID)
	req.Header.Set("X-EBAY-API-COMPATIBILITY-LEVEL", c.cfg.CompatibilityLevel)
	req.Header.Set("X-EBAY-API-APP-NAME", c.cfg.Credentials.AppID)
	req.Header.Set("X-EBAY-API-DEV-NAME", c.cfg.Credentials.DevID)
	req.Header.Set("X-EBAY-API-CERT-NAME", c.cfg.Credentials.CertID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ebay: %s request failed: %w", callName, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("ebay: failed to read %s response: %w", callName, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ebay: %s returned HTTP %d", callName, resp.StatusCode)
	}

	if err := xml.Unmarshal(body, out); err != nil {
		return fmt.Errorf("ebay: malformed %s response: %w", callName, err)
	}

	return nil
}

func describeErrors(errs []APIError) string {
	if len(errs) == 0 {
		return "no error details"
	}
	msgs := make([]string, 0, len(errs))
	for _, e := range errs {
		msg := e.LongMessage
		if msg == "" {
			msg = e.ShortMessage
		}
		if e.ErrorCode != "" {
			msg = fmt.Sprintf("%s (code %s)", msg, e.ErrorCode)
		}
		msgs = append(msgs, msg)
	}
	return strings.Join(msgs, "; ")
}

// NewClientFromConfig creates a Client from the application's eBay settings
func NewClientFromConfig(cfg config.EbayConfig) *Client {
	return NewClient(Config{
		Credentials: Credentials{
			AppID:     cfg.AppID,
			DevID:     cfg.DevID,
			CertID:    cfg.CertID,
			AuthToken: cfg.AuthToken,
		},
		Endpoint:           cfg.Endpoint,
		SiteID:             cfg.SiteID,
		CompatibilityLevel: cfg.CompatibilityLevel,
		Timeout:            cfg.Timeout,
	})
}
