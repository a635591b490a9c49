package exchangerate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/shopspring/decimal"
	"go-currency-converter"
	"go-currency-converter/exchange"
)

// ApiUrlBase the open exchangerate-api endpoint; the base currency code is appended.
const ApiUrlBase = "https://open.er-api.com/v6/latest/"

// MaxBodySize caps how much of a provider response is read.
const MaxBodySize = 1 << 20

// ErrInvalidCode is returned by Fetch for a base that is not three ASCII letters.
var ErrInvalidCode = errors.New("invalid currency code")

// BasePlaceholder marks where the base currency code goes in a URL template.
// URLs without it get the code appended.
const BasePlaceholder = "{base}"

var _ exchange.RateSource = (*Client)(nil)

// Client fetches rate tables from an exchangerate-api style endpoint.
type Client struct {
	// url base API url or template, see BasePlaceholder
	url string

	// httpClient for HTTP requests
	httpClient HTTPClient

	// logger for... logging
	logger log.Logger
}

// Option is a configuration option for the Client.
type Option func(*Client)

// WithBaseURL sets the URL the base currency code is appended to, or a
// template containing BasePlaceholder.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.url = baseURL
	}
}

// WithHTTPClient sets the HTTP client used for requests.
func WithHTTPClient(httpClient HTTPClient) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New constructs a valid Client.
func New(options ...Option) *Client {
	c := &Client{
		url: ApiUrlBase,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		logger: log.NewNopLogger(),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Fetch loads the current rates for base. Keys of the returned table are
// lower case. A response without a rates object yields an empty table, not
// an error; only malformed codes, transport failures and bodies that are not
// JSON fail.
func (c *Client) Fetch(ctx context.Context, base currency.Currency) (currency.Rates, error) {
	if !base.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidCode, base)
	}
	url := c.requestURL(base)

	level.Debug(c.logger).Log("msg", "loading exchange rates", "currency", base, "url", url)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building http request: %w", err)
	}
	request.Header.Set("Accept", "application/json")

	httpResponse, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer httpResponse.Body.Close()

	if httpResponse.StatusCode < 200 || httpResponse.StatusCode >= 300 {
		level.Warn(c.logger).Log("msg", "unexpected status", "currency", base, "status", httpResponse.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(httpResponse.Body, MaxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading json: %w", err)
	}
	if len(body) > MaxBodySize {
		return nil, fmt.Errorf("reading json: response exceeds %d bytes", MaxBodySize)
	}

	return c.parse(base, body)
}

func (c *Client) requestURL(base currency.Currency) string {
	code := url.PathEscape(string(base.Upper()))
	if strings.Contains(c.url, BasePlaceholder) {
		return strings.ReplaceAll(c.url, BasePlaceholder, code)
	}
	return c.url + code
}

// parse extracts the nested rates object, preferring "conversion_rates"
// (keyed API) over "rates" (open API). Keys differing only in case are
// resolved in byte order, so an upper case key wins over its lower case twin.
func (c *Client) parse(base currency.Currency, body []byte) (currency.Rates, error) {
	if !json.Valid(body) {
		return nil, fmt.Errorf("decoding json: invalid body for %v", base)
	}

	rates := currency.Rates{}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		level.Warn(c.logger).Log("msg", "response is not an object", "currency", base)
		return rates, nil
	}

	var result string
	_ = json.Unmarshal(envelope["result"], &result)
	if result == "error" {
		var errorType string
		_ = json.Unmarshal(envelope["error-type"], &errorType)
		level.Warn(c.logger).Log("msg", "provider reported an error", "currency", base, "error_type", errorType)
	}

	var raw map[string]json.RawMessage
	for _, key := range []string{"conversion_rates", "rates"} {
		if err := json.Unmarshal(envelope[key], &raw); err == nil && raw != nil {
			break
		}
		raw = nil
	}

	codes := make([]string, 0, len(raw))
	for code := range raw {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		value := raw[code]
		key := currency.Currency(code).Lower()
		if _, seen := rates[key]; seen {
			level.Debug(c.logger).Log("msg", "skipping duplicate rate", "currency", base, "code", code)
			continue
		}
		rate, ok := parseRate(value)
		if !ok {
			level.Debug(c.logger).Log("msg", "skipping rate", "currency", base, "code", code, "value", string(value))
			continue
		}
		rates[key] = rate
	}

	return rates, nil
}

// parseRate accepts a JSON number or a numeric string and rejects anything
// that is not a positive decimal within currency.MaxExponent.
func parseRate(value json.RawMessage) (decimal.Decimal, bool) {
	s := string(bytes.TrimSpace(value))
	if unquoted, err := strconv.Unquote(s); err == nil {
		s = unquoted
	}
	rate, err := decimal.NewFromString(s)
	if err != nil || !rate.IsPositive() || currency.CheckRange(rate) != nil {
		return decimal.Zero, false
	}
	return rate, true
}
