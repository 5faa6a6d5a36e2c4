// Package rest is a broker.Broker that speaks JSON over HTTP to the upstream
// order/quote service.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rustyeddy/lotboard/broker"
	"github.com/rustyeddy/lotboard/lot"
)

// DefaultURL is where the upstream service listens in development.
const DefaultURL = "http://localhost:3001"

// Client represents an upstream broker API client
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

var _ broker.Broker = (*Client)(nil)

// NewClient creates a new upstream client. An empty baseURL uses DefaultURL.
func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// apiQuote is one latest-trade/quote record. The upstream returns either a
// bare object or a one-element array of them.
type apiQuote struct {
	Symbol   string   `json:"symbol"`
	Price    *float64 `json:"price"`
	BidPrice float64  `json:"bid_price"`
	BidSize  float64  `json:"bid_size"`
	AskPrice float64  `json:"ask_price"`
	AskSize  float64  `json:"ask_size"`
	Time     string   `json:"time"`
}

// LatestTrade fetches the latest trade price for symbol.
func (c *Client) LatestTrade(ctx context.Context, symbol string) (lot.Quote, error) {
	symbol = lot.NormalizeSymbol(symbol)
	if symbol == "" {
		return lot.Quote{}, fmt.Errorf("symbol is required: %w", lot.ErrInvalid)
	}

	params := url.Values{}
	params.Set("sym", symbol)

	body, err := c.do(ctx, http.MethodGet, "/latest?"+params.Encode(), nil)
	if err != nil {
		return lot.Quote{}, err
	}

	aq, err := decodeQuote(body)
	if err != nil {
		return lot.Quote{}, err
	}
	return aq.toQuote(symbol)
}

func decodeQuote(body []byte) (apiQuote, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []apiQuote
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return apiQuote{}, fmt.Errorf("decode quote: %w", err)
		}
		if len(list) == 0 {
			return apiQuote{}, lot.ErrQuoteUnavailable
		}
		return list[0], nil
	}

	var aq apiQuote
	if err := json.Unmarshal(trimmed, &aq); err != nil {
		return apiQuote{}, fmt.Errorf("decode quote: %w", err)
	}
	return aq, nil
}

func (aq apiQuote) toQuote(symbol string) (lot.Quote, error) {
	q := lot.Quote{
		Symbol:   symbol,
		BidPrice: aq.BidPrice,
		BidSize:  aq.BidSize,
		AskPrice: aq.AskPrice,
		AskSize:  aq.AskSize,
	}
	if aq.Symbol != "" {
		q.Symbol = lot.NormalizeSymbol(aq.Symbol)
	}

	switch {
	case aq.Price != nil:
		q.Price = *aq.Price
	case aq.BidPrice > 0 && aq.AskPrice > 0:
		q.Price = broker.Mid(aq.BidPrice, aq.AskPrice)
	default:
		return lot.Quote{}, fmt.Errorf("%s: %w", symbol, lot.ErrQuoteUnavailable)
	}

	if aq.Time != "" {
		t, err := time.Parse(time.RFC3339Nano, aq.Time)
		if err != nil {
			return lot.Quote{}, fmt.Errorf("parse time %s: %w", aq.Time, err)
		}
		q.Time = t.UTC()
	}
	return q, nil
}

// SubmitOrder places a new order.
func (c *Client) SubmitOrder(ctx context.Context, req broker.OrderRequest) (broker.OrderAck, error) {
	if req.ClientID == "" {
		return broker.OrderAck{}, fmt.Errorf("client order id is required: %w", lot.ErrInvalid)
	}
	body, err := c.do(ctx, http.MethodPost, "/orders", req)
	if err != nil {
		return broker.OrderAck{}, err
	}
	return decodeAck(body, req.ClientID)
}

// CancelOrder cancels a working order.
func (c *Client) CancelOrder(ctx context.Context, clientID string) error {
	if clientID == "" {
		return fmt.Errorf("client order id is required: %w", lot.ErrInvalid)
	}
	_, err := c.do(ctx, http.MethodDelete, "/orders/"+url.PathEscape(clientID), nil)
	return err
}

// Liquidate closes an open position with a market or limit order.
func (c *Client) Liquidate(ctx context.Context, req broker.LiquidateRequest) (broker.OrderAck, error) {
	if req.ClientID == "" {
		return broker.OrderAck{}, fmt.Errorf("client order id is required: %w", lot.ErrInvalid)
	}
	if req.Type == lot.LimitOrder && req.LimitPrice == nil {
		return broker.OrderAck{}, fmt.Errorf("limit liquidation needs a limit price: %w", lot.ErrInvalid)
	}
	body, err := c.do(ctx, http.MethodPost, "/orders/"+url.PathEscape(req.ClientID)+"/liquidate", req)
	if err != nil {
		return broker.OrderAck{}, err
	}
	return decodeAck(body, req.ClientID)
}

func decodeAck(body []byte, clientID string) (broker.OrderAck, error) {
	var ack broker.OrderAck
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &ack); err != nil {
			return broker.OrderAck{}, fmt.Errorf("decode response: %w", err)
		}
	}
	if ack.ClientID == "" {
		ack.ClientID = clientID
	}
	return ack, nil
}

// do executes a request and returns the response body of a 2xx reply.
func (c *Client) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reader io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound && strings.HasPrefix(path, "/latest"):
		return nil, lot.ErrSymbolNotFound
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%s %s: %w", method, path, lot.ErrNotFound)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
