package market

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const defaultBitsoBaseURL = "https://api.bitso.com"

// BitsoClient talks to the Bitso REST API. Public endpoints work without
// credentials; FetchBalance requires an API key pair and signs requests with
// HMAC-SHA256 over nonce+method+path.
type BitsoClient struct {
	BaseURL    string
	HTTPClient *http.Client

	apiKey    string
	apiSecret string
	limiter   *rate.Limiter
	nonce     func() string
}

func NewBitso(apiKey, apiSecret string) *BitsoClient {
	return &BitsoClient{
		BaseURL:    defaultBitsoBaseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
		apiKey:     apiKey,
		apiSecret:  apiSecret,
		limiter:    rate.NewLimiter(rate.Limit(1), 2),
		nonce: func() string {
			return strconv.FormatInt(time.Now().UnixNano()/int64(time.Millisecond), 10)
		},
	}
}

type bitsoEnvelope struct {
	Success bool            `json:"success"`
	Payload json.RawMessage `json:"payload"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *BitsoClient) FetchTicker(ctx context.Context, pair string) (Ticker, error) {
	var payload struct {
		Last      string    `json:"last"`
		CreatedAt time.Time `json:"created_at"`
	}
	path := "/v3/ticker/?book=" + bookName(pair)
	if err := c.get(ctx, path, false, &payload); err != nil {
		return Ticker{}, fmt.Errorf("fetch ticker %s: %w", pair, err)
	}
	last, err := strconv.ParseFloat(payload.Last, 64)
	if err != nil {
		return Ticker{}, fmt.Errorf("fetch ticker %s: bad last price %q", pair, payload.Last)
	}
	at := payload.CreatedAt
	if at.IsZero() {
		at = time.Now()
	}
	return Ticker{Last: last, Time: at}, nil
}

func (c *BitsoClient) FetchOHLCV(ctx context.Context, pair, timeframe string, limit int) ([]Candle, error) {
	bucket, err := bucketSeconds(timeframe)
	if err != nil {
		return nil, err
	}
	var payload []struct {
		BucketStartTime string `json:"bucket_start_time"`
		FirstRate       string `json:"first_rate"`
		MaxRate         string `json:"max_rate"`
		MinRate         string `json:"min_rate"`
		LastRate        string `json:"last_rate"`
		Volume          string `json:"volume"`
	}
	path := fmt.Sprintf("/v4/ohlc?book=%s&time_bucket=%d&limit=%d", bookName(pair), bucket, limit)
	if err := c.get(ctx, path, false, &payload); err != nil {
		return nil, fmt.Errorf("fetch ohlcv %s: %w", pair, err)
	}

	candles := make([]Candle, 0, len(payload))
	for _, row := range payload {
		ms, err := strconv.ParseInt(row.BucketStartTime, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("fetch ohlcv %s: bad bucket time %q", pair, row.BucketStartTime)
		}
		candle := Candle{Time: time.UnixMilli(ms)}
		fields := []struct {
			raw string
			dst *float64
		}{
			{row.FirstRate, &candle.Open},
			{row.MaxRate, &candle.High},
			{row.MinRate, &candle.Low},
			{row.LastRate, &candle.Close},
			{row.Volume, &candle.Volume},
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f.raw, 64)
			if err != nil {
				return nil, fmt.Errorf("fetch ohlcv %s: bad rate %q", pair, f.raw)
			}
			*f.dst = v
		}
		candles = append(candles, candle)
	}
	if len(candles) > limit {
		candles = candles[len(candles)-limit:]
	}
	return candles, nil
}

func (c *BitsoClient) FetchBalance(ctx context.Context) (map[string]float64, error) {
	if c.apiKey == "" || c.apiSecret == "" {
		return nil, ErrMissingCredentials
	}
	var payload struct {
		Balances []struct {
			Currency  string `json:"currency"`
			Available string `json:"available"`
		} `json:"balances"`
	}
	if err := c.get(ctx, "/v3/balance/", true, &payload); err != nil {
		return nil, fmt.Errorf("fetch balance: %w", err)
	}
	balances := make(map[string]float64, len(payload.Balances))
	for _, b := range payload.Balances {
		v, err := strconv.ParseFloat(b.Available, 64)
		if err != nil {
			return nil, fmt.Errorf("fetch balance: bad amount %q for %s", b.Available, b.Currency)
		}
		balances[strings.ToUpper(b.Currency)] = v
	}
	return balances, nil
}

func (c *BitsoClient) get(ctx context.Context, path string, signed bool, out interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	if signed {
		nonce := c.nonce()
		mac := hmac.New(sha256.New, []byte(c.apiSecret))
		mac.Write([]byte(nonce + http.MethodGet + path))
		sig := hex.EncodeToString(mac.Sum(nil))
		req.Header.Set("Authorization", fmt.Sprintf("Bitso %s:%s:%s", c.apiKey, nonce, sig))
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w", resp.Status, ErrRateLimited)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("bitso api status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var envelope bitsoEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("decode bitso response: %w", err)
	}
	if !envelope.Success {
		if strings.Contains(strings.ToLower(envelope.Error.Message), "too many") {
			return fmt.Errorf("bitso error %s: %w", envelope.Error.Code, ErrRateLimited)
		}
		return fmt.Errorf("bitso error %s: %s", envelope.Error.Code, envelope.Error.Message)
	}
	return json.Unmarshal(envelope.Payload, out)
}

// bookName maps a pair like BTC/MXN to the Bitso book name btc_mxn.
func bookName(pair string) string {
	return strings.ToLower(strings.ReplaceAll(pair, "/", "_"))
}

func bucketSeconds(timeframe string) (int, error) {
	switch timeframe {
	case "1m":
		return 60, nil
	case "5m":
		return 300, nil
	case "15m":
		return 900, nil
	case "1h":
		return 3600, nil
	case "4h":
		return 14400, nil
	case "1d":
		return 86400, nil
	}
	return 0, fmt.Errorf("unsupported timeframe: %s", timeframe)
}
