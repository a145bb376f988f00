package payment

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"waxcrate-backend/internal/domain"

	"github.com/goccy/go-json"
)

// SignatureHeader carries the webhook signature in the form
// "t=<unix>,v1=<hex hmac-sha256 of '<unix>.<payload>'>".
const SignatureHeader = "Checkout-Signature"

// DefaultTolerance bounds how stale a signed webhook timestamp may be.
const DefaultTolerance = 5 * time.Minute

var (
	ErrBadSignature   = fmt.Errorf("webhook signature verification failed")
	ErrStaleTimestamp = fmt.Errorf("webhook timestamp outside tolerance")
)

// Client talks to the hosted-checkout payment processor and verifies its
// webhook notifications.
type Client struct {
	baseURL       string
	apiKey        string
	webhookSecret []byte
	tolerance     time.Duration
	httpClient    *http.Client
	now           func() time.Time
}

func NewClient(baseURL, apiKey, webhookSecret string, timeout time.Duration) *Client {
	return &Client{
		baseURL:       strings.TrimSuffix(baseURL, "/"),
		apiKey:        apiKey,
		webhookSecret: []byte(webhookSecret),
		tolerance:     DefaultTolerance,
		httpClient:    &http.Client{Timeout: timeout},
		now:           time.Now,
	}
}

type openSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// OpenSession creates a hosted checkout session and returns its id and
// the URL to redirect the customer to.
func (c *Client) OpenSession(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutSession, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("checkout session request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("checkout gateway error (status %d): %s", resp.StatusCode, string(msg))
	}

	var out openSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode checkout session: %w", err)
	}
	if out.ID == "" || out.URL == "" {
		return nil, fmt.Errorf("checkout gateway returned incomplete session")
	}

	return &domain.CheckoutSession{ID: out.ID, RedirectURL: out.URL}, nil
}

type eventEnvelope struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// ConstructEvent verifies the signature header against the raw payload
// and decodes the event. Verification failure is a hard rejection.
func (c *Client) ConstructEvent(payload []byte, sigHeader string) (*domain.WebhookEvent, error) {
	ts, sig, err := parseSignatureHeader(sigHeader)
	if err != nil {
		return nil, err
	}

	age := c.now().Sub(time.Unix(ts, 0))
	if age > c.tolerance || age < -c.tolerance {
		return nil, ErrStaleTimestamp
	}

	expected := computeSignature(c.webhookSecret, ts, payload)
	if !hmac.Equal([]byte(expected), []byte(sig)) {
		return nil, ErrBadSignature
	}

	var env eventEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("failed to decode webhook payload: %w", err)
	}

	return &domain.WebhookEvent{
		ID:        env.ID,
		Type:      env.Type,
		SessionID: env.Data.Object.ID,
		Metadata:  env.Data.Object.Metadata,
	}, nil
}

// Sign produces a signature header for payload at time t. Exposed for
// tests and for local gateway simulators.
func (c *Client) Sign(payload []byte, t time.Time) string {
	ts := t.Unix()
	return fmt.Sprintf("t=%d,v1=%s", ts, computeSignature(c.webhookSecret, ts, payload))
}

func computeSignature(secret []byte, ts int64, payload []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strconv.FormatInt(ts, 10)))
	mac.Write([]byte("."))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func parseSignatureHeader(header string) (ts int64, sig string, err error) {
	if header == "" {
		return 0, "", ErrBadSignature
	}
	for _, part := range strings.Split(header, ",") {
		k, v, found := strings.Cut(strings.TrimSpace(part), "=")
		if !found {
			continue
		}
		switch k {
		case "t":
			ts, err = strconv.ParseInt(v, 10, 64)
			if err != nil {
				return 0, "", ErrBadSignature
			}
		case "v1":
			sig = v
		}
	}
	if ts == 0 || sig == "" {
		return 0, "", ErrBadSignature
	}
	return ts, sig, nil
}
