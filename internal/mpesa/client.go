// Package mpesa initiates STK push payments through the Safaricom Daraja API.
package mpesa

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nyumba-app/nyumba/internal/config"
)

const timestampLayout = "20060102150405"

// Client calls the Daraja OAuth and STK push endpoints.
type Client struct {
	httpClient *http.Client
	cfg        config.MpesaConfig

	// Overridable base URL for testing.
	baseURL string

	now func() time.Time
}

// NewClient creates an M-Pesa client from config.
func NewClient(cfg config.MpesaConfig) (*Client, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("M-Pesa credentials are required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cfg:        cfg,
		baseURL:    cfg.BaseURL,
		now:        time.Now,
	}, nil
}

// STKResponse is the Daraja response to an STK push request.
type STKResponse struct {
	MerchantRequestID string `json:"MerchantRequestID"`
	CheckoutRequestID string `json:"CheckoutRequestID"`
	ResponseCode      string `json:"ResponseCode"`
	ResponseDesc      string `json:"ResponseDescription"`
	CustomerMessage   string `json:"CustomerMessage"`
}

// Accepted reports whether Daraja accepted the push for processing.
// ResponseCode "0" means the prompt was sent to the phone; the actual
// payment outcome arrives later on the callback URL.
func (r *STKResponse) Accepted() bool {
	return r.ResponseCode == "0"
}

// STKPush sends a payment prompt to the given phone number.
func (c *Client) STKPush(phoneNumber string, amount int64, accountReference string) (*STKResponse, error) {
	if phoneNumber == "" {
		return nil, fmt.Errorf("phone number is required")
	}
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive")
	}

	token, err := c.accessToken()
	if err != nil {
		return nil, fmt.Errorf("fetching access token: %w", err)
	}

	timestamp := c.now().Format(timestampLayout)
	password := base64.StdEncoding.EncodeToString(
		[]byte(c.cfg.Shortcode + c.cfg.Passkey + timestamp),
	)

	payload := map[string]interface{}{
		"BusinessShortCode": c.cfg.Shortcode,
		"Password":          password,
		"Timestamp":         timestamp,
		"TransactionType":   "CustomerPayBillOnline",
		"Amount":            amount,
		"PartyA":            phoneNumber,
		"PartyB":            c.cfg.Shortcode,
		"PhoneNumber":       phoneNumber,
		"CallBackURL":       c.cfg.CallbackURL,
		"AccountReference":  accountReference,
		"TransactionDesc":   "Rent Payment",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+"/mpesa/stkpush/v1/processrequest", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stk push failed: HTTP %d: %s", resp.StatusCode, string(respBody))
	}

	var result STKResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return &result, nil
}

// tokenResponse is the Daraja OAuth response.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   string `json:"expires_in"`
}

// accessToken fetches a client-credentials token.
func (c *Client) accessToken() (string, error) {
	req, err := http.NewRequest("GET", c.baseURL+"/oauth/v1/generate?grant_type=client_credentials", nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	credentials := base64.StdEncoding.EncodeToString(
		[]byte(c.cfg.ConsumerKey + ":" + c.cfg.ConsumerSecret),
	)
	req.Header.Set("Authorization", "Basic "+credentials)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending request: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var result tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	if result.AccessToken == "" {
		return "", fmt.Errorf("empty access token in response")
	}

	return result.AccessToken, nil
}
