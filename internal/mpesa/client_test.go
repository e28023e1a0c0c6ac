package mpesa

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/nyumba-app/nyumba/internal/config"
)

func testConfig() config.MpesaConfig {
	return config.MpesaConfig{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		Shortcode:      "174379",
		Passkey:        "passkey",
		CallbackURL:    "https://example.com/api/payments/callback",
	}
}

// testServer fakes the Daraja OAuth and STK push endpoints.
func testServer(t *testing.T, stkStatus int, stkBody string) (*Client, *http.Request) {
	t.Helper()

	var captured http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/v1/generate":
			if r.Header.Get("Authorization") == "" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			_, _ = w.Write([]byte(`{"access_token": "test-token", "expires_in": "3599"}`))
		case "/mpesa/stkpush/v1/processrequest":
			captured = *r
			captured.Body = r.Body
			body := make(map[string]interface{})
			_ = json.NewDecoder(r.Body).Decode(&body)
			captured.Header.Set("X-Test-Payload-Phone", body["PhoneNumber"].(string))
			captured.Header.Set("X-Test-Payload-Password", body["Password"].(string))
			w.WriteHeader(stkStatus)
			_, _ = w.Write([]byte(stkBody))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(testConfig())
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	client.baseURL = srv.URL
	client.now = func() time.Time {
		return time.Date(2025, 6, 1, 12, 30, 45, 0, time.UTC)
	}

	return client, &captured
}

func TestSTKPushAccepted(t *testing.T) {
	client, captured := testServer(t, http.StatusOK,
		`{"MerchantRequestID": "m1", "CheckoutRequestID": "ws_CO_123", "ResponseCode": "0", "ResponseDescription": "Success"}`)

	resp, err := client.STKPush("254712345678", 20000, "Rent-1")
	if err != nil {
		t.Fatalf("stk push: %v", err)
	}

	if !resp.Accepted() {
		t.Error("expected accepted response")
	}
	if resp.CheckoutRequestID != "ws_CO_123" {
		t.Errorf("checkout id = %q", resp.CheckoutRequestID)
	}

	if got := captured.Header.Get("Authorization"); got != "Bearer test-token" {
		t.Errorf("authorization = %q, want Bearer test-token", got)
	}
	if got := captured.Header.Get("X-Test-Payload-Phone"); got != "254712345678" {
		t.Errorf("payload phone = %q", got)
	}

	// Password = base64(shortcode + passkey + timestamp) with the frozen clock.
	want := base64.StdEncoding.EncodeToString([]byte("174379" + "passkey" + "20250601123045"))
	if got := captured.Header.Get("X-Test-Payload-Password"); got != want {
		t.Errorf("payload password = %q, want %q", got, want)
	}
}

func TestSTKPushRejected(t *testing.T) {
	client, _ := testServer(t, http.StatusOK,
		`{"ResponseCode": "1", "ResponseDescription": "Insufficient balance"}`)

	resp, err := client.STKPush("254712345678", 20000, "Rent-1")
	if err != nil {
		t.Fatalf("stk push: %v", err)
	}
	if resp.Accepted() {
		t.Error("expected rejected response")
	}
}

func TestSTKPushServerError(t *testing.T) {
	client, _ := testServer(t, http.StatusBadRequest, `{"errorMessage": "Invalid Timestamp"}`)

	_, err := client.STKPush("254712345678", 20000, "Rent-1")
	if err == nil {
		t.Fatal("expected error for HTTP 400")
	}
}

func TestSTKPushValidation(t *testing.T) {
	client, _ := testServer(t, http.StatusOK, `{}`)

	if _, err := client.STKPush("", 20000, "Rent-1"); err == nil {
		t.Error("expected error for empty phone")
	}
	if _, err := client.STKPush("254712345678", 0, "Rent-1"); err == nil {
		t.Error("expected error for zero amount")
	}
}

func TestNewClientRequiresCredentials(t *testing.T) {
	if _, err := NewClient(config.MpesaConfig{}); err == nil {
		t.Error("expected error for missing credentials")
	}
}

func TestParseCallbackSuccess(t *testing.T) {
	body := []byte(`{
		"Body": {
			"stkCallback": {
				"MerchantRequestID": "m1",
				"CheckoutRequestID": "ws_CO_123",
				"ResultCode": 0,
				"ResultDesc": "The service request is processed successfully.",
				"CallbackMetadata": {
					"Item": [
						{"Name": "Amount", "Value": 20000},
						{"Name": "MpesaReceiptNumber", "Value": "SFI12XYZ9"},
						{"Name": "PhoneNumber", "Value": 254712345678}
					]
				}
			}
		}
	}`)

	result, err := ParseCallback(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if !result.Success() {
		t.Error("expected success")
	}
	if result.CheckoutRequestID != "ws_CO_123" {
		t.Errorf("checkout id = %q", result.CheckoutRequestID)
	}
	if result.Receipt != "SFI12XYZ9" {
		t.Errorf("receipt = %q", result.Receipt)
	}
	if result.Amount != 20000 {
		t.Errorf("amount = %v", result.Amount)
	}
	if result.PhoneNumber != "254712345678" {
		t.Errorf("phone = %q", result.PhoneNumber)
	}
}

func TestParseCallbackCancelled(t *testing.T) {
	body := []byte(`{
		"Body": {
			"stkCallback": {
				"CheckoutRequestID": "ws_CO_456",
				"ResultCode": 1032,
				"ResultDesc": "Request cancelled by user"
			}
		}
	}`)

	result, err := ParseCallback(body)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if result.Success() {
		t.Error("expected failure for cancelled payment")
	}
}

func TestParseCallbackInvalid(t *testing.T) {
	if _, err := ParseCallback([]byte(`not json`)); err == nil {
		t.Error("expected error for invalid json")
	}
	if _, err := ParseCallback([]byte(`{"Body": {"stkCallback": {}}}`)); err == nil {
		t.Error("expected error for missing CheckoutRequestID")
	}
}
