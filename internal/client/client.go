// Package client provides an HTTP client for the nyumba REST API.
package client

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/nyumba-app/nyumba/internal/chat"
	"github.com/nyumba-app/nyumba/internal/dashboard"
	"github.com/nyumba-app/nyumba/internal/payment"
	"github.com/nyumba-app/nyumba/internal/property"
	"github.com/nyumba-app/nyumba/internal/user"
)

// ErrUnauthorized matches any 401 response so callers can clear a stale
// session: errors.Is(err, ErrUnauthorized).
var ErrUnauthorized = errors.New("unauthorized")

// APIError is a non-OK response from the server: the status code plus
// the server's error message (HTTP status text when the body had none).
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrUnauthorized) match any 401.
func (e *APIError) Is(target error) bool {
	return target == ErrUnauthorized && e.StatusCode == http.StatusUnauthorized
}

// Client is an HTTP client for the nyumba API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates an API client. The token may be empty for the public
// endpoints (login, register).
func New(baseURL, token string) *Client {
	return &Client{
		baseURL:    baseURL,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// Session is the login/register response.
type Session struct {
	Token string     `json:"token"`
	User  *user.User `json:"user"`
}

// Login exchanges credentials for a session.
func (c *Client) Login(email, password string) (*Session, error) {
	body := map[string]string{"email": email, "password": password}
	var s Session
	if err := c.post("/api/auth/login", body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// RegisterInput holds the fields for account registration.
type RegisterInput struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	PhoneNumber string `json:"phone_number,omitempty"`
	HouseNumber string `json:"house_number,omitempty"`
	Role        string `json:"role"`
}

// Register creates an account and returns the fresh session.
func (c *Client) Register(in RegisterInput) (*Session, error) {
	var s Session
	if err := c.post("/api/auth/register", in, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Profile returns the account behind the client's token.
func (c *Client) Profile() (*user.User, error) {
	var u user.User
	if err := c.get("/api/auth/profile", &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListProperties returns the properties visible to the caller.
func (c *Client) ListProperties() ([]*property.Property, error) {
	var props []*property.Property
	if err := c.get("/api/properties", &props); err != nil {
		return nil, err
	}
	return props, nil
}

// GetProperty returns one property.
func (c *Client) GetProperty(id int64) (*property.Property, error) {
	var p property.Property
	if err := c.get(fmt.Sprintf("/api/properties/%d", id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProperty adds a property (landlord only).
func (c *Client) CreateProperty(name, address string, rent float64, description string) (*property.Property, error) {
	body := map[string]interface{}{
		"name":        name,
		"address":     address,
		"rent_amount": rent,
		"description": description,
	}
	var p property.Property
	if err := c.post("/api/properties", body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateProperty applies the non-nil fields of in (landlord only).
func (c *Client) UpdateProperty(id int64, in property.UpdateInput) (*property.Property, error) {
	var p property.Property
	if err := c.put(fmt.Sprintf("/api/properties/%d", id), in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProperty removes a property (landlord only).
func (c *Client) DeleteProperty(id int64) error {
	return c.doDelete(fmt.Sprintf("/api/properties/%d", id))
}

// UploadImage attaches an image file to a property (landlord only).
func (c *Client) UploadImage(id int64, path string) (*property.Property, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening image: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			fmt.Printf("warning: closing image: %v\n", cerr)
		}
	}()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", filepath.Base(path))
	if err != nil {
		return nil, fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finishing form: %w", err)
	}

	req, err := http.NewRequest("POST", c.baseURL+fmt.Sprintf("/api/properties/%d/images", id), &buf)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var p property.Property
	if err := c.do(req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPayments returns the caller's payments.
func (c *Client) ListPayments() ([]*payment.Payment, error) {
	var payments []*payment.Payment
	if err := c.get("/api/payments", &payments); err != nil {
		return nil, err
	}
	return payments, nil
}

// GetPayment returns one payment.
func (c *Client) GetPayment(id int64) (*payment.Payment, error) {
	var p payment.Payment
	if err := c.get(fmt.Sprintf("/api/payments/%d", id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// InitiateResponse is the optimistic payment-initiation reply.
type InitiateResponse struct {
	Payment *payment.Payment `json:"payment"`
	Message string           `json:"message"`
}

// Pay fires an STK push for the given property (tenant only). A zero
// amount means the property's rent.
func (c *Client) Pay(propertyID int64, amount float64, phoneNumber string) (*InitiateResponse, error) {
	body := map[string]interface{}{
		"property_id":  propertyID,
		"amount":       amount,
		"phone_number": phoneNumber,
	}
	var resp InitiateResponse
	if err := c.post("/api/payments", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdatePaymentStatus corrects a payment's status (landlord only).
func (c *Client) UpdatePaymentStatus(id int64, status string) (*payment.Payment, error) {
	body := map[string]string{"status": status}
	var p payment.Payment
	if err := c.put(fmt.Sprintf("/api/payments/%d", id), body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListTenants returns tenant accounts (landlord only).
func (c *Client) ListTenants() ([]*user.User, error) {
	var tenants []*user.User
	if err := c.get("/api/users", &tenants); err != nil {
		return nil, err
	}
	return tenants, nil
}

// TenantCount returns the tenant count and the cap.
func (c *Client) TenantCount() (count, limit int, err error) {
	var resp map[string]int
	if err := c.get("/api/users/count", &resp); err != nil {
		return 0, 0, err
	}
	return resp["count"], resp["max"], nil
}

// Conversations returns the caller's chat threads.
func (c *Client) Conversations() ([]*chat.Conversation, error) {
	var convos []*chat.Conversation
	if err := c.get("/api/conversations", &convos); err != nil {
		return nil, err
	}
	return convos, nil
}

// Messages returns a property thread (marking it read server-side).
func (c *Client) Messages(propertyID int64) ([]*chat.Message, error) {
	var messages []*chat.Message
	if err := c.get(fmt.Sprintf("/api/conversations/%d/messages", propertyID), &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage posts to a property thread. receiverID is ignored for
// tenants (the landlord always receives).
func (c *Client) SendMessage(propertyID, receiverID int64, content string) (*chat.Message, error) {
	body := map[string]interface{}{"content": content, "receiver_id": receiverID}
	var m chat.Message
	if err := c.post(fmt.Sprintf("/api/conversations/%d/messages", propertyID), body, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

// LandlordDashboard returns the landlord summary.
func (c *Client) LandlordDashboard() (*dashboard.LandlordSummary, error) {
	var s dashboard.LandlordSummary
	if err := c.get("/api/dashboard/landlord", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// TenantDashboard returns the tenant summary.
func (c *Client) TenantDashboard() (*dashboard.TenantSummary, error) {
	var s dashboard.TenantSummary
	if err := c.get("/api/dashboard/tenant", &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// get performs a GET request and decodes the response.
func (c *Client) get(path string, result interface{}) error {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

// post performs a POST request with a JSON body and decodes the response.
func (c *Client) post(path string, body interface{}, result interface{}) error {
	return c.send("POST", path, body, result)
}

// put performs a PUT request with a JSON body and decodes the response.
func (c *Client) put(path string, body interface{}, result interface{}) error {
	return c.send("PUT", path, body, result)
}

func (c *Client) send(method, path string, body interface{}, result interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequest(method, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, result)
}

// doDelete performs a DELETE request.
func (c *Client) doDelete(path string) error {
	req, err := http.NewRequest("DELETE", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, nil)
}

// do executes an HTTP request with the bearer token and turns non-OK
// responses into *APIError.
func (c *Client) do(req *http.Request, result interface{}) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			fmt.Printf("warning: closing response body: %v\n", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			apiErr.Message = errResp.Error
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}
