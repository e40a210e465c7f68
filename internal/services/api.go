package services

import (
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wyzo-ops/orderbot-backend/internal/config"
	"github.com/wyzo-ops/orderbot-backend/internal/models"
)

// Truncate logged response bodies beyond this many bytes.
const logBodyLimit = 1000

// APIError carries the HTTP status and server message for a failed call.
// Transport failures and undecodable bodies map to a synthetic status 500.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s", e.Status, e.Message)
}

// IsAuthError reports whether err is a 401/403 rejection, which the
// dialogue treats as session expiry.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden
	}
	return false
}

// APIClient talks to the commerce admin API and the OTP service.
// Every call is a single synchronous request: no retries, no caching.
type APIClient struct {
	cfg      *config.Config
	client   *http.Client
	insecure *http.Client // OTP endpoints only: TLS verification disabled
}

// NewAPIClient creates a new remote API client.
func NewAPIClient(cfg *config.Config) *APIClient {
	return &APIClient{
		cfg:    cfg,
		client: &http.Client{},
		insecure: &http.Client{
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
			},
		},
	}
}

// Authenticate logs in with form-encoded credentials and returns the
// bearer token. Success is strictly HTTP 200 with a token in the body.
func (c *APIClient) Authenticate(email, password string) (string, error) {
	endpoint := c.cfg.AdminAPIBaseURL + "/login"

	form := url.Values{}
	form.Set("email", email)
	form.Set("password", password)
	form.Set("device_name", c.cfg.DeviceName)

	logRequest("POST", endpoint, map[string]string{"Accept": "application/json"}, map[string]string{
		"email":       email,
		"password":    "********",
		"device_name": c.cfg.DeviceName,
	})

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &APIError{Status: http.StatusInternalServerError, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	status, body, err := c.do(c.client, req)
	if err != nil {
		return "", err
	}

	if status != http.StatusOK {
		return "", &APIError{Status: status, Message: errorMessage(body)}
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", &APIError{Status: http.StatusInternalServerError, Message: "undecodable login response: " + err.Error()}
	}
	if payload.Token == "" {
		return "", &APIError{Status: status, Message: "no access token in response"}
	}

	return payload.Token, nil
}

// GetOrder fetches an order by id using the user's bearer token.
func (c *APIClient) GetOrder(orderID, token string) (*models.Order, error) {
	endpoint := c.cfg.AdminAPIBaseURL + "/sales/orders/" + url.PathEscape(orderID)

	headers := map[string]string{
		"Accept":        "application/json",
		"Authorization": "Bearer " + token,
	}
	logRequest("GET", endpoint, headers, nil)

	req, err := http.NewRequest(http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &APIError{Status: http.StatusInternalServerError, Message: err.Error()}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	status, body, err := c.do(c.client, req)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		log.Printf("❌ Failed to get order %s: status %d", orderID, status)
		return nil, &APIError{Status: status, Message: errorMessage(body)}
	}

	var order models.Order
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, &APIError{Status: http.StatusInternalServerError, Message: "undecodable order response: " + err.Error()}
	}

	log.Printf("✅ Retrieved order %s", orderID)
	return &order, nil
}

// CreateOTP asks the OTP service to send a one-time code to the phone.
func (c *APIClient) CreateOTP(phone string) error {
	return c.postOTP("/otp/create", map[string]string{"target": phone})
}

// VerifyOTP checks the code the user received against the OTP service.
func (c *APIClient) VerifyOTP(phone, code string) error {
	return c.postOTP("/otp/verify", map[string]string{"target": phone, "otp": code})
}

func (c *APIClient) postOTP(path string, payload map[string]string) error {
	endpoint := c.cfg.OTPAPIBaseURL + path

	headers := map[string]string{
		"RobotXAuthToken": c.cfg.ServiceAuthToken,
		"Content-Type":    "application/json",
	}
	logRequest("POST", endpoint, headers, payload)

	body, err := json.Marshal(payload)
	if err != nil {
		return &APIError{Status: http.StatusInternalServerError, Message: err.Error()}
	}

	req, err := http.NewRequest(http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return &APIError{Status: http.StatusInternalServerError, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("RobotXAuthToken", c.cfg.ServiceAuthToken)

	status, respBody, err := c.do(c.insecure, req)
	if err != nil {
		return err
	}

	if status != http.StatusOK {
		return &APIError{Status: status, Message: errorMessage(respBody)}
	}
	return nil
}

// do executes the request and logs the response. Transport failures
// come back as a synthetic 500 APIError.
func (c *APIClient) do(client *http.Client, req *http.Request) (int, []byte, error) {
	start := time.Now()

	resp, err := client.Do(req)
	if err != nil {
		log.Printf("❌ Network error: %v", err)
		return 0, nil, &APIError{Status: http.StatusInternalServerError, Message: "network error: " + err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		log.Printf("❌ Failed to read response body: %v", err)
		return 0, nil, &APIError{Status: http.StatusInternalServerError, Message: "network error: " + err.Error()}
	}

	logResponse(resp.StatusCode, body, time.Since(start))
	return resp.StatusCode, body, nil
}

// errorMessage prefers the JSON "message" field, falling back to the raw body.
func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	return string(body)
}

func logRequest(method, endpoint string, headers, body map[string]string) {
	log.Printf("📤 %s %s", method, endpoint)
	for key, value := range headers {
		log.Printf("   %s: %s", key, redactHeader(key, value))
	}
	if len(body) > 0 {
		encoded, _ := json.Marshal(body)
		log.Printf("   body: %s", encoded)
	}
}

func logResponse(status int, body []byte, elapsed time.Duration) {
	log.Printf("📥 Status: %d (took %.2fs)", status, elapsed.Seconds())

	text := string(body)
	if len(text) > logBodyLimit {
		text = text[:logBodyLimit] + "... [truncated]"
	}
	log.Printf("   body: %s", text)
}

// redactHeader hides credential header values, keeping a short prefix
// so requests remain correlatable in the logs.
func redactHeader(key, value string) string {
	switch key {
	case "Authorization", "RobotXAuthToken":
		if len(value) > 20 {
			return value[:20] + "..."
		}
		return "..."
	}
	return value
}
