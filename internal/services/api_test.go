package services_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/wyzo-ops/orderbot-backend/internal/config"
	"github.com/wyzo-ops/orderbot-backend/internal/services"
)

func newClient(t *testing.T, handler http.Handler) *services.APIClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		AdminAPIBaseURL:  srv.URL,
		OTPAPIBaseURL:    srv.URL,
		ServiceAuthToken: "svc-token",
		DeviceName:       "pc",
	}
	return services.NewAPIClient(cfg)
}

func TestAuthenticateSuccess(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("failed to parse form: %v", err)
		}
		if r.PostFormValue("email") != "admin@example.com" {
			t.Errorf("got email %q", r.PostFormValue("email"))
		}
		if r.PostFormValue("password") != "secret" {
			t.Errorf("got password %q", r.PostFormValue("password"))
		}
		if r.PostFormValue("device_name") != "pc" {
			t.Errorf("got device_name %q", r.PostFormValue("device_name"))
		}
		io.WriteString(w, `{"token":"bearer-token-123"}`)
	}))

	token, err := client.Authenticate("admin@example.com", "secret")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if token != "bearer-token-123" {
		t.Errorf("got token %q", token)
	}
}

func TestAuthenticateRejected(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"Invalid credentials"}`)
	}))

	_, err := client.Authenticate("admin@example.com", "wrong")
	apiErr, ok := err.(*services.APIError)
	if !ok {
		t.Fatalf("got %T, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnauthorized {
		t.Errorf("got status %d, want 401", apiErr.Status)
	}
	if apiErr.Message != "Invalid credentials" {
		t.Errorf("got message %q", apiErr.Message)
	}
}

func TestAuthenticateMissingToken(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"expires_in":3600}`)
	}))

	_, err := client.Authenticate("admin@example.com", "secret")
	if err == nil {
		t.Fatal("expected error for 200 response without token")
	}
	if !strings.Contains(err.Error(), "no access token") {
		t.Errorf("got error %v", err)
	}
}

func TestAuthenticateNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	cfg := &config.Config{AdminAPIBaseURL: srv.URL, DeviceName: "pc"}
	client := services.NewAPIClient(cfg)

	_, err := client.Authenticate("admin@example.com", "secret")
	apiErr, ok := err.(*services.APIError)
	if !ok {
		t.Fatalf("got %T, want *APIError", err)
	}
	if apiErr.Status != http.StatusInternalServerError {
		t.Errorf("got status %d, want synthetic 500", apiErr.Status)
	}
	if !strings.Contains(apiErr.Message, "network error") {
		t.Errorf("got message %q", apiErr.Message)
	}
}

func TestGetOrderSuccess(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sales/orders/1001" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("got Authorization %q", got)
		}
		io.WriteString(w, `{"data":{"id":1001,"status":"processing","customer":{"phone":"+15551234567"},"items":[{"name":"Blue T-Shirt","additional":{"quantity":2}}]}}`)
	}))

	order, err := client.GetOrder("1001", "tok")
	if err != nil {
		t.Fatalf("GetOrder failed: %v", err)
	}
	if order.Data.ID != 1001 {
		t.Errorf("got id %d", order.Data.ID)
	}
	if order.CustomerPhone() != "+15551234567" {
		t.Errorf("got phone %q", order.CustomerPhone())
	}
	if len(order.Data.Items) != 1 || order.Data.Items[0].Additional.Quantity != 2 {
		t.Errorf("items decoded incorrectly: %+v", order.Data.Items)
	}
}

func TestGetOrderUnauthorized(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		io.WriteString(w, `{"message":"Unauthenticated."}`)
	}))

	_, err := client.GetOrder("1001", "stale")
	if !services.IsAuthError(err) {
		t.Errorf("expected IsAuthError for 401, got %v", err)
	}
}

func TestGetOrderErrorMessageFallsBackToBody(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		io.WriteString(w, "upstream exploded")
	}))

	_, err := client.GetOrder("1001", "tok")
	apiErr, ok := err.(*services.APIError)
	if !ok {
		t.Fatalf("got %T, want *APIError", err)
	}
	if apiErr.Message != "upstream exploded" {
		t.Errorf("got message %q", apiErr.Message)
	}
}

func TestCreateOTP(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/otp/create" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("RobotXAuthToken"); got != "svc-token" {
			t.Errorf("got service token %q", got)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"target":"+15551234567"`) {
			t.Errorf("got body %s", body)
		}
		io.WriteString(w, `{"status":"ok"}`)
	}))

	if err := client.CreateOTP("+15551234567"); err != nil {
		t.Fatalf("CreateOTP failed: %v", err)
	}
}

func TestVerifyOTPRejected(t *testing.T) {
	client := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/otp/verify" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"otp":"000000"`) {
			t.Errorf("got body %s", body)
		}
		w.WriteHeader(http.StatusUnprocessableEntity)
		io.WriteString(w, `{"message":"Invalid OTP"}`)
	}))

	err := client.VerifyOTP("+15551234567", "000000")
	apiErr, ok := err.(*services.APIError)
	if !ok {
		t.Fatalf("got %T, want *APIError", err)
	}
	if apiErr.Status != http.StatusUnprocessableEntity || apiErr.Message != "Invalid OTP" {
		t.Errorf("got %d %q", apiErr.Status, apiErr.Message)
	}
}
