package provider

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestHTTPClientCheckAuth(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		handler http.HandlerFunc
		want    bool
	}{
		{
			name: "authenticated",
			handler: func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/check-auth" {
					t.Errorf("path = %s, want /check-auth", r.URL.Path)
				}
				_ = json.NewEncoder(w).Encode(map[string]any{"authenticated": true})
			},
			want: true,
		},
		{
			name: "not authenticated",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_ = json.NewEncoder(w).Encode(map[string]any{"authenticated": false})
			},
			want: false,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
			want: false,
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(tc.handler)
			defer server.Close()

			client := NewHTTPClient(zap.NewNop())
			if got := client.CheckAuth(context.Background(), server.URL); got != tc.want {
				t.Fatalf("CheckAuth() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestHTTPClientCheckAuthTransportErrorIsUnhealthy(t *testing.T) {
	t.Parallel()

	client := NewHTTPClient(zap.NewNop())
	if client.CheckAuth(context.Background(), "http://127.0.0.1:1") {
		t.Fatal("CheckAuth() against unreachable endpoint = true, want false")
	}
}

func TestHTTPClientSendMessageSuccess(t *testing.T) {
	t.Parallel()

	var gotBody SendRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/send-message" {
			t.Errorf("path = %s, want /send-message", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("failed to decode request body: %v", err)
		}
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewHTTPClient(zap.NewNop())
	resp, err := client.SendMessage(context.Background(), server.URL, SendRequest{
		Phones:  []string{"5511987654321"},
		Message: "Olá Maria, tudo bem?",
	})
	if err != nil {
		t.Fatalf("SendMessage() error = %v", err)
	}

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("StatusCode = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	if len(gotBody.Phones) != 1 || gotBody.Phones[0] != "5511987654321" {
		t.Fatalf("request phones = %v, want [5511987654321]", gotBody.Phones)
	}
	if gotBody.Message != "Olá Maria, tudo bem?" {
		t.Fatalf("request message = %q", gotBody.Message)
	}
}

func TestHTTPClientSendMessageStatusClassification(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		statusCode    int
		wantTransient bool
	}{
		{name: "too many requests is transient", statusCode: http.StatusTooManyRequests, wantTransient: true},
		{name: "bad request is permanent", statusCode: http.StatusBadRequest, wantTransient: false},
		{name: "internal server error is transient", statusCode: http.StatusInternalServerError, wantTransient: true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.statusCode)
				_, _ = w.Write([]byte("send failed"))
			}))
			defer server.Close()

			client := NewHTTPClient(zap.NewNop())
			_, err := client.SendMessage(context.Background(), server.URL, SendRequest{
				Phones:  []string{"5511987654321"},
				Message: "Olá, tudo bem?",
			})
			if err == nil {
				t.Fatal("SendMessage() error = nil, want error")
			}

			var providerErr *ProviderError
			if !errors.As(err, &providerErr) {
				t.Fatalf("error type = %T, want *ProviderError", err)
			}
			if providerErr.StatusCode != tc.statusCode {
				t.Fatalf("StatusCode = %d, want %d", providerErr.StatusCode, tc.statusCode)
			}
			if IsTransient(err) != tc.wantTransient {
				t.Fatalf("IsTransient() = %v, want %v", IsTransient(err), tc.wantTransient)
			}
		})
	}
}

func TestHTTPClientSendMessageRequiresPhone(t *testing.T) {
	t.Parallel()

	client := NewHTTPClient(zap.NewNop())
	if _, err := client.SendMessage(context.Background(), "http://localhost:3001", SendRequest{Message: "oi"}); err == nil {
		t.Fatal("SendMessage() without phones error = nil, want error")
	}
}
