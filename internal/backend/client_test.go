package backend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"crowdwatch/internal/dao"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return token
}

func TestTokenExpired(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{
			name:  "empty token",
			token: "",
			want:  true,
		},
		{
			name:  "garbage token",
			token: "not-a-jwt",
			want:  true,
		},
		{
			name:  "future expiry",
			token: signedToken(t, jwt.MapClaims{"sub": "alice", "exp": now.Add(time.Hour).Unix()}),
			want:  false,
		},
		{
			name:  "past expiry",
			token: signedToken(t, jwt.MapClaims{"sub": "alice", "exp": now.Add(-time.Hour).Unix()}),
			want:  true,
		},
		{
			name:  "no exp claim",
			token: signedToken(t, jwt.MapClaims{"sub": "alice"}),
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TokenExpired(tt.token, now); got != tt.want {
				t.Errorf("TokenExpired() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClient_SendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(dao.ProgressResponse{Percentage: 40, Current: 4, Total: 10})
	}))
	t.Cleanup(srv.Close)

	cli := NewClient(context.Background(), srv.URL)
	cli.SetToken("abc123")

	progress, err := cli.GetProgress(context.Background(), 5)
	if err != nil {
		t.Fatalf("get progress: %v", err)
	}
	if progress.Percentage != 40 || progress.Total != 10 {
		t.Errorf("unexpected progress: %+v", progress)
	}
	if gotAuth != "Bearer abc123" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
}

func TestClient_ErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"detail": "video not found"})
	}))
	t.Cleanup(srv.Close)

	cli := NewClient(context.Background(), srv.URL)
	_, err := cli.GetProgress(context.Background(), 404)
	if err == nil {
		t.Fatal("expected an error for a 404 response")
	}
	if !errors.Is(err, ErrTransport) {
		t.Errorf("expected a transport error, got %v", err)
	}
	if !strings.Contains(err.Error(), "video not found") {
		t.Errorf("expected the backend detail in the error, got %v", err)
	}
}

func TestClient_Login(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/login" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req dao.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if req.Username != "alice" || req.Password != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(map[string]string{"detail": "bad credentials"})
			return
		}
		json.NewEncoder(w).Encode(dao.LoginResponse{AccessToken: "tok", TokenType: "bearer", Role: "user"})
	}))
	t.Cleanup(srv.Close)

	cli := NewClient(context.Background(), srv.URL)

	resp, err := cli.Login(context.Background(), "alice", "secret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.AccessToken != "tok" || resp.Role != "user" {
		t.Errorf("unexpected login response: %+v", resp)
	}

	if _, err := cli.Login(context.Background(), "alice", "wrong"); !errors.Is(err, ErrTransport) {
		t.Errorf("expected a transport error for bad credentials, got %v", err)
	}
}

func TestClient_OpenStream(t *testing.T) {
	payload := "data: {\"progress\": 10}\n\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/analysis/start/stream" || r.Method != http.MethodPost {
			http.NotFound(w, r)
			return
		}
		var req dao.StartAnalysisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VideoId != 5 || req.Username != "alice" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, payload)
	}))
	t.Cleanup(srv.Close)

	cli := NewClient(context.Background(), srv.URL)

	body, err := cli.OpenStream(context.Background(), 5, "alice")
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("read stream: %v", err)
	}
	if string(data) != payload {
		t.Errorf("unexpected stream body: %q", data)
	}
}

func TestClient_OpenStreamNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	cli := NewClient(context.Background(), srv.URL)
	if _, err := cli.OpenStream(context.Background(), 5, "alice"); !errors.Is(err, ErrTransport) {
		t.Errorf("expected a transport error, got %v", err)
	}
}
