package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTokenClient(srv *httptest.Server) *TokenClient {
	return &TokenClient{
		Endpoint:   srv.URL,
		ClientID:   "client-123",
		HTTPClient: srv.Client(),
		Timeout:    time.Second,
	}
}

func TestTokenClientExchangeCode(t *testing.T) {
	t.Run("sends authorization_code grant", func(t *testing.T) {
		var got map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(`{"access_token":"T","expires_in":3600,"refresh_token":"R","refresh_token_expires_in":86400}`))
		}))
		defer srv.Close()

		resp, err := newTokenClient(srv).ExchangeCode(context.Background(), "abc", "verifier-value", "https://shop.example/callback")
		require.NoError(t, err)

		require.Equal(t, "authorization_code", got["grant_type"])
		require.Equal(t, "client-123", got["client_id"])
		require.Equal(t, "abc", got["code"])
		require.Equal(t, "verifier-value", got["code_verifier"])
		require.Equal(t, "https://shop.example/callback", got["redirect_uri"])

		require.Equal(t, "T", resp.AccessToken)
		require.Equal(t, int64(3600), resp.ExpiresIn)
		require.Equal(t, "R", resp.RefreshToken)
		require.Equal(t, int64(86400), resp.RefreshTokenExpiresIn)
	})

	t.Run("rejects missing inputs", func(t *testing.T) {
		c := &TokenClient{Endpoint: "https://unused.example", ClientID: "client-123"}

		_, err := c.ExchangeCode(context.Background(), "", "v", "https://shop.example/callback")
		require.Error(t, err)
		_, err = c.ExchangeCode(context.Background(), "abc", "", "https://shop.example/callback")
		require.Error(t, err)
		_, err = c.ExchangeCode(context.Background(), "abc", "v", "")
		require.Error(t, err)
	})

	t.Run("2xx without access token is an error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"expires_in":3600}`))
		}))
		defer srv.Close()

		_, err := newTokenClient(srv).ExchangeCode(context.Background(), "abc", "v", "https://shop.example/callback")
		require.Error(t, err)
		require.Contains(t, err.Error(), "missing access_token")
	})
}

func TestTokenClientRefresh(t *testing.T) {
	t.Run("sends refresh_token grant", func(t *testing.T) {
		var got map[string]string
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			w.Write([]byte(`{"access_token":"T2","expires_in":1800}`))
		}))
		defer srv.Close()

		resp, err := newTokenClient(srv).Refresh(context.Background(), "refresh-1")
		require.NoError(t, err)

		require.Equal(t, "refresh_token", got["grant_type"])
		require.Equal(t, "client-123", got["client_id"])
		require.Equal(t, "refresh-1", got["refresh_token"])
		require.Empty(t, got["code"])
		require.Empty(t, got["redirect_uri"])

		require.Equal(t, "T2", resp.AccessToken)
		require.Empty(t, resp.RefreshToken)
	})

	t.Run("empty refresh token rejected locally", func(t *testing.T) {
		c := &TokenClient{Endpoint: "https://unused.example", ClientID: "client-123"}
		_, err := c.Refresh(context.Background(), "")
		require.Error(t, err)
	})

	t.Run("provider 400 surfaces as transport error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error":"invalid_grant"}`))
		}))
		defer srv.Close()

		_, err := newTokenClient(srv).Refresh(context.Background(), "stale")
		require.Error(t, err)

		var te *TransportError
		require.ErrorAs(t, err, &te)
		require.Equal(t, http.StatusBadRequest, te.StatusCode)
	})
}
