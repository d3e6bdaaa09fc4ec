package sheets

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestCallbackHandler(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantCode   string
		wantStatus int
		wantErr    bool
	}{
		{name: "valid", query: "?state=s1&code=abc", wantCode: "abc", wantStatus: http.StatusOK},
		{name: "state mismatch", query: "?state=other&code=abc", wantStatus: http.StatusBadRequest, wantErr: true},
		{name: "missing code", query: "?state=s1", wantStatus: http.StatusBadRequest, wantErr: true},
		{name: "denied", query: "?error=access_denied&state=s1", wantStatus: http.StatusBadRequest, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			codes := make(chan string, 1)
			errs := make(chan error, 1)
			h := callbackHandler("s1", codes, errs)

			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/callback"+tt.query, nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantErr {
				assert.Len(t, errs, 1)
				assert.Empty(t, codes)
				return
			}
			require.Len(t, codes, 1)
			assert.Equal(t, tt.wantCode, <-codes)
		})
	}
}

func TestTokenFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
	}

	require.NoError(t, saveToken(path, token))

	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, token.AccessToken, loaded.AccessToken)
	assert.Equal(t, token.RefreshToken, loaded.RefreshToken)
	assert.True(t, token.Expiry.Equal(loaded.Expiry))
}

func TestRefreshTokenIfNeeded_ValidTokenUnchanged(t *testing.T) {
	token := &oauth2.Token{AccessToken: "still-good", Expiry: time.Now().Add(time.Hour)}

	got, err := RefreshTokenIfNeeded(context.Background(), OAuth2Config{}, token)
	require.NoError(t, err)
	assert.Same(t, token, got)
}

func TestGetOrCreateToken_LoadsSavedToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, saveToken(path, &oauth2.Token{AccessToken: "saved", Expiry: time.Now().Add(time.Hour)}))

	got, err := GetOrCreateToken(context.Background(), OAuth2Config{TokenFile: path}, func(string) {
		t.Fatal("interactive flow should not start")
	})
	require.NoError(t, err)
	assert.Equal(t, "saved", got.AccessToken)
}
