package handlers_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/bobr/forum-website/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, url string, body interface{}, token string) (*http.Response, []byte) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(http.MethodPost, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestAuthFlow_RegisterConfirmLogin(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, _ := postJSON(t, ts.APIURL("/auth/register"), map[string]string{
		"username": "carol",
		"email":    "carol@example.com",
		"password": "supersecret1",
	}, "")
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	login := map[string]string{"email": "carol@example.com", "password": "supersecret1"}

	// Login is refused until the email is confirmed.
	resp, _ = postJSON(t, ts.APIURL("/auth/login"), login, "")
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	confirmToken := ts.Mailer.LastToken("confirm")
	require.NotEmpty(t, confirmToken)

	resp, _ = postJSON(t, ts.APIURL("/auth/confirm-email/"+confirmToken), nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, data := postJSON(t, ts.APIURL("/auth/login"), login, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var authResp struct {
		User struct {
			Username string `json:"username"`
			IsActive bool   `json:"isActive"`
		} `json:"user"`
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}
	require.NoError(t, json.Unmarshal(data, &authResp))
	assert.Equal(t, "carol", authResp.User.Username)
	assert.True(t, authResp.User.IsActive)
	assert.NotEmpty(t, authResp.AccessToken)
	assert.NotEmpty(t, authResp.RefreshToken)

	// The access token works against a protected route.
	req, err := http.NewRequest(http.MethodGet, ts.APIURL("/auth/me"), nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+authResp.AccessToken)
	meResp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer meResp.Body.Close()
	assert.Equal(t, http.StatusOK, meResp.StatusCode)
}

func TestAuthFlow_RegisterConflicts(t *testing.T) {
	ts := testutil.NewTestServer(t)

	testutil.NewUserBuilder().
		WithUsername("taken").
		WithEmail("taken@example.com").
		Build(t, ts.DB.DB)

	tests := []struct {
		name     string
		username string
		email    string
	}{
		{"duplicate username", "taken", "fresh@example.com"},
		{"duplicate email", "fresh", "taken@example.com"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, _ := postJSON(t, ts.APIURL("/auth/register"), map[string]string{
				"username": tt.username,
				"email":    tt.email,
				"password": "supersecret1",
			}, "")
			assert.Equal(t, http.StatusConflict, resp.StatusCode)
		})
	}
}

func TestAuthFlow_PasswordReset(t *testing.T) {
	ts := testutil.NewTestServer(t)

	testutil.NewUserBuilder().
		WithUsername("dave").
		WithEmail("dave@example.com").
		WithPassword("oldpassword1").
		Build(t, ts.DB.DB)

	// Known and unknown addresses get the identical response.
	resp, known := postJSON(t, ts.APIURL("/auth/reset-password"), map[string]string{"email": "dave@example.com"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp, unknown := postJSON(t, ts.APIURL("/auth/reset-password"), map[string]string{"email": "nobody@example.com"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, string(known), string(unknown))

	// Only the known address produced mail.
	require.Len(t, ts.Mailer.Sent(), 1)
	resetToken := ts.Mailer.LastToken("reset")
	require.NotEmpty(t, resetToken)

	resp, _ = postJSON(t, ts.APIURL("/auth/reset-password/"+resetToken), map[string]string{"password": "newpassword1"}, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = postJSON(t, ts.APIURL("/auth/login"), map[string]string{"email": "dave@example.com", "password": "oldpassword1"}, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp, _ = postJSON(t, ts.APIURL("/auth/login"), map[string]string{"email": "dave@example.com", "password": "newpassword1"}, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthFlow_BadToken(t *testing.T) {
	ts := testutil.NewTestServer(t)

	resp, _ := postJSON(t, ts.APIURL("/auth/reset-password/not-a-token"), map[string]string{"password": "whatever123"}, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = postJSON(t, ts.APIURL("/auth/confirm-email/not-a-token"), nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
