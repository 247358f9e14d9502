package actions

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRouter(t *testing.T) (*gin.Engine, *fakeDiag) {
	t.Helper()
	svc, _, d := newTestService(t)
	r := gin.New()
	NewHandler(svc).Register(r)
	return r, d
}

func do(r http.Handler, method, path, contentType, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst))
}

func TestHandlerSubmitRSVP(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodPost, "/actions/submit-rsvp", "application/json", `{"guestId":"alex-42","response":"yes"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	decode(t, w, &env)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"id":"alex-42","name":"Alex","rsvp":"yes"}`, string(env.Data))

	w = do(r, http.MethodPost, "/actions/submit-rsvp", "application/json", `{"guestId":"nonexistent-id","response":"yes"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodPost, "/actions/submit-rsvp", "application/json", `{"guestId":"alex-42","response":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/actions/submit-rsvp", "application/json", `{"response":"yes"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlerSubmitDrinkPreference(t *testing.T) {
	r, _ := newTestRouter(t)
	w := do(r, http.MethodPost, "/actions/submit-drink-preference", "application/json", `{"guestId":"alex-42","drinkPreference":"gin"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	decode(t, w, &env)
	assert.JSONEq(t, `{"id":"alex-42","name":"Alex","rsvp":null,"drink_preference":"gin"}`, string(env.Data))
}

func TestHandlerSongSuggestionForm(t *testing.T) {
	r, _ := newTestRouter(t)

	form := url.Values{"guestId": {"alex-42"}, "title": {"Song A"}, "artist": {"Band"}}
	w := do(r, http.MethodPost, "/actions/submit-song-suggestion", "application/x-www-form-urlencoded", form.Encode())
	require.Equal(t, http.StatusCreated, w.Code)
	var res SongResult
	decode(t, w, &res)
	assert.True(t, res.Success)
	require.NotNil(t, res.Suggestion)
	assert.Equal(t, "Song A", res.Suggestion.Title)

	w = do(r, http.MethodPost, "/actions/submit-song-suggestion", "application/json", `{"guestId":"alex-42"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	decode(t, w, &res)
	assert.False(t, res.Success)
	assert.Equal(t, "Missing required fields", res.Error)

	w = do(r, http.MethodPost, "/actions/submit-song-suggestion", "application/json", `{"guestId":"ghost","title":"x"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(r, http.MethodGet, "/actions/guest-songs/alex-42", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	var env envelope
	decode(t, w, &env)
	var body struct {
		Songs []struct {
			Title string `json:"title"`
		} `json:"songs"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	require.Len(t, body.Songs, 1)
	assert.Equal(t, "Song A", body.Songs[0].Title)
}

func TestHandlerDiagnostics(t *testing.T) {
	r, d := newTestRouter(t)

	w := do(r, http.MethodGet, "/actions/check-connection", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"connected":true`)

	d.connected = false
	w = do(r, http.MethodGet, "/actions/check-connection", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(r, http.MethodPost, "/actions/setup-database", "", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, d.ensureCalls)
}
