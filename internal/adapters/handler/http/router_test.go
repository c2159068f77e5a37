package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vncsmyrnk/borderless/internal/adapters/gas"
	"github.com/vncsmyrnk/borderless/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/borderless/internal/core/ports"
	"github.com/vncsmyrnk/borderless/internal/core/services"
	"github.com/vncsmyrnk/borderless/internal/polling"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakePoller struct {
	triggers atomic.Int32
	polling  atomic.Bool
}

func (p *fakePoller) IsPolling() bool { return p.polling.Load() }
func (p *fakePoller) Trigger()        { p.triggers.Add(1) }

type testEnv struct {
	handler    http.Handler
	identity   ports.IdentityService
	session    ports.VoteSession
	poller     *fakePoller
	visibility *polling.VisibilityState
}

func newTestEnv(t *testing.T, apiURL string) *testEnv {
	t.Helper()

	gateway := gas.NewClient(apiURL, gas.WithLogger(quietLogger))
	identity := services.NewIdentityService(services.NewIdentityStore(memory.NewStore(), quietLogger))
	session := services.NewVoteSession(gateway, identity, quietLogger)
	t.Cleanup(session.Close)
	profiles := services.NewProfileService(gateway, quietLogger)

	env := &testEnv{
		identity:   identity,
		session:    session,
		poller:     &fakePoller{},
		visibility: polling.NewVisibilityState(true),
	}
	env.handler = NewHandler(
		[]string{"http://localhost:5173"},
		NewProfileHandler(profiles, identity),
		NewIdentityHandler(identity, env.poller),
		NewVoteHandler(session, identity, env.poller),
		NewVisibilityHandler(env.visibility),
	)
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func TestListProfiles(t *testing.T) {
	env := newTestEnv(t, "")
	env.identity.RegisterAsMe(2)

	rec, body := env.do(t, http.MethodGet, "/api/profiles", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, body, "error")
	profiles := body["profiles"].([]any)
	require.Len(t, profiles, 6)
	for _, raw := range profiles {
		p := raw.(map[string]any)
		assert.Equal(t, p["id"] == float64(2), p["is_me"], "profile %v", p["id"])
	}
}

func TestGetQuestions(t *testing.T) {
	env := newTestEnv(t, "")

	rec, body := env.do(t, http.MethodGet, "/api/profiles/1/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, body["questions"], 2)

	rec, body = env.do(t, http.MethodGet, "/api/profiles/3/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["questions"])

	env.identity.RegisterAsMe(1)
	rec, body = env.do(t, http.MethodGet, "/api/profiles/1/questions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{}, body["questions"])

	rec, _ = env.do(t, http.MethodGet, "/api/profiles/abc/questions", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = env.do(t, http.MethodGet, "/api/profiles/99/questions", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestIdentityLifecycle(t *testing.T) {
	env := newTestEnv(t, "")

	// 1. Nobody registered
	rec, body := env.do(t, http.MethodGet, "/api/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, body["self_id"])
	assert.Equal(t, false, body["registered"])
	assert.Nil(t, body["cached_vote"])

	// 2. Register
	rec, body = env.do(t, http.MethodPut, "/api/me/4", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(4), body["self_id"])
	assert.Equal(t, true, body["registered"])
	assert.Equal(t, int32(1), env.poller.triggers.Load())

	// 3. Invalid ids are rejected and leave the registration alone
	rec, _ = env.do(t, http.MethodPut, "/api/me/0", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = env.do(t, http.MethodPut, "/api/me/x", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, env.identity.IsMe(4))

	// 4. Unregister
	rec, body = env.do(t, http.MethodDelete, "/api/me", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, body["registered"])
	assert.Equal(t, int32(2), env.poller.triggers.Load())
}

func TestSubmitVote(t *testing.T) {
	env := newTestEnv(t, "")

	rec, _ := env.do(t, http.MethodPost, "/api/votes", `{"status":1}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	env.identity.RegisterAsMe(5)

	rec, _ = env.do(t, http.MethodPost, "/api/votes", `{"status":4}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec, _ = env.do(t, http.MethodPost, "/api/votes", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := env.do(t, http.MethodPost, "/api/votes", `{"status":1}`)
	require.Equal(t, http.StatusOK, rec.Code)
	status := body["status"].(map[string]any)
	assert.Equal(t, float64(1), status["my_status"])
	assert.Equal(t, false, body["busy"])
	assert.NotContains(t, body, "error")

	_, me := env.do(t, http.MethodGet, "/api/me", "")
	assert.Equal(t, float64(1), me["cached_vote"])
}

func TestSubmitVote_RemoteFailure(t *testing.T) {
	script := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(script.Close)

	env := newTestEnv(t, script.URL)
	env.identity.RegisterAsMe(5)

	rec, body := env.do(t, http.MethodPost, "/api/votes", `{"status":3}`)

	require.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, body["error"], "500")
	assert.False(t, env.identity.CachedVote().Present())

	rec, _ = env.do(t, http.MethodDelete, "/api/votes/error", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, env.session.Snapshot().LastError)
}

func TestGetStatusAndRefresh(t *testing.T) {
	env := newTestEnv(t, "")
	env.poller.polling.Store(true)
	env.session.FetchVoteStatus(context.Background(), env.identity.CurrentSelfID())

	rec, body := env.do(t, http.MethodGet, "/api/votes/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, body["polling"])
	status := body["status"].(map[string]any)
	assert.Equal(t, float64(75), status["survival_rate"])
	assert.Len(t, status["maybe_members"], 10)
	assert.Nil(t, status["my_status"])

	rec, _ = env.do(t, http.MethodPost, "/api/votes/refresh", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, int32(1), env.poller.triggers.Load())
}

func TestSetVisibility(t *testing.T) {
	env := newTestEnv(t, "")

	rec, _ := env.do(t, http.MethodPost, "/api/visibility", `{"hidden":true}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.False(t, env.visibility.Visible())

	rec, _ = env.do(t, http.MethodPost, "/api/visibility", `{"hidden":false}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, env.visibility.Visible())

	rec, _ = env.do(t, http.MethodPost, "/api/visibility", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t, "")

	req := httptest.NewRequest(http.MethodOptions, "/api/votes", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	env.handler.ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
}
