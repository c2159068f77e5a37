package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/vncsmyrnk/borderless/internal/core/domain"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeKV struct {
	mu      sync.Mutex
	values  map[string]string
	failGet bool
	failSet bool
	failDel bool
}

func newFakeKV() *fakeKV {
	return &fakeKV{values: make(map[string]string)}
}

var errBackend = errors.New("quota exceeded")

func (kv *fakeKV) Get(_ context.Context, key string) (string, bool, error) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.failGet {
		return "", false, errBackend
	}
	v, ok := kv.values[key]
	return v, ok, nil
}

func (kv *fakeKV) Set(_ context.Context, key, value string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.failSet {
		return errBackend
	}
	kv.values[key] = value
	return nil
}

func (kv *fakeKV) Delete(_ context.Context, key string) error {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	if kv.failDel {
		return errBackend
	}
	delete(kv.values, key)
	return nil
}

func (kv *fakeKV) Close() error { return nil }

func (kv *fakeKV) raw(key string) (string, bool) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	v, ok := kv.values[key]
	return v, ok
}

type fetchCall struct {
	selfID domain.OptionalMemberID
}

type fakeGateway struct {
	mu          sync.Mutex
	fetchCalls  []fetchCall
	submitCalls int
	status      *domain.VoteStatus
	fetchErr    error
	submitOK    bool
	submitErr   string
	// onFetch, when set, runs before FetchStatus returns.
	onFetch func(call int)
	// statusFor, when set, overrides status per call number.
	statusFor func(call int) *domain.VoteStatus
}

func (g *fakeGateway) FetchStatus(_ context.Context, selfID domain.OptionalMemberID) (*domain.VoteStatus, error) {
	g.mu.Lock()
	g.fetchCalls = append(g.fetchCalls, fetchCall{selfID: selfID})
	n := len(g.fetchCalls)
	status, err, hook := g.status, g.fetchErr, g.onFetch
	if g.statusFor != nil {
		status = g.statusFor(n)
	}
	g.mu.Unlock()

	if hook != nil {
		hook(n)
	}
	if err != nil {
		return nil, err
	}
	return status.Clone(), nil
}

func (g *fakeGateway) SubmitVote(_ context.Context, _ domain.MemberID, _ domain.VoteChoice) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.submitCalls++
	return g.submitOK
}

func (g *fakeGateway) LastError() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.submitErr
}

func (g *fakeGateway) fetchCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.fetchCalls)
}

type fakeProfileSource struct {
	profiles []domain.Profile
	err      error
	calls    int
}

func (s *fakeProfileSource) FetchProfiles(context.Context) ([]domain.Profile, error) {
	s.calls++
	return s.profiles, s.err
}
