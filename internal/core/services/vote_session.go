package services

import (
	"context"
	"log/slog"
	"sync"

	"github.com/vncsmyrnk/borderless/internal/core/domain"
	"github.com/vncsmyrnk/borderless/internal/core/ports"
)

const (
	defaultFetchStatusError = "failed to fetch vote status"
	defaultSubmitVoteError  = "failed to submit vote"
)

type voteSession struct {
	gateway  ports.VoteGateway
	identity ports.IdentityService
	logger   *slog.Logger

	mu        sync.Mutex
	status    *domain.VoteStatus
	inflight  int
	lastError string
	// issued is the generation handed to the most recent fetch; applied is
	// the generation of the snapshot currently held.
	issued  uint64
	applied uint64
	closed  bool
}

func NewVoteSession(gateway ports.VoteGateway, identity ports.IdentityService, logger *slog.Logger) ports.VoteSession {
	if logger == nil {
		logger = slog.Default()
	}
	return &voteSession{
		gateway:  gateway,
		identity: identity,
		logger:   logger,
	}
}

// FetchVoteStatus replaces the held snapshot with a fresh one. On failure the
// demo snapshot is held instead and the error is recorded, so there is always
// something to render. Responses older than the held snapshot are dropped.
func (s *voteSession) FetchVoteStatus(ctx context.Context, selfID domain.OptionalMemberID) {
	gen := s.begin(true)
	defer s.end()

	status, err := s.gateway.FetchStatus(ctx, selfID)
	if err == nil && status == nil {
		err = &domain.RemoteError{Op: "getVoteStatus", Message: defaultFetchStatusError}
	}
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = defaultFetchStatusError
		}
		s.logger.Error("failed to fetch vote status", "error", err)
		s.apply(gen, domain.DemoVoteStatus(), msg)
		return
	}

	if !s.apply(gen, status, "") {
		s.logger.Debug("discarding stale vote status", "generation", gen)
		return
	}

	if choice, ok := status.MyStatus.Get(); ok {
		if id, ok := selfID.Get(); ok {
			s.identity.CacheVote(id, choice)
		}
	}
}

// SubmitVote sends choice for selfID and, once accepted, refreshes the
// snapshot so it includes the new vote. It does nothing without a self id.
func (s *voteSession) SubmitVote(ctx context.Context, selfID domain.OptionalMemberID, choice domain.VoteChoice) bool {
	id, ok := selfID.Get()
	if !ok {
		return false
	}

	s.begin(false)
	defer s.end()

	if !choice.Valid() {
		s.setError(domain.ErrInvalidChoice.Error())
		return false
	}

	if !s.gateway.SubmitVote(ctx, id, choice) {
		msg := s.gateway.LastError()
		if msg == "" {
			msg = defaultSubmitVoteError
		}
		s.logger.Error("failed to submit vote", "user_id", id, "status", choice.Wire(), "error", msg)
		s.setError(msg)
		return false
	}

	s.identity.CacheVote(id, choice)
	s.FetchVoteStatus(ctx, selfID)
	return true
}

func (s *voteSession) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastError = ""
}

func (s *voteSession) Snapshot() ports.VoteSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ports.VoteSnapshot{
		Status:    s.status.Clone(),
		IsBusy:    s.inflight > 0,
		LastError: s.lastError,
	}
}

// Close stops the session from applying results that resolve afterwards.
func (s *voteSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *voteSession) begin(fetch bool) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight++
	s.lastError = ""
	if fetch {
		s.issued++
	}
	return s.issued
}

func (s *voteSession) end() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
}

func (s *voteSession) apply(gen uint64, status *domain.VoteStatus, errMsg string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || gen <= s.applied {
		return false
	}
	s.status = status.Clone()
	s.applied = gen
	if errMsg != "" {
		s.lastError = errMsg
	}
	return true
}

func (s *voteSession) setError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.lastError = msg
	}
}
