package services

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/vncsmyrnk/borderless/internal/core/domain"
	"github.com/vncsmyrnk/borderless/internal/core/ports"
)

const (
	selfIDKey     = "borderless_user_id"
	cachedVoteKey = "borderless_vote_status"

	defaultStoreTimeout = 2 * time.Second
)

type identityStore struct {
	kv      ports.KeyValueStore
	timeout time.Duration
	logger  *slog.Logger
}

// NewIdentityStore wraps kv. Backend errors are logged and swallowed.
func NewIdentityStore(kv ports.KeyValueStore, logger *slog.Logger) ports.IdentityStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &identityStore{
		kv:      kv,
		timeout: defaultStoreTimeout,
		logger:  logger,
	}
}

func (s *identityStore) GetSelfID() domain.OptionalMemberID {
	raw, ok := s.read(selfIDKey)
	if !ok {
		return domain.NoMember()
	}
	id, err := domain.ParseMemberID(raw)
	if err != nil {
		s.logger.Warn("ignoring unreadable self id", "value", raw)
		return domain.NoMember()
	}
	return domain.SomeMember(id)
}

func (s *identityStore) SetSelfID(id domain.MemberID) {
	s.write(selfIDKey, id.String())
}

func (s *identityStore) ClearSelfID() {
	s.remove(selfIDKey)
}

func (s *identityStore) GetCachedVote() domain.OptionalChoice {
	raw, ok := s.read(cachedVoteKey)
	if !ok {
		return domain.NoChoice()
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		s.logger.Warn("ignoring unreadable cached vote", "value", raw)
		return domain.NoChoice()
	}
	c, err := domain.ParseChoiceWire(v)
	if err != nil {
		s.logger.Warn("ignoring unreadable cached vote", "value", raw)
		return domain.NoChoice()
	}
	return domain.SomeChoice(c)
}

func (s *identityStore) SetCachedVote(choice domain.VoteChoice) {
	if !choice.Valid() {
		return
	}
	s.write(cachedVoteKey, strconv.Itoa(choice.Wire()))
}

func (s *identityStore) ClearCachedVote() {
	s.remove(cachedVoteKey)
}

func (s *identityStore) ClearAll() {
	s.ClearSelfID()
	s.ClearCachedVote()
}

func (s *identityStore) read(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	value, found, err := s.kv.Get(ctx, key)
	if err != nil {
		s.logger.Warn("failed to read from identity store", "key", key, "error", err)
		return "", false
	}
	if !found || value == "" {
		return "", false
	}
	return value, true
}

func (s *identityStore) write(key, value string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.kv.Set(ctx, key, value); err != nil {
		s.logger.Warn("failed to save to identity store", "key", key, "error", err)
	}
}

func (s *identityStore) remove(key string) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if err := s.kv.Delete(ctx, key); err != nil {
		s.logger.Warn("failed to clear from identity store", "key", key, "error", err)
	}
}
