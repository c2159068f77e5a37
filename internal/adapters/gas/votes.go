package gas

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"

	"github.com/vncsmyrnk/borderless/internal/core/domain"
)

const (
	fetchStatusError = "failed to fetch vote status"
	submitVoteError  = "failed to submit vote"
)

type voteStatusData struct {
	SurvivalRate int                   `json:"survival_rate"`
	TotalVoted   int                   `json:"total_voted"`
	TotalMembers int                   `json:"total_members"`
	MyStatus     domain.OptionalChoice `json:"my_status"`
	GoCount      int                   `json:"go_count"`
	MaybeCount   int                   `json:"maybe_count"`
	HomeCount    int                   `json:"home_count"`
	GoMembers    []domain.VoteMember   `json:"go_members"`
	MaybeMembers []domain.VoteMember   `json:"maybe_members"`
}

func (d voteStatusData) toDomain() *domain.VoteStatus {
	s := &domain.VoteStatus{
		SurvivalRate: d.SurvivalRate,
		TotalVoted:   d.TotalVoted,
		TotalMembers: d.TotalMembers,
		MyStatus:     d.MyStatus,
		GoCount:      d.GoCount,
		MaybeCount:   d.MaybeCount,
		HomeCount:    d.HomeCount,
		GoMembers:    d.GoMembers,
		MaybeMembers: d.MaybeMembers,
	}
	if s.GoMembers == nil {
		s.GoMembers = []domain.VoteMember{}
	}
	if s.MaybeMembers == nil {
		s.MaybeMembers = []domain.VoteMember{}
	}
	return s
}

// FetchStatus returns the aggregate vote status, scoped to selfID when given
// so that my_status is filled in.
func (c *Client) FetchStatus(ctx context.Context, selfID domain.OptionalMemberID) (*domain.VoteStatus, error) {
	if c.demo {
		return c.demoStatus(selfID), nil
	}

	params := url.Values{"action": {actionGetVoteStatus}}
	if id, ok := selfID.Get(); ok {
		params.Set("user_id", memberParam(id))
	}

	body, err := c.get(ctx, actionGetVoteStatus, params)
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(actionGetVoteStatus, body)
	if err != nil {
		return nil, err
	}
	if env.kind != envelopeSuccess {
		return nil, env.remoteError(actionGetVoteStatus, fetchStatusError)
	}
	if !env.data.IsObject() {
		return nil, &domain.RemoteError{Op: actionGetVoteStatus, Message: fetchStatusError}
	}

	var data voteStatusData
	if err := json.Unmarshal([]byte(env.data.Raw), &data); err != nil {
		c.logger.Warn("malformed vote status payload", "error", err)
		return nil, &domain.RemoteError{Op: actionGetVoteStatus, Message: fetchStatusError}
	}
	return data.toDomain(), nil
}

// SubmitVote records choice for selfID. It reports false on any failure and
// leaves the reason in LastError.
func (c *Client) SubmitVote(ctx context.Context, selfID domain.MemberID, choice domain.VoteChoice) bool {
	if !selfID.Valid() || !choice.Valid() {
		c.setLastError(submitVoteError)
		return false
	}

	if c.demo {
		c.mu.Lock()
		c.demoVotes[selfID] = choice
		c.lastError = ""
		c.mu.Unlock()
		return true
	}

	params := url.Values{
		"action":  {actionVote},
		"user_id": {memberParam(selfID)},
		"status":  {strconv.Itoa(choice.Wire())},
	}

	body, err := c.get(ctx, actionVote, params)
	if err != nil {
		c.logger.Error("failed to submit vote", "user_id", selfID, "error", err)
		c.setLastError(err.Error())
		return false
	}

	env, err := decodeEnvelope(actionVote, body)
	if err != nil {
		c.setLastError(err.Error())
		return false
	}
	if env.kind != envelopeSuccess {
		rerr := env.remoteError(actionVote, submitVoteError)
		c.logger.Warn("vote rejected", "user_id", selfID, "code", rerr.Code, "error", rerr.Message)
		c.setLastError(rerr.Message)
		return false
	}

	c.setLastError("")
	return true
}

func (c *Client) demoStatus(selfID domain.OptionalMemberID) *domain.VoteStatus {
	status := domain.DemoVoteStatus()
	if id, ok := selfID.Get(); ok {
		c.mu.Lock()
		choice, voted := c.demoVotes[id]
		c.mu.Unlock()
		if voted {
			status.MyStatus = domain.SomeChoice(choice)
		}
	}
	return status
}
