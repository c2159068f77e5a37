package gas

import (
	"context"
	"encoding/json"

	"github.com/vncsmyrnk/borderless/internal/core/domain"
)

const (
	actionProfiles     = "getProfiles"
	invalidFormatError = "invalid response format"
)

// FetchProfiles returns the attendee roster. The endpoint answers either with
// {success: true, data: [...]} or with a bare array.
func (c *Client) FetchProfiles(ctx context.Context) ([]domain.Profile, error) {
	if c.demo {
		return domain.DemoProfiles(), nil
	}

	body, err := c.get(ctx, actionProfiles, nil)
	if err != nil {
		return nil, err
	}

	env, err := decodeEnvelope(actionProfiles, body)
	if err != nil {
		return nil, err
	}

	var raw string
	switch {
	case env.kind == envelopeBareArray:
		raw = env.data.Raw
	case env.kind == envelopeSuccess && env.data.IsArray():
		raw = env.data.Raw
	default:
		return nil, env.remoteError(actionProfiles, invalidFormatError)
	}

	var profiles []domain.Profile
	if err := json.Unmarshal([]byte(raw), &profiles); err != nil {
		c.logger.Warn("malformed profiles payload", "error", err)
		return nil, &domain.RemoteError{Op: actionProfiles, Message: invalidFormatError}
	}
	c.logger.Debug("loaded profiles from script endpoint", "count", len(profiles))
	return profiles, nil
}
