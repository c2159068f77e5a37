package gas

import (
	"errors"

	"github.com/tidwall/gjson"
	"github.com/vncsmyrnk/borderless/internal/core/domain"
)

var errMalformedJSON = errors.New("malformed json response")

type envelopeKind int

const (
	envelopeFailure envelopeKind = iota
	envelopeSuccess
	envelopeBareArray
)

// envelope is the normalized form of every response the endpoint sends:
// {success: true, data: ...}, {success: false, error?, code?}, or a bare
// array (profiles only).
type envelope struct {
	kind    envelopeKind
	data    gjson.Result
	message string
	code    string
}

func decodeEnvelope(op string, body []byte) (envelope, error) {
	if !gjson.ValidBytes(body) {
		return envelope{}, &domain.TransportError{Op: op, Err: errMalformedJSON}
	}

	root := gjson.ParseBytes(body)
	switch {
	case root.IsArray():
		return envelope{kind: envelopeBareArray, data: root}, nil
	case !root.IsObject():
		return envelope{kind: envelopeFailure}, nil
	case root.Get("success").Type == gjson.True:
		return envelope{kind: envelopeSuccess, data: root.Get("data")}, nil
	default:
		return envelope{
			kind:    envelopeFailure,
			message: root.Get("error").String(),
			code:    root.Get("code").String(),
		}, nil
	}
}

// remoteError builds the error for a failed envelope, using fallback when the
// server gave no message.
func (e envelope) remoteError(op, fallback string) *domain.RemoteError {
	msg := e.message
	if msg == "" {
		msg = fallback
	}
	return &domain.RemoteError{Op: op, Message: msg, Code: e.code}
}
