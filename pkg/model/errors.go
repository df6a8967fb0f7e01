package model

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for status mapping and user messaging.
type Kind string

const (
	KindValidation    Kind = "validation"
	KindRateLimited   Kind = "rate_limited"
	KindQuotaExceeded Kind = "quota_exceeded"
	KindUpstream      Kind = "upstream"
	KindTimeout       Kind = "timeout"
	KindParse         Kind = "parse"
	KindTransport     Kind = "transport"
	KindConfig        Kind = "config"
)

// Messages returned to callers of the relay.
const (
	MsgDecisionRequired = "Decision is required"
	MsgInvalidBody      = "Invalid request body"
	MsgRateLimited      = "Rate limit exceeded. Please try again later."
	MsgQuotaExceeded    = "Payment required. Please add credits."
	MsgUpstream         = "AI gateway error"
	MsgTimeout          = "AI gateway timed out. Please try again."
	MsgEmptyResponse    = "No response from AI"
	MsgParse            = "Failed to parse AI response"
	MsgInternal         = "An unexpected error occurred. Please try again later."
)

// HTTPStatus maps a kind onto the status code the relay answers with.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindValidation:
		return http.StatusBadRequest
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindQuotaExceeded:
		return http.StatusPaymentRequired
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to users; Err is
// the internal cause and is only ever logged.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func NewError(kind Kind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Err: cause}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf reports the kind of err, or "" when err is not classified.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
