package genai

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind is the closed set of failure categories the generation pipeline can
// surface. Every component funnels its failures through Classify before
// they reach a caller.
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindQuotaExceeded      Kind = "quota_exceeded"
	KindUnconfigured       Kind = "unconfigured"
	KindAuth               Kind = "auth_error"
	KindRateLimited        Kind = "rate_limited"
	KindServiceUnavailable Kind = "service_unavailable"
	KindTransport          Kind = "transport_error"
	KindMalformedUpstream  Kind = "malformed_upstream_response"
	KindResponseFormat     Kind = "response_format_error"
	KindResponseValidation Kind = "response_validation_error"
	KindQuotaRecord        Kind = "quota_record_error"
	KindUnknown            Kind = "unknown"
)

// Error is an internal classified cause. Detail and Reasons are diagnostic
// only and never reach end users; Violations are the user-fixable input
// problems shown verbatim.
type Error struct {
	Kind       Kind
	Detail     string
	Violations []string
	ResetTime  *time.Time
}

func (e *Error) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
	}
	return string(e.Kind)
}

func newError(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

// UserFacingError is what handlers serialize to clients: a kind, a fixed
// human-readable message, and (for input validation only) the list of
// violated rules.
type UserFacingError struct {
	Kind       Kind     `json:"kind"`
	Message    string   `json:"message"`
	Violations []string `json:"violations,omitempty"`
}

func (e *UserFacingError) Error() string {
	return e.Message
}

var messageTemplates = map[Kind]string{
	KindValidation:         "some of the provided inputs are invalid",
	KindUnconfigured:       "project generation is not configured on this server",
	KindAuth:               "the generation service rejected this server's credentials, please contact support",
	KindRateLimited:        "temporarily unavailable due to high demand, try again in a few minutes",
	KindServiceUnavailable: "the generation service is temporarily unavailable, try again shortly",
	KindTransport:          "could not reach the generation service, please try again",
	KindMalformedUpstream:  "the generation service returned an unexpected response, try again shortly",
	KindResponseFormat:     "the generated plan was invalid, please retry with a clearer description",
	KindResponseValidation: "the generated plan was invalid, please retry with a clearer description",
	KindQuotaRecord:        "your project was created but usage tracking failed, this attempt may not count toward your quota",
	KindUnknown:            "something went wrong, please try again",
}

// Classify maps any failure cause to a user-presentable error. It is total:
// causes that are not classified internal errors map to the generic
// fallback, never to a panic or a leaked raw message.
func Classify(err error) *UserFacingError {
	var cerr *Error
	if !errors.As(err, &cerr) {
		return &UserFacingError{Kind: KindUnknown, Message: messageTemplates[KindUnknown]}
	}

	switch cerr.Kind {
	case KindValidation:
		return &UserFacingError{
			Kind:       KindValidation,
			Message:    messageTemplates[KindValidation],
			Violations: cerr.Violations,
		}
	case KindQuotaExceeded:
		msg := "you have reached the weekly generation limit, try again in about a week"
		if cerr.ResetTime != nil {
			msg = fmt.Sprintf("you have reached the weekly generation limit, available again %s",
				cerr.ResetTime.UTC().Format("Jan 2 at 15:04 MST"))
		}
		return &UserFacingError{Kind: KindQuotaExceeded, Message: msg}
	default:
		msg, ok := messageTemplates[cerr.Kind]
		if !ok {
			return &UserFacingError{Kind: KindUnknown, Message: messageTemplates[KindUnknown]}
		}
		return &UserFacingError{Kind: cerr.Kind, Message: msg}
	}
}

// HTTPStatus maps an error kind to the response status the handler writes.
func HTTPStatus(kind Kind) int {
	switch kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindQuotaExceeded:
		return http.StatusTooManyRequests
	case KindUnconfigured:
		return http.StatusServiceUnavailable
	case KindAuth, KindRateLimited, KindServiceUnavailable, KindTransport,
		KindMalformedUpstream, KindResponseFormat, KindResponseValidation:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
