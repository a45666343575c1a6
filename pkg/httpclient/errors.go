package httpclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	apperrors "github.com/masumislambadsha/zavisoft/pkg/errors"
)

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// StatusError describes a non-2xx response from an upstream API.
type StatusError struct {
	Service    string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s returned status %d", e.Service, e.StatusCode)
	}
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Message)
}

// upstreamErrorBody covers the two common JSON error shapes: a NestJS style
// {"statusCode":400,"message":"...","error":"Bad Request"} where message may
// also be a list, and {"error":{"code":"...","message":"..."}}.
type upstreamErrorBody struct {
	Message json.RawMessage `json:"message"`
	Error   json.RawMessage `json:"error"`
}

// ParseResponseError reads the body of a non-2xx response and returns a
// *StatusError carrying the upstream's message when one can be extracted.
// The body is consumed and closed.
func ParseResponseError(resp *http.Response, service string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &StatusError{Service: service, StatusCode: resp.StatusCode, Message: "failed to read body: " + err.Error()}
	}

	return &StatusError{Service: service, StatusCode: resp.StatusCode, Message: extractMessage(body)}
}

func extractMessage(body []byte) string {
	var parsed upstreamErrorBody
	if json.Unmarshal(body, &parsed) != nil {
		return strings.TrimSpace(string(body))
	}

	if msg := rawToText(parsed.Message); msg != "" {
		return msg
	}

	var nested struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(parsed.Error, &nested) == nil && nested.Message != "" {
		return nested.Message
	}
	return rawToText(parsed.Error)
}

func rawToText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var list []string
	if json.Unmarshal(raw, &list) == nil {
		return strings.Join(list, "; ")
	}
	return ""
}

// ToAppError translates a transport or status failure into an AppError.
// 404 becomes NotFound for resource/id, other 4xx become InvalidInput and
// everything else (5xx, network, open breaker) becomes Upstream.
func ToAppError(err error, resource, id string) error {
	if err == nil {
		return nil
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		switch {
		case statusErr.StatusCode == http.StatusNotFound:
			return apperrors.NotFound(resource, id)
		case IsClientError(statusErr.StatusCode):
			return apperrors.InvalidInput(fmt.Sprintf("%s: %s", statusErr.Service, statusErr.Message))
		default:
			return apperrors.Upstream(statusErr.Service, err)
		}
	}

	return apperrors.Upstream(resource, err)
}

// IsClientError returns true if the HTTP status code is a 4xx client error.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
