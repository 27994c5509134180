// Package types holds the JSON envelopes every API response is wrapped in.
package types

// RequestIDHeader carries the id tying a counter request to its log entries.
const RequestIDHeader = "X-Request-Id"

// SuccessEnvelope wraps a handler result. Warning is set when the data is
// current but a side effect, such as a rate refresh, did not go through.
type SuccessEnvelope struct {
	Data    any    `json:"data"`
	Warning string `json:"warning,omitempty"`
}

type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorEnvelope echoes the request id so the counter can quote it when
// reporting a failed sale.
type ErrorEnvelope struct {
	Error     ErrorBody `json:"error"`
	RequestID string    `json:"request_id,omitempty"`
}
