package types

import "encoding/json"

type SuccessEnvelope struct {
	Data any `json:"data"`
}

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RawSuccessEnvelope defers data decoding so API clients can unmarshal into
// their own types.
type RawSuccessEnvelope struct {
	Data json.RawMessage `json:"data"`
}
