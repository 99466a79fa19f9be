package models

import "encoding/json"

// APIResponse is the envelope every backend endpoint returns
type APIResponse[T any] struct {
	Success    bool            `json:"success"`
	Message    string          `json:"message"`
	Data       T               `json:"data,omitempty"`
	Error      json.RawMessage `json:"error,omitempty"`
	StatusCode int             `json:"statusCode,omitempty"`
}

// StatusResponse is an envelope without a meaningful data payload
type StatusResponse = APIResponse[json.RawMessage]

// CreatedResource is the payload returned when a resource is created
type CreatedResource struct {
	ID string `json:"id"`
}

type CreatedResponse = APIResponse[CreatedResource]

// SignedEnvelope wraps a signed request body
type SignedEnvelope struct {
	SignedToken string `json:"jwtData"`
}
