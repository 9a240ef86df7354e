package entity

// CallbackEventType represents the type of callback event
type CallbackEventType string

const (
	CallbackEventTypeTurnResult CallbackEventType = "turnResult"
	CallbackEventTypeError      CallbackEventType = "error"
)

// CallbackEvent is posted to the callback_url of an asynchronous turn
type CallbackEvent struct {
	Event     CallbackEventType `json:"event"`
	SessionID string            `json:"session_id"`
	Timestamp string            `json:"timestamp"` // ISO-8601 UTC
	Data      any               `json:"data"`
}

// CallbackErrorData represents data for error event
type CallbackErrorData struct {
	Error CallbackErrorDetails `json:"error"`
}

type CallbackErrorDetails struct {
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
