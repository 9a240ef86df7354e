package entity

import "time"

type StartSessionResponse struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TurnRequest with CallbackURL set is handled in the background and the
// result is posted to that URL.
type TurnRequest struct {
	Text        string      `json:"text"`
	DocType     DocType     `json:"doc_type,omitempty"`
	Publish     *PageConfig `json:"publish,omitempty"`
	CallbackURL string      `json:"callback_url,omitempty"`
}

type AcceptedResponse struct {
	Status    string `json:"status"`
	SessionID string `json:"session_id"`
	RequestID string `json:"request_id,omitempty"`
}

type TurnResponse struct {
	Intent      Intent         `json:"intent"`
	Decision    Decision       `json:"decision,omitempty"`
	Message     Message        `json:"message"`
	Publication *PublishResult `json:"publication,omitempty"`
}

type HistoryResponse struct {
	SessionID string    `json:"session_id"`
	Messages  []Message `json:"messages"`
}

// ExportRequest with Bundle set returns a zip instead of artifact links.
type ExportRequest struct {
	Markdown string `json:"markdown"`
	Bundle   bool   `json:"bundle,omitempty"`
}

type ExportResponse struct {
	Attachments []Attachment `json:"attachments"`
}

type PublishRequest struct {
	Markdown string     `json:"markdown"`
	Page     PageConfig `json:"page"`
}

type DiagramRequest struct {
	Source string `json:"source"`
}

type DiagramResponse struct {
	SVG string `json:"svg"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
