package entity

import (
	"fmt"
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one turn of the conversation. Content is markdown.
type Message struct {
	Role        Role         `json:"role"`
	Content     string       `json:"content"`
	Attachments []Attachment `json:"attachments,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
}

// Attachment references a stored artifact produced for an assistant message.
type Attachment struct {
	Format  ResultFormat `json:"format"`
	Name    string       `json:"name"`
	Locator string       `json:"locator"`
}

// Intent is the classified purpose of a user turn. Never persisted.
type Intent string

const (
	IntentDocumentRequest  Intent = "document_request"
	IntentChatQuestion     Intent = "chat_question"
	IntentMissingDataQuery Intent = "missing_data_query"
	IntentForceProceed     Intent = "force_proceed"
)

type DraftMode string

const (
	DraftModeDocument DraftMode = "document"
	DraftModeChat     DraftMode = "chat"
)

// DocType selects which kind of document the drafting service is asked for.
type DocType string

const (
	DocTypeCombined    DocType = "combined"
	DocTypeBRD         DocType = "brd"
	DocTypeUseCase     DocType = "use-case"
	DocTypeUserStories DocType = "user-stories"
	DocTypeProcess     DocType = "process"
	DocTypeKPI         DocType = "kpi"
)

func (dt DocType) Validate() error {
	switch dt {
	case "", DocTypeCombined, DocTypeBRD, DocTypeUseCase, DocTypeUserStories, DocTypeProcess, DocTypeKPI:
		return nil
	default:
		return fmt.Errorf("unknown document type: %s", dt)
	}
}

// DraftRequest is one call to the drafting service.
type DraftRequest struct {
	Messages []Message
	Mode     DraftMode
	DocType  DocType
}

type ResultFormat string

const (
	FormatMarkdown ResultFormat = "markdown"
	FormatHTML     ResultFormat = "html"
	FormatDOCX     ResultFormat = "docx"
	FormatPDF      ResultFormat = "pdf"
	FormatXLSX     ResultFormat = "xlsx"
)

// ExportFormats are the formats produced for every finalized document, in order.
var ExportFormats = []ResultFormat{FormatHTML, FormatDOCX, FormatPDF, FormatXLSX}

func (f ResultFormat) IsValid() bool {
	switch f {
	case FormatMarkdown, FormatHTML, FormatDOCX, FormatPDF, FormatXLSX:
		return true
	default:
		return false
	}
}

// Artifact is a rendered export held by the artifact store.
type Artifact struct {
	ID          string       `json:"id"`
	Format      ResultFormat `json:"format"`
	Name        string       `json:"name"`
	ContentType string       `json:"content_type"`
	Data        []byte       `json:"-"`
	CreatedAt   time.Time    `json:"created_at"`
}

// RasterImage is a PNG produced from diagram source.
type RasterImage struct {
	Data   []byte
	Width  int
	Height int
}

// PageConfig carries per-request overrides for publishing.
type PageConfig struct {
	Title    string `json:"title,omitempty"`
	SpaceKey string `json:"space_key,omitempty"`
	ParentID string `json:"parent_id,omitempty"`
}

type PublishResult struct {
	Published bool   `json:"published"`
	URL       string `json:"url,omitempty"`
	PageID    string `json:"page_id,omitempty"`
	Error     string `json:"error,omitempty"`
}
