package validator

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/futig/ba-assistant/internal/config"
	"github.com/futig/ba-assistant/internal/entity"
)

const maxTitleLength = 255

// Validator checks API payloads against the configured limits.
type Validator struct {
	cfg config.APIConfig
}

func NewValidator(cfg config.APIConfig) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateTurn validates a chat turn
func (v *Validator) ValidateTurn(req *entity.TurnRequest) error {
	if strings.TrimSpace(req.Text) == "" {
		return fmt.Errorf("%w: text", entity.ErrMissingField)
	}
	if n := utf8.RuneCountInString(req.Text); n > v.cfg.MaxTurnLength {
		return fmt.Errorf("%w: text is %d characters, limit is %d", entity.ErrInvalidParameter, n, v.cfg.MaxTurnLength)
	}
	if err := req.DocType.Validate(); err != nil {
		return fmt.Errorf("%w: %v", entity.ErrInvalidParameter, err)
	}
	if req.CallbackURL != "" {
		if err := validateCallbackURL(req.CallbackURL); err != nil {
			return err
		}
	}
	if req.Publish != nil {
		return v.validatePage(req.Publish)
	}
	return nil
}

func validateCallbackURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: callback_url must be an absolute http(s) URL", entity.ErrInvalidFormat)
	}
	return nil
}

// ValidateExport validates a stateless export request
func (v *Validator) ValidateExport(req *entity.ExportRequest) error {
	return v.validateMarkdown(req.Markdown)
}

func (v *Validator) ValidatePublish(req *entity.PublishRequest) error {
	if err := v.validateMarkdown(req.Markdown); err != nil {
		return err
	}
	return v.validatePage(&req.Page)
}

func (v *Validator) ValidateDiagram(req *entity.DiagramRequest) error {
	if strings.TrimSpace(req.Source) == "" {
		return fmt.Errorf("%w: source", entity.ErrMissingField)
	}
	if len(req.Source) > v.cfg.MaxDiagramBytes {
		return fmt.Errorf("%w: source is %d bytes, limit is %d", entity.ErrInvalidParameter, len(req.Source), v.cfg.MaxDiagramBytes)
	}
	return nil
}

func (v *Validator) validateMarkdown(markdown string) error {
	if strings.TrimSpace(markdown) == "" {
		return fmt.Errorf("%w: markdown", entity.ErrMissingField)
	}
	if len(markdown) > v.cfg.MaxDocumentBytes {
		return fmt.Errorf("%w: markdown is %d bytes, limit is %d", entity.ErrInvalidParameter, len(markdown), v.cfg.MaxDocumentBytes)
	}
	return nil
}

func (v *Validator) validatePage(page *entity.PageConfig) error {
	if utf8.RuneCountInString(page.Title) > maxTitleLength {
		return fmt.Errorf("%w: page title longer than %d characters", entity.ErrInvalidParameter, maxTitleLength)
	}
	if strings.ContainsAny(page.SpaceKey, " /") {
		return fmt.Errorf("%w: space_key %q", entity.ErrInvalidFormat, page.SpaceKey)
	}
	return nil
}
