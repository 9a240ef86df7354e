package export

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/futig/ba-assistant/internal/document"
	"github.com/futig/ba-assistant/internal/entity"
	"github.com/futig/ba-assistant/internal/repository"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"github.com/klauspost/compress/zip"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

const (
	nameTimeLayout = "2006-01-02-15-04-05"
	defaultSlug    = "document"
	maxSlugRunes   = 48

	zipContentType = "application/zip"
)

// Bundle is a zip archive with the markdown source and every export.
type Bundle struct {
	Name        string
	ContentType string
	Data        []byte
}

// ExportUsecase renders finalized documents into downloadable artifacts.
type ExportUsecase struct {
	factory FormatterFactory
	store   ArtifactStore
	formats []entity.ResultFormat
	cache   *cache.Cache
	now     func() time.Time
}

func NewUsecase(factory FormatterFactory, store ArtifactStore, cacheTTL time.Duration) *ExportUsecase {
	return &ExportUsecase{
		factory: factory,
		store:   store,
		formats: entity.ExportFormats,
		cache:   cache.New(cacheTTL, 2*cacheTTL),
		now:     time.Now,
	}
}

// Export renders every export format and stores the results. A format that
// fails is skipped; an error is returned only when nothing was produced.
func (uc *ExportUsecase) Export(ctx context.Context, markdown string) ([]entity.Attachment, error) {
	if strings.TrimSpace(markdown) == "" {
		return nil, entity.ErrNothingToExport
	}

	key := contentKey(markdown)
	if cached, ok := uc.cache.Get(key); ok {
		ctxzap.Debug(ctx, "export served from cache", zap.String("key", key))
		return cached.([]entity.Attachment), nil
	}

	doc := document.Parse(markdown)
	stamp := uc.now()

	var (
		attachments []entity.Attachment
		errs        []error
	)
	for _, format := range uc.formats {
		artifact, err := uc.render(ctx, doc, format, stamp)
		if err != nil {
			ctxzap.Warn(ctx, "export format failed", zap.String("format", string(format)), zap.Error(err))
			errs = append(errs, err)
			continue
		}

		saved, err := uc.store.Save(ctx, artifact)
		if err != nil {
			ctxzap.Warn(ctx, "failed to store artifact", zap.String("format", string(format)), zap.Error(err))
			errs = append(errs, err)
			continue
		}

		attachments = append(attachments, entity.Attachment{
			Format:  format,
			Name:    saved.Name,
			Locator: repository.Locator(saved.ID),
		})
	}

	if len(attachments) == 0 {
		return nil, fmt.Errorf("export document: %w", errors.Join(errs...))
	}
	if len(errs) == 0 {
		uc.cache.SetDefault(key, attachments)
	}

	ctxzap.Info(ctx, "document exported",
		zap.Int("artifacts", len(attachments)),
		zap.Int("failed", len(errs)),
	)
	return attachments, nil
}

// Bundle packs the markdown source and all exports that rendered into one zip.
func (uc *ExportUsecase) Bundle(ctx context.Context, markdown string) (Bundle, error) {
	if strings.TrimSpace(markdown) == "" {
		return Bundle{}, entity.ErrNothingToExport
	}

	doc := document.Parse(markdown)
	stamp := uc.now()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	formats := append([]entity.ResultFormat{entity.FormatMarkdown}, uc.formats...)
	for _, format := range formats {
		artifact, err := uc.render(ctx, doc, format, stamp)
		if err != nil {
			ctxzap.Warn(ctx, "bundle format failed", zap.String("format", string(format)), zap.Error(err))
			continue
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     artifact.Name,
			Method:   zip.Deflate,
			Modified: stamp,
		})
		if err != nil {
			return Bundle{}, fmt.Errorf("create zip entry: %w", err)
		}
		if _, err := w.Write(artifact.Data); err != nil {
			return Bundle{}, fmt.Errorf("write zip entry: %w", err)
		}
	}

	if err := zw.Close(); err != nil {
		return Bundle{}, fmt.Errorf("close zip: %w", err)
	}

	return Bundle{
		Name:        FileName(doc.Title, stamp, ".zip"),
		ContentType: zipContentType,
		Data:        buf.Bytes(),
	}, nil
}

func (uc *ExportUsecase) render(ctx context.Context, doc *document.Document, format entity.ResultFormat, stamp time.Time) (entity.Artifact, error) {
	fmtr, err := uc.factory.Create(format)
	if err != nil {
		return entity.Artifact{}, err
	}

	data, err := fmtr.Format(ctx, doc)
	if err != nil {
		return entity.Artifact{}, fmt.Errorf("format %s: %w", format, err)
	}

	return entity.Artifact{
		Format:      format,
		Name:        FileName(doc.Title, stamp, fmtr.FileExtension()),
		ContentType: fmtr.ContentType(),
		Data:        data,
	}, nil
}

// FileName builds "<slug>-YYYY-MM-DD-HH-MM-SS<ext>" from a document title.
func FileName(title string, stamp time.Time, ext string) string {
	return Slug(title) + "-" + stamp.Format(nameTimeLayout) + ext
}

// Slug keeps letters and digits of the title, lower-cased and joined by dashes.
func Slug(title string) string {
	var (
		b     strings.Builder
		runes int
		dash  bool
	)
	for _, r := range strings.ToLower(document.PlainText(title)) {
		if runes >= maxSlugRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
				runes++
			}
			b.WriteRune(r)
			runes++
			dash = false
			continue
		}
		dash = true
	}

	if b.Len() == 0 {
		return defaultSlug
	}
	return b.String()
}

func contentKey(markdown string) string {
	sum := sha1.Sum([]byte(markdown))
	return hex.EncodeToString(sum[:])
}
