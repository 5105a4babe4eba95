package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"

	"github.com/versatil/versatil-backend/internal/data/repos"
	types "github.com/versatil/versatil-backend/internal/domain"
	intdomain "github.com/versatil/versatil-backend/internal/domain/integration"
	"github.com/versatil/versatil-backend/internal/platform/apierr"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/google"
	"github.com/versatil/versatil-backend/internal/platform/logger"
)

const (
	DefaultSyncConcurrency = 4
	DefaultSyncTimeout     = 5 * time.Minute
)

// PDFExtractor turns PDF bytes into plain text.
type PDFExtractor interface {
	ExtractText(ctx context.Context, mimeType string, data []byte) (string, error)
}

type SyncConfig struct {
	Concurrency int
	Timeout     time.Duration
	Now         func() time.Time
}

// SyncWorker pulls documents from an integration's source into the document table.
type SyncWorker interface {
	Sync(ctx context.Context, integrationID uuid.UUID) ([]*types.Document, error)
}

type syncWorker struct {
	log             *logger.Logger
	integrationRepo repos.IntegrationRepo
	documentRepo    repos.DocumentRepo
	connector       google.Connector
	pdf             PDFExtractor
	cfg             SyncConfig
}

// NewSyncWorker builds a worker. connector and pdf may be nil: without a
// connector only demo integrations sync, without pdf PDFs are skipped.
func NewSyncWorker(
	log *logger.Logger,
	integrationRepo repos.IntegrationRepo,
	documentRepo repos.DocumentRepo,
	connector google.Connector,
	pdf PDFExtractor,
	cfg SyncConfig,
) SyncWorker {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultSyncConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultSyncTimeout
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &syncWorker{
		log:             log.With("service", "SyncWorker"),
		integrationRepo: integrationRepo,
		documentRepo:    documentRepo,
		connector:       connector,
		pdf:             pdf,
		cfg:             cfg,
	}
}

func integrationNotFound() error {
	return apierr.NotFound("integration_not_found", "Integration not found")
}

func (w *syncWorker) Sync(ctx context.Context, integrationID uuid.UUID) ([]*types.Document, error) {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.Timeout)
	defer cancel()

	dbc := dbctx.Context{Ctx: ctx}
	integ, err := w.integrationRepo.GetByID(dbc, integrationID)
	if err != nil {
		return nil, fmt.Errorf("load integration: %w", err)
	}
	if integ == nil {
		return nil, integrationNotFound()
	}
	if integ.Status == intdomain.StatusDisconnected {
		return nil, apierr.Conflict(0, "integration_disconnected", "Integration is disconnected")
	}

	src, ts, stored, err := w.source(ctx, integ)
	if err != nil {
		return nil, w.fail(ctx, integ, err)
	}

	files, err := listAll(ctx, src)
	if err != nil {
		return nil, w.fail(ctx, integ, err)
	}

	var (
		mu   sync.Mutex
		docs = make([]*types.Document, 0, len(files))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.cfg.Concurrency)
	for _, f := range files {
		f := f
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			doc, err := w.extract(gctx, src, integ, f)
			if err != nil {
				w.log.Warn("Skipping file", "integration_id", integ.ID, "file_id", f.ID, "error", err)
				return nil
			}
			if doc == nil {
				return nil
			}
			mu.Lock()
			docs = append(docs, doc)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, w.fail(ctx, integ, err)
	}

	out, err := w.documentRepo.Upsert(dbc, docs)
	if err != nil {
		return nil, fmt.Errorf("store documents: %w", err)
	}

	now := w.cfg.Now().UTC()
	updates := map[string]any{
		"last_synced_at": now,
		"last_error":     "",
		"status":         intdomain.StatusConnected,
		"updated_at":     now,
	}
	if creds := refreshedCredentials(ts, stored); creds != nil {
		updates["credentials"] = creds
	}
	if err := w.integrationRepo.UpdateFields(dbc, integ.ID, updates); err != nil {
		return nil, fmt.Errorf("update integration: %w", err)
	}
	w.log.Info("Integration synced", "integration_id", integ.ID, "files", len(files), "documents", len(out))
	return out, nil
}

func (w *syncWorker) source(ctx context.Context, integ *types.Integration) (google.Source, oauth2.TokenSource, *oauth2.Token, error) {
	if integ.Demo {
		return google.DemoSource{}, nil, nil, nil
	}
	if w.connector == nil {
		return nil, nil, nil, errors.New("google oauth is not configured")
	}
	var tok oauth2.Token
	if err := json.Unmarshal(integ.Credentials, &tok); err != nil || tok.AccessToken == "" && tok.RefreshToken == "" {
		return nil, nil, nil, errors.New("integration has no stored credentials")
	}
	src, ts, err := w.connector.Connect(ctx, &tok)
	if err != nil {
		return nil, nil, nil, err
	}
	return src, ts, &tok, nil
}

// fail records a source failure on the integration and reports it as a provider error.
func (w *syncWorker) fail(ctx context.Context, integ *types.Integration, cause error) error {
	now := w.cfg.Now().UTC()
	// The sync context may be spent; the status write must still land.
	dbc := dbctx.Context{Ctx: context.WithoutCancel(ctx)}
	if err := w.integrationRepo.UpdateFields(dbc, integ.ID, map[string]any{
		"status":     intdomain.StatusError,
		"last_error": cause.Error(),
		"updated_at": now,
	}); err != nil {
		w.log.Error("Failed to record sync error", "integration_id", integ.ID, "error", err)
	}
	code := "provider_error"
	if errors.Is(cause, context.DeadlineExceeded) {
		code = "provider_timeout"
	}
	return apierr.Provider(code, cause)
}

func listAll(ctx context.Context, src google.Source) ([]google.File, error) {
	var (
		out   []google.File
		token string
	)
	for {
		page, next, err := src.ListFiles(ctx, token, google.DefaultPageSize)
		if err != nil {
			return nil, fmt.Errorf("list files: %w", err)
		}
		out = append(out, page...)
		if next == "" {
			return out, nil
		}
		token = next
	}
}

// extract returns nil for unsupported file kinds.
func (w *syncWorker) extract(ctx context.Context, src google.Source, integ *types.Integration, f google.File) (*types.Document, error) {
	var (
		kind types.DocumentSourceType
		text string
	)
	switch f.MimeType {
	case google.MimeGoogleDoc:
		raw, err := src.Export(ctx, f.ID, "text/plain")
		if err != nil {
			return nil, err
		}
		kind, text = intdomain.SourceGoogleDoc, string(raw)
	case google.MimeGoogleSheet:
		raw, err := src.Export(ctx, f.ID, "text/csv")
		if err != nil {
			return nil, err
		}
		flat, err := flattenCSV(raw)
		if err != nil {
			return nil, err
		}
		kind, text = intdomain.SourceGoogleSheet, flat
	case google.MimePDF:
		if w.pdf == nil {
			w.log.Debug("PDF extraction not configured", "file_id", f.ID)
			return nil, nil
		}
		raw, err := src.Download(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		extracted, err := w.pdf.ExtractText(ctx, google.MimePDF, raw)
		if err != nil {
			return nil, err
		}
		kind, text = intdomain.SourcePDF, extracted
	default:
		return nil, nil
	}

	title := strings.TrimSpace(f.Name)
	if title == "" {
		title = f.ID
	}
	return &types.Document{
		WorkspaceID:   integ.WorkspaceID,
		IntegrationID: integ.ID,
		ExternalID:    f.ID,
		Title:         title,
		Content:       strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n")),
		SourceType:    kind,
		MimeType:      f.MimeType,
		URL:           f.WebViewLink,
		LastModified:  f.ModifiedTime,
	}, nil
}

// flattenCSV renders each CSV record as one tab-separated line.
func flattenCSV(raw []byte) (string, error) {
	r := csv.NewReader(bytes.NewReader(raw))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	var lines []string
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("parse sheet csv: %w", err)
		}
		lines = append(lines, strings.Join(rec, "\t"))
	}
	return strings.Join(lines, "\n"), nil
}

// refreshedCredentials returns the token JSON when the token source minted a
// new access token during the sync, otherwise nil.
func refreshedCredentials(ts oauth2.TokenSource, stored *oauth2.Token) datatypes.JSON {
	if ts == nil || stored == nil {
		return nil
	}
	cur, err := ts.Token()
	if err != nil || cur == nil || cur.AccessToken == stored.AccessToken {
		return nil
	}
	if cur.RefreshToken == "" {
		cur.RefreshToken = stored.RefreshToken
	}
	raw, err := json.Marshal(cur)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
