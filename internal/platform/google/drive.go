package google

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const (
	MimeGoogleDoc   = "application/vnd.google-apps.document"
	MimeGoogleSheet = "application/vnd.google-apps.spreadsheet"
	MimePDF         = "application/pdf"

	DefaultPageSize = 100

	// maxExportBytes bounds a single exported or downloaded file.
	maxExportBytes = 25 << 20
)

type File struct {
	ID           string
	Name         string
	MimeType     string
	WebViewLink  string
	ModifiedTime *time.Time
}

// Source is a document store the sync worker can walk.
type Source interface {
	ListFiles(ctx context.Context, pageToken string, pageSize int64) ([]File, string, error)
	Export(ctx context.Context, fileID, mimeType string) ([]byte, error)
	Download(ctx context.Context, fileID string) ([]byte, error)
}

// Connector builds a Source from stored OAuth credentials. The returned token
// source reports the current (possibly refreshed) token.
type Connector interface {
	Connect(ctx context.Context, tok *oauth2.Token) (Source, oauth2.TokenSource, error)
}

type oauthConnector struct {
	cfg *oauth2.Config
}

func (c *oauthConnector) Connect(ctx context.Context, tok *oauth2.Token) (Source, oauth2.TokenSource, error) {
	ts := c.cfg.TokenSource(ctx, tok)
	src, err := NewDriveSource(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, nil, err
	}
	return src, ts, nil
}

type driveSource struct {
	svc *drive.Service
}

func NewDriveSource(ctx context.Context, opts ...option.ClientOption) (Source, error) {
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive client: %w", err)
	}
	return &driveSource{svc: svc}, nil
}

func supportedQuery() string {
	parts := make([]string, 0, 3)
	for _, m := range []string{MimeGoogleDoc, MimeGoogleSheet, MimePDF} {
		parts = append(parts, fmt.Sprintf("mimeType = '%s'", m))
	}
	return "trashed = false and (" + strings.Join(parts, " or ") + ")"
}

func (s *driveSource) ListFiles(ctx context.Context, pageToken string, pageSize int64) ([]File, string, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	call := s.svc.Files.List().
		Q(supportedQuery()).
		PageSize(pageSize).
		Fields("nextPageToken, files(id, name, mimeType, modifiedTime, webViewLink)").
		Context(ctx)
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	res, err := call.Do()
	if err != nil {
		return nil, "", fmt.Errorf("drive files.list: %w", err)
	}
	out := make([]File, 0, len(res.Files))
	for _, f := range res.Files {
		if f == nil {
			continue
		}
		file := File{ID: f.Id, Name: f.Name, MimeType: f.MimeType, WebViewLink: f.WebViewLink}
		if t, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
			t = t.UTC()
			file.ModifiedTime = &t
		}
		out = append(out, file)
	}
	return out, res.NextPageToken, nil
}

func (s *driveSource) Export(ctx context.Context, fileID, mimeType string) ([]byte, error) {
	resp, err := s.svc.Files.Export(fileID, mimeType).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("drive files.export %s: %w", fileID, err)
	}
	defer resp.Body.Close()
	return readCapped(resp.Body, fileID, maxExportBytes)
}

func (s *driveSource) Download(ctx context.Context, fileID string) ([]byte, error) {
	resp, err := s.svc.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("drive files.get %s: %w", fileID, err)
	}
	defer resp.Body.Close()
	return readCapped(resp.Body, fileID, maxExportBytes)
}

// readCapped fails instead of returning a truncated body.
func readCapped(r io.Reader, fileID string, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, fmt.Errorf("drive read %s: %w", fileID, err)
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("drive file %s exceeds %d bytes", fileID, limit)
	}
	return data, nil
}
