package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"gorm.io/datatypes"

	"github.com/versatil/versatil-backend/internal/data/repos/testutil"
	types "github.com/versatil/versatil-backend/internal/domain"
	intdomain "github.com/versatil/versatil-backend/internal/domain/integration"
	"github.com/versatil/versatil-backend/internal/platform/dbctx"
	"github.com/versatil/versatil-backend/internal/platform/google"
)

type fakeSource struct {
	pages   [][]google.File
	content map[string]string
	listErr error
}

func (s *fakeSource) ListFiles(ctx context.Context, pageToken string, pageSize int64) ([]google.File, string, error) {
	if s.listErr != nil {
		return nil, "", s.listErr
	}
	idx := 0
	if pageToken != "" {
		idx = int(pageToken[0] - '0')
	}
	next := ""
	if idx+1 < len(s.pages) {
		next = string(rune('0' + idx + 1))
	}
	return s.pages[idx], next, nil
}

func (s *fakeSource) Export(ctx context.Context, fileID, mimeType string) ([]byte, error) {
	c, ok := s.content[fileID]
	if !ok {
		return nil, errors.New("export failed")
	}
	return []byte(c), nil
}

func (s *fakeSource) Download(ctx context.Context, fileID string) ([]byte, error) {
	return s.Export(ctx, fileID, "")
}

type fakeConnector struct {
	src     google.Source
	current *oauth2.Token
	got     *oauth2.Token
}

func (c *fakeConnector) Connect(ctx context.Context, tok *oauth2.Token) (google.Source, oauth2.TokenSource, error) {
	c.got = tok
	return c.src, oauth2.StaticTokenSource(c.current), nil
}

type fakePDF struct{}

func (fakePDF) ExtractText(ctx context.Context, mimeType string, data []byte) (string, error) {
	return "pdf:" + string(data), nil
}

func seedIntegration(t *testing.T, h *harness, u *AuthResult, demo bool) *types.Integration {
	t.Helper()
	creds, _ := json.Marshal(&oauth2.Token{AccessToken: "old", RefreshToken: "refresh"})
	in := &types.Integration{
		WorkspaceID: u.Workspace.ID,
		UserID:      u.User.ID,
		Provider:    intdomain.ProviderGoogleDrive,
		Credentials: datatypes.JSON(creds),
		Demo:        demo,
	}
	out, err := h.repos.integrations.Upsert(dbctx.Context{Ctx: context.Background()}, in)
	require.NoError(t, err)
	return out
}

func TestFlattenCSV(t *testing.T) {
	out, err := flattenCSV([]byte("a,b\n\"x, y\",2\nlast\n"))
	require.NoError(t, err)
	assert.Equal(t, "a\tb\nx, y\t2\nlast", out)
}

func TestSyncWorker_PartialFailureAndRefresh(t *testing.T) {
	modified := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	src := &fakeSource{
		pages: [][]google.File{
			{
				{ID: "doc-1", Name: "Notes", MimeType: google.MimeGoogleDoc, ModifiedTime: &modified},
				{ID: "sheet-1", Name: "Budget", MimeType: google.MimeGoogleSheet},
			},
			{
				{ID: "pdf-1", Name: "Contract", MimeType: google.MimePDF},
				{ID: "broken", Name: "Broken", MimeType: google.MimeGoogleDoc},
				{ID: "img-1", Name: "Photo", MimeType: "image/png"},
			},
		},
		content: map[string]string{
			"doc-1":   "hello\r\nworld",
			"sheet-1": "item,cost\nrent,100\n",
			"pdf-1":   "bytes",
			"img-1":   "png",
		},
	}
	conn := &fakeConnector{src: src, current: &oauth2.Token{AccessToken: "new"}}
	h := newHarness(t, harnessOpts{connector: conn})
	u := h.register(t, "alice@example.com", "Alice", "")
	integ := seedIntegration(t, h, u, false)

	worker := NewSyncWorker(testutil.Logger(t), h.repos.integrations, h.repos.documents, conn, fakePDF{}, SyncConfig{Concurrency: 2})
	docs, err := worker.Sync(context.Background(), integ.ID)
	require.NoError(t, err)
	require.Equal(t, "old", conn.got.AccessToken)

	byExt := map[string]*types.Document{}
	for _, d := range docs {
		byExt[d.ExternalID] = d
	}
	require.Len(t, byExt, 3)
	assert.Equal(t, "hello\nworld", byExt["doc-1"].Content)
	assert.Equal(t, intdomain.SourceGoogleDoc, byExt["doc-1"].SourceType)
	require.NotNil(t, byExt["doc-1"].LastModified)
	assert.True(t, modified.Equal(*byExt["doc-1"].LastModified))
	assert.Equal(t, "item\tcost\nrent\t100", byExt["sheet-1"].Content)
	assert.Equal(t, "pdf:bytes", byExt["pdf-1"].Content)

	stored, err := h.repos.integrations.GetByID(dbctx.Context{Ctx: context.Background()}, integ.ID)
	require.NoError(t, err)
	assert.NotNil(t, stored.LastSyncedAt)
	assert.Equal(t, intdomain.StatusConnected, stored.Status)
	var tok oauth2.Token
	require.NoError(t, json.Unmarshal(stored.Credentials, &tok))
	assert.Equal(t, "new", tok.AccessToken)
	assert.Equal(t, "refresh", tok.RefreshToken)

	// A second run updates in place.
	src.content["doc-1"] = "changed"
	docs, err = worker.Sync(context.Background(), integ.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 3)
	var n int64
	require.NoError(t, h.db.Table("documents").Count(&n).Error)
	assert.Equal(t, int64(3), n)
}

func TestSyncWorker_ListFailureMarksError(t *testing.T) {
	conn := &fakeConnector{src: &fakeSource{listErr: errors.New("token revoked")}, current: &oauth2.Token{AccessToken: "old"}}
	h := newHarness(t, harnessOpts{connector: conn})
	u := h.register(t, "alice@example.com", "Alice", "")
	integ := seedIntegration(t, h, u, false)

	_, err := h.integ.Sync(context.Background(), u.User.ID, integ.ID)
	requireAPIErr(t, err, http.StatusBadGateway, "provider_error")

	stored, err := h.repos.integrations.GetByID(dbctx.Context{Ctx: context.Background()}, integ.ID)
	require.NoError(t, err)
	assert.Equal(t, intdomain.StatusError, stored.Status)
	assert.Contains(t, stored.LastError, "token revoked")
}

func TestSyncWorker_Demo(t *testing.T) {
	h := newHarness(t, harnessOpts{})
	u := h.register(t, "alice@example.com", "Alice", "")
	integ := seedIntegration(t, h, u, true)

	docs, err := h.integ.Sync(context.Background(), u.User.ID, integ.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	list, err := h.integ.ListDocuments(context.Background(), u.User.ID, u.Workspace.ID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Empty(t, list[0].Content, "listing omits content")

	full, err := h.integ.GetDocument(context.Background(), u.User.ID, u.Workspace.ID, list[0].ID)
	require.NoError(t, err)
	assert.NotEmpty(t, full.Content)
}
