package google

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"github.com/versatil/versatil-backend/internal/platform/logger"
)

func TestDriveSourceListAndExport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/files") && r.Method == http.MethodGet:
			assert.Contains(t, r.URL.Query().Get("q"), MimeGoogleSheet)
			assert.Equal(t, "100", r.URL.Query().Get("pageSize"))
			_, _ = w.Write([]byte(`{
				"nextPageToken": "p2",
				"files": [{"id": "f1", "name": "Doc", "mimeType": "application/vnd.google-apps.document", "modifiedTime": "2024-02-01T10:00:00Z"}]
			}`))
		case strings.HasSuffix(r.URL.Path, "/files/f1/export"):
			assert.Equal(t, "text/plain", r.URL.Query().Get("mimeType"))
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("hello doc"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	ctx := context.Background()
	src, err := NewDriveSource(ctx, option.WithEndpoint(srv.URL+"/"), option.WithHTTPClient(srv.Client()))
	require.NoError(t, err)

	files, next, err := src.ListFiles(ctx, "", DefaultPageSize)
	require.NoError(t, err)
	assert.Equal(t, "p2", next)
	require.Len(t, files, 1)
	assert.Equal(t, "f1", files[0].ID)
	require.NotNil(t, files[0].ModifiedTime)
	assert.Equal(t, 2024, files[0].ModifiedTime.Year())

	body, err := src.Export(ctx, "f1", "text/plain")
	require.NoError(t, err)
	assert.Equal(t, "hello doc", string(body))
}

func TestDemoSource(t *testing.T) {
	ctx := context.Background()
	files, next, err := DemoSource{}.ListFiles(ctx, "", 100)
	require.NoError(t, err)
	assert.Empty(t, next)
	assert.NotEmpty(t, files)

	for _, f := range files {
		body, err := DemoSource{}.Export(ctx, f.ID, "text/plain")
		require.NoError(t, err)
		assert.NotEmpty(t, body)
	}
	_, err = DemoSource{}.Export(ctx, "missing", "text/plain")
	assert.Error(t, err)
}

func TestOAuthURLs(t *testing.T) {
	o := NewOAuth(logger.Nop(), OAuthConfig{ClientID: "cid", ClientSecret: "sec", RedirectBaseURL: "https://api.example.com/"})
	assert.True(t, o.Enabled())

	id := o.IdentityAuthURL("st1")
	assert.Contains(t, id, "client_id=cid")
	assert.Contains(t, id, "state=st1")
	assert.Contains(t, id, "redirect_uri=https%3A%2F%2Fapi.example.com%2Fapi%2Fauth%2Fgoogle%2Fcallback")

	dr := o.DriveAuthURL("st2")
	assert.Contains(t, dr, "access_type=offline")
	assert.Contains(t, dr, "prompt=consent")
	assert.Contains(t, dr, "drive.readonly")

	assert.False(t, NewOAuth(logger.Nop(), OAuthConfig{}).Enabled())
}

func TestReadCappedRejectsOversizedFiles(t *testing.T) {
	data, err := readCapped(strings.NewReader("12345"), "f1", 5)
	require.NoError(t, err)
	assert.Equal(t, "12345", string(data))

	data, err = readCapped(strings.NewReader("123456"), "f2", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "f2 exceeds 5 bytes")
	assert.Nil(t, data)
}
