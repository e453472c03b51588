package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "index.html", Normalize(""))
	assert.Equal(t, "index.html", Normalize("/"))
	assert.Equal(t, "files.html", Normalize("/files.html"))
	assert.Equal(t, "databases/index.html", Normalize("databases/"))
	assert.Equal(t, "x.html", Normalize("a/../../x.html"))
	assert.Equal(t, "files.html", Normalize("files.html#top"))
}

func TestResolve(t *testing.T) {
	assert.Equal(t, "files.html", Resolve("index.html", "files.html"))
	assert.Equal(t, "databases/index.html", Resolve("index.html", "databases/index.html"))
	assert.Equal(t, "files.html", Resolve("databases/index.html", "../files.html"))
	assert.Equal(t, "databases/records.html", Resolve("databases/index.html", "records.html"))
	assert.Equal(t, "index.html", Resolve("databases/index.html", "/index.html"))
	assert.Equal(t, "databases/index.html", Resolve("databases/index.html", ""))
}

func TestNewClientRejectsBadRoots(t *testing.T) {
	_, err := NewClient("")
	assert.Error(t, err)

	_, err = NewClient(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(file, []byte("<html></html>"), 0o644))
	_, err = NewClient(file)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not a directory")
}

func TestLoadFromDirectory(t *testing.T) {
	client, err := NewClient("testdata/site")
	require.NoError(t, err)

	page, err := client.Load(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, "index.html", page.Location)
	assert.Equal(t, "DARKNET ARCHIVE", page.Title)
	require.Len(t, page.Items, 3)
	assert.Equal(t, "databases/index.html", page.Items[0].Target)
}

func TestLoadDirectoryLocationUsesIndex(t *testing.T) {
	client, err := NewClient("testdata/site")
	require.NoError(t, err)

	page, err := client.Load(context.Background(), "databases/")
	require.NoError(t, err)
	assert.Equal(t, "DATABASES", page.Title)
	require.Len(t, page.Links, 1)
}

func TestLoadMissingPageIsNotFound(t *testing.T) {
	client, err := NewClient("testdata/site")
	require.NoError(t, err)

	_, err = client.Load(context.Background(), "nope.html")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "nope.html")
}

func TestLoadOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		switch r.URL.Path {
		case "/archive/files.html":
			w.Write([]byte(`<html><head><title>FILES</title></head><body>
				<div class="file-card" data-url="a.txt">a</div></body></html>`))
		case "/archive/broken.html":
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte("boom"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(srv.URL + "/archive")
	require.NoError(t, err)

	page, err := client.Load(context.Background(), "files.html")
	require.NoError(t, err)
	assert.Equal(t, "FILES", page.Title)
	require.Len(t, page.Items, 1)

	_, err = client.Load(context.Background(), "missing.html")
	assert.True(t, IsNotFound(err))

	_, err = client.Load(context.Background(), "broken.html")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 500: boom")
}
