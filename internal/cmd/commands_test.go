package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gravitrone/darknet/cli/internal/config"
	"github.com/gravitrone/darknet/cli/internal/sound"
)

const testSite = "../site/testdata/site"

// run executes sub under a root carrying the shared flags and returns its
// output.
func run(t *testing.T, sub func(*Globals) *cobra.Command, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DARKNET_CONFIG", "")

	g := &Globals{}
	root := &cobra.Command{Use: "darknet", SilenceUsage: true, SilenceErrors: true}
	g.Bind(root)
	root.AddCommand(sub(g))

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestItemsListsEntriesInOrder(t *testing.T) {
	out, err := run(t, ItemsCmd, "items", "--site", testSite)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "DATABASES")
	assert.Contains(t, lines[0], "databases/index.html")
	assert.Contains(t, lines[1], "files.html")
	assert.Contains(t, lines[2], "https://github.com")
	assert.Contains(t, lines[2], "MENU")
}

func TestItemsShowsReferenceLinks(t *testing.T) {
	out, err := run(t, ItemsCmd, "items", "databases/", "--site", testSite)
	require.NoError(t, err)
	assert.Contains(t, out, "RECORD")
	assert.Contains(t, out, "https://breacher.example.com")
}

func TestItemsMissingPageErrors(t *testing.T) {
	_, err := run(t, ItemsCmd, "items", "nope.html", "--site", testSite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page not found")
}

func TestProbeReportsOnlineAndOffline(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen = append(seen, r.Method+" "+r.URL.Path+" "+r.Header.Get("X-Requested-With"))
		mu.Unlock()
		if strings.Contains(r.URL.Path, "records") {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer relay.Close()

	out, err := run(t, ProbeCmd, "probe", "databases/index.html", "--site", testSite, "--relay", relay.URL+"/")
	require.NoError(t, err)
	assert.Contains(t, out, "● ONLINE")
	assert.Contains(t, out, "RECORDS")
	assert.Contains(t, out, "1/1 online")

	out, err = run(t, ProbeCmd, "probe", "--site", testSite, "--relay", relay.URL+"/")
	require.NoError(t, err)
	assert.Contains(t, out, "● OFFLINE")
	assert.Contains(t, out, "HTTP 403")
	assert.Contains(t, out, "0/1 online")

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Equal(t, "HEAD /https://records.example.com XMLHttpRequest", seen[0])
}

func TestProbeWithoutExternalLinks(t *testing.T) {
	out, err := run(t, ProbeCmd, "probe", "files.html", "--site", testSite)
	require.NoError(t, err)
	assert.Contains(t, out, "no external links")
}

func TestConfigInitWritesOnce(t *testing.T) {
	home := t.TempDir()
	path := filepath.Join(home, "darknet.yaml")

	g := &Globals{}
	runConfig := func(args ...string) (string, error) {
		t.Setenv("DARKNET_CONFIG", path)
		root := &cobra.Command{Use: "darknet", SilenceUsage: true, SilenceErrors: true}
		g.Bind(root)
		root.AddCommand(ConfigCmd(g))
		var out bytes.Buffer
		root.SetOut(&out)
		root.SetArgs(args)
		err := root.Execute()
		return out.String(), err
	}

	out, err := runConfig("config", "init")
	require.NoError(t, err)
	assert.Contains(t, out, path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = runConfig("config", "init")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	_, err = runConfig("config", "init", "--force")
	require.NoError(t, err)

	out, err = runConfig("config", "show", "--site", "https://archive.example")
	require.NoError(t, err)
	assert.Contains(t, out, "https://archive.example")
	assert.Contains(t, out, "poll_interval: 5m0s")

	out, err = runConfig("config", "path")
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}

func TestGlobalsDirectRelay(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("DARKNET_CONFIG", "")

	g := &Globals{Relay: DirectRelay, Site: "/srv/site"}
	cfg, err := g.Load()
	require.NoError(t, err)
	assert.Equal(t, "", cfg.RelayURL)
	assert.Equal(t, "/srv/site", cfg.SiteRoot)
	assert.Equal(t, "http://127.0.0.1:9/", NewProber(cfg).URL("http://127.0.0.1:9/"))
}

func TestEmptyRelayHeaderSendsBareRequests(t *testing.T) {
	headers := make(chan http.Header, 2)
	relay := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		headers <- r.Header.Clone()
		w.WriteHeader(http.StatusOK)
	}))
	defer relay.Close()

	cfg := config.Default()
	cfg.RelayURL = relay.URL + "/"

	NewProber(&cfg).Probe(context.Background(), "https://records.example.com")
	assert.Equal(t, "XMLHttpRequest", (<-headers).Get("X-Requested-With"))

	cfg.RelayHeader = ""
	res := NewProber(&cfg).Probe(context.Background(), "https://records.example.com")
	require.NoError(t, res.Err)
	assert.Empty(t, (<-headers).Values("X-Requested-With"))
}

func TestNewPlayerPicksBackend(t *testing.T) {
	cfg := config.Default()
	assert.IsType(t, sound.Nop{}, NewPlayer(&cfg, nil, nil))

	cfg.Bell = true
	var out bytes.Buffer
	p := NewPlayer(&cfg, &out, nil)
	p.Play(sound.CueSelect)
	assert.Equal(t, "\a", out.String())

	cfg.SoundCommand = "aplay -q"
	assert.IsType(t, &sound.Command{}, NewPlayer(&cfg, &out, nil))
}
