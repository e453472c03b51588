// Package site loads the pages of the static archive from disk or HTTP.
package site

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gravitrone/darknet/cli/internal/registry"
)

// IndexPage is the page loaded for the site root.
const IndexPage = "index.html"

// NotFoundError reports a location with no page behind it.
type NotFoundError struct {
	Location string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("page not found: %s", e.Location)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// Client reads site pages from a local directory or an HTTP base URL.
type Client struct {
	root       string
	base       *url.URL
	httpClient *http.Client
}

// NewClient creates a client for root, which is either a directory or an
// http(s) URL.
func NewClient(root string, timeout ...time.Duration) (*Client, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("site root is empty")
	}
	httpTimeout := 30 * time.Second
	if len(timeout) > 0 && timeout[0] > 0 {
		httpTimeout = timeout[0]
	}
	c := &Client{
		root:       root,
		httpClient: &http.Client{Timeout: httpTimeout},
	}
	if registry.IsExternal(root) {
		base, err := url.Parse(root)
		if err != nil {
			return nil, fmt.Errorf("parse site root: %w", err)
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		c.base = base
		return c, nil
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("site root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("site root %s is not a directory", root)
	}
	return c, nil
}

// Root returns the configured site root.
func (c *Client) Root() string {
	return c.root
}

// Resolve joins an internal target against the current location. Absolute
// targets ("/x.html") are relative to the site root.
func Resolve(current, target string) string {
	target = stripFragment(strings.TrimSpace(target))
	if target == "" {
		return Normalize(current)
	}
	if strings.HasPrefix(target, "/") {
		return Normalize(target)
	}
	dir := path.Dir(Normalize(current))
	if dir == "." {
		dir = ""
	}
	return Normalize(path.Join(dir, target))
}

// Normalize cleans a location into a root-relative slash path. The root
// itself normalizes to IndexPage.
func Normalize(location string) string {
	location = stripFragment(strings.TrimSpace(location))
	cleaned := path.Clean("/" + location)
	cleaned = strings.TrimPrefix(cleaned, "/")
	if cleaned == "" {
		return IndexPage
	}
	if strings.HasSuffix(location, "/") {
		return cleaned + "/" + IndexPage
	}
	return cleaned
}

// Load reads and parses the page at location.
func (c *Client) Load(ctx context.Context, location string) (*registry.Page, error) {
	location = Normalize(location)
	data, err := c.read(ctx, location)
	if err != nil {
		return nil, err
	}
	return registry.Parse(location, bytes.NewReader(data))
}

func (c *Client) read(ctx context.Context, location string) ([]byte, error) {
	if c.base != nil {
		return c.fetch(ctx, location)
	}
	return c.readFile(location)
}

func (c *Client) readFile(location string) ([]byte, error) {
	full := filepath.Join(c.root, filepath.FromSlash(location))
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Location: location}
		}
		return nil, fmt.Errorf("stat page: %w", err)
	}
	if info.IsDir() {
		full = filepath.Join(full, IndexPage)
	}
	data, err := os.ReadFile(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &NotFoundError{Location: location}
		}
		return nil, fmt.Errorf("read page: %w", err)
	}
	return data, nil
}

func (c *Client) fetch(ctx context.Context, location string) ([]byte, error) {
	ref, err := url.Parse(location)
	if err != nil {
		return nil, fmt.Errorf("parse location: %w", err)
	}
	target := c.base.ResolveReference(ref)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/html")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, &NotFoundError{Location: location}
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}

func stripFragment(location string) string {
	if i := strings.IndexAny(location, "#?"); i >= 0 {
		return location[:i]
	}
	return location
}
