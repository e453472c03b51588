// Package probe checks whether the site's external targets are reachable.
package probe

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// DefaultRelay is the cross-origin relay the site routes its probes through.
const DefaultRelay = "https://cors-anywhere.herokuapp.com/"

// Default probe request settings.
const (
	DefaultHeaderName  = "X-Requested-With"
	DefaultHeaderValue = "XMLHttpRequest"
	DefaultTimeout     = 10 * time.Second
)

// Status is the reachability of one target.
type Status int

const (
	StatusUnknown Status = iota
	StatusOnline
	StatusOffline
)

// Label returns the indicator text for s.
func (s Status) Label() string {
	switch s {
	case StatusOnline:
		return "● ONLINE"
	case StatusOffline:
		return "● OFFLINE"
	}
	return ""
}

// Class returns the indicator style name for s.
func (s Status) Class() string {
	switch s {
	case StatusOnline:
		return "status-online"
	case StatusOffline:
		return "status-offline"
	}
	return ""
}

func (s Status) String() string {
	switch s {
	case StatusOnline:
		return "online"
	case StatusOffline:
		return "offline"
	}
	return "unknown"
}

// Result is the outcome of one probe.
type Result struct {
	Target string
	// Item is the index of the selectable item carrying Target, or -1.
	Item    int
	Status  Status
	Code    int
	Err     error
	Checked time.Time
}

// ProberOptions configures the probe request.
type ProberOptions struct {
	// Relay is prefixed to every target. Empty probes targets directly.
	Relay       string
	HeaderName  string
	HeaderValue string
	// NoHeader sends bare requests. HeaderName and HeaderValue are ignored.
	NoHeader bool
	Timeout  time.Duration
}

// Prober issues HEAD requests through the relay.
type Prober struct {
	relay       string
	headerName  string
	headerValue string
	httpClient  *http.Client
	now         func() time.Time
}

// NewProber creates a prober. Empty header fields take the defaults unless
// NoHeader is set.
func NewProber(opts ProberOptions) *Prober {
	switch {
	case opts.NoHeader:
		opts.HeaderName, opts.HeaderValue = "", ""
	case opts.HeaderName == "":
		opts.HeaderName = DefaultHeaderName
		if opts.HeaderValue == "" {
			opts.HeaderValue = DefaultHeaderValue
		}
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Prober{
		relay:       strings.TrimSpace(opts.Relay),
		headerName:  opts.HeaderName,
		headerValue: opts.HeaderValue,
		httpClient:  &http.Client{Timeout: opts.Timeout},
		now:         time.Now,
	}
}

// URL returns the request URL used to probe target.
func (p *Prober) URL(target string) string {
	return p.relay + target
}

// Probe checks one target. Every failure degrades to StatusOffline; the
// error is kept on the result for logging only.
func (p *Prober) Probe(ctx context.Context, target string) Result {
	res := Result{Target: target, Item: -1, Status: StatusOffline}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.URL(target), nil)
	if err != nil {
		res.Err = fmt.Errorf("create request: %w", err)
		res.Checked = p.now()
		return res
	}
	if p.headerName != "" {
		req.Header.Set(p.headerName, p.headerValue)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("request failed: %w", err)
		res.Checked = p.now()
		return res
	}
	resp.Body.Close()

	res.Code = resp.StatusCode
	if ok(resp.StatusCode) {
		res.Status = StatusOnline
	} else {
		res.Err = fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	res.Checked = p.now()
	return res
}

func ok(code int) bool {
	return code >= 200 && code < 400
}
