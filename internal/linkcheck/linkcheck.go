// Package linkcheck checks bookmark URLs and sorts them into healthy, dead
// and unreachable.
package linkcheck

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/nikbrunner/marks/internal/model"
)

// Status is the outcome of probing one URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx
	Dead                      // 404 or 410
	Unreachable               // network failure or any other status
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "healthy"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

// Result is the check result for one bookmark.
type Result struct {
	Bookmark   model.Bookmark
	Status     Status
	StatusCode int    // 0 if no response was received
	Reason     string // short explanation for Unreachable
}

// Defaults for Options.
const (
	DefaultConcurrency = 10
	DefaultTimeout     = 10 * time.Second
	maxRedirects       = 10
)

// Options tunes Check.
type Options struct {
	Concurrency int
	Timeout     time.Duration

	// PrivateDomains lists hosts (and their subdomains) where a 404 usually
	// means "login required", so those are reported Unreachable, not Dead.
	PrivateDomains []string

	// Client overrides the HTTP client. Timeout is ignored when set.
	Client *http.Client

	// OnProgress is called after each URL with the running count.
	OnProgress func(done, total int)
}

// Check requests every bookmark URL with a pool of workers and returns results
// in input order. Cancelling ctx aborts outstanding requests; their bookmarks
// come back Unreachable.
func Check(ctx context.Context, bookmarks []model.Bookmark, opts Options) []Result {
	if len(bookmarks) == 0 {
		return nil
	}

	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	client := opts.Client
	if client == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		client = &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return http.ErrUseLastResponse
				}
				return nil
			},
		}
	}

	private := make(map[string]bool, len(opts.PrivateDomains))
	for _, d := range opts.PrivateDomains {
		if d = strings.ToLower(strings.TrimSpace(d)); d != "" {
			private[d] = true
		}
	}

	results := make([]Result, len(bookmarks))
	jobs := make(chan int, len(bookmarks))
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)

	for w := 0; w < min(concurrency, len(bookmarks)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = checkOne(ctx, client, bookmarks[idx], private)

				if opts.OnProgress != nil {
					mu.Lock()
					done++
					opts.OnProgress(done, len(bookmarks))
					mu.Unlock()
				}
			}
		}()
	}

	for i := range bookmarks {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// checkOne tries HEAD, then GET when HEAD fails or isn't allowed.
func checkOne(ctx context.Context, client *http.Client, b model.Bookmark, private map[string]bool) Result {
	result := Result{Bookmark: b}

	resp, err := request(ctx, client, http.MethodHead, b.URL)
	if err != nil || resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented {
		if resp != nil {
			resp.Body.Close()
		}
		resp, err = request(ctx, client, http.MethodGet, b.URL)
		if err != nil {
			result.Status = Unreachable
			result.Reason = describeError(err)
			return result
		}
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if isPrivate(b.URL, private) {
			result.Status = Unreachable
			result.Reason = "possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		result.Status = Unreachable
		result.Reason = http.StatusText(resp.StatusCode)
	}
	return result
}

func request(ctx context.Context, client *http.Client, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

// isPrivate reports whether rawURL's host is a private domain or below one.
func isPrivate(rawURL string, private map[string]bool) bool {
	if len(private) == 0 {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for domain := range private {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// describeError maps transport errors to short categories.
func describeError(err error) string {
	msg := err.Error()
	lower := strings.ToLower(msg)

	switch {
	case strings.Contains(lower, "unsupported protocol scheme"):
		return "not an http(s) URL"
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context canceled"):
		return "cancelled"
	case strings.Contains(lower, "deadline exceeded"), strings.Contains(lower, "timeout"):
		return "timeout"
	case strings.Contains(lower, "connection refused"):
		return "connection refused"
	case strings.Contains(lower, "certificate"), strings.Contains(lower, "tls:"):
		return "TLS error"
	case strings.Contains(lower, "network is unreachable"):
		return "network unreachable"
	default:
		return msg
	}
}
