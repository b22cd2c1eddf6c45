// unfurl/fetcher.go
package unfurl

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"swipevault/internal/utils"
)

// Result is the normalized output of unfurling a URL through either the
// YouTube oEmbed path or the generic HTML path. Unfurl returns an error
// rather than a fallback result when fetching fails, so this package never
// sets Fallback.
type Result struct {
	URL         string   `json:"url"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Thumbnail   string   `json:"thumbnail"`
	SiteName    string   `json:"siteName"`
	ContentType string   `json:"contentType"`
	Fallback    bool     `json:"fallback"`
	Warnings    []string `json:"warnings,omitempty"`
}

// Fetcher performs SSRF-guarded outbound fetches for link previews.
type Fetcher struct {
	hostnameCache *HostnameSafetyCache
	client        *http.Client
}

func NewFetcher() *Fetcher {
	f := &Fetcher{hostnameCache: NewHostnameSafetyCache()}
	f.client = &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	return f
}

// Unfurl fetches and summarizes target, dispatching to the YouTube oEmbed
// path when applicable and otherwise reading the page's HTML meta tags.
func (f *Fetcher) Unfurl(ctx context.Context, target string) (*Result, error) {
	u, err := CheckURL(target)
	if err != nil {
		return nil, err
	}

	if host := strings.ToLower(u.Hostname()); isYouTubeHost(host) {
		if videoID, ok := extractYouTubeID(u); ok {
			ctx, cancel := context.WithTimeout(ctx, utils.YouTubeFetchTimeout)
			defer cancel()
			if result, err := f.fetchYouTubeOEmbed(ctx, u.String(), videoID); err == nil {
				return result, nil
			}
			// fall through to generic fetch on oEmbed failure
		}
	}

	ctx, cancel := context.WithTimeout(ctx, utils.GenericFetchTimeout)
	defer cancel()
	return f.fetchGeneric(ctx, u)
}

// fetchGeneric performs the SSRF-guarded HTTP GET with manual redirect
// handling, re-validating every hop.
func (f *Fetcher) fetchGeneric(ctx context.Context, u *url.URL) (*Result, error) {
	current := u
	for redirects := 0; ; redirects++ {
		if redirects > utils.MaxRedirects {
			return nil, fmt.Errorf("unsafe target: too many redirects")
		}

		if err := f.guardHost(ctx, current); err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current.String(), nil)
		if err != nil {
			return nil, fmt.Errorf("external failure: building request: %w", err)
		}
		req.Header.Set("User-Agent", "swipevault-unfurl/1.0")
		req.Header.Set("Accept", "text/html,application/xhtml+xml")

		resp, err := f.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("external failure: %w", err)
		}

		if isRedirectStatus(resp.StatusCode) {
			location := resp.Header.Get("Location")
			resp.Body.Close()
			if location == "" {
				return nil, fmt.Errorf("external failure: redirect without location")
			}
			next, err := current.Parse(location)
			if err != nil {
				return nil, fmt.Errorf("unsafe target: unparseable redirect location")
			}
			checked, err := CheckURL(next.String())
			if err != nil {
				return nil, err
			}
			current = checked
			continue
		}

		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("external failure: status %d", resp.StatusCode)
		}

		contentType := resp.Header.Get("Content-Type")
		if !strings.Contains(strings.ToLower(contentType), "text/html") {
			return nil, fmt.Errorf("external failure: unsupported content type %q", contentType)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, utils.MaxFetchBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("external failure: reading body: %w", err)
		}

		return parseHTMLMeta(current.String(), body)
	}
}

// guardHost re-runs the static checks on host, then resolves it (unless it
// is already a literal IP) and rejects the hop if any resolved address is
// reserved, protecting against DNS rebinding between hops.
func (f *Fetcher) guardHost(ctx context.Context, u *url.URL) error {
	if _, err := CheckURL(u.String()); err != nil {
		return err
	}

	host := u.Hostname()
	if net.ParseIP(host) != nil {
		return nil
	}

	safe, err := f.hostnameCache.IsHostnameSafe(ctx, host)
	if err != nil {
		return fmt.Errorf("transient: %w", err)
	}
	if !safe {
		return fmt.Errorf("unsafe target: hostname resolves to a reserved address")
	}
	return nil
}

func isRedirectStatus(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}
