// unfurl/youtube.go
package unfurl

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"swipevault/internal/utils"
)

var youTubeIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

func isYouTubeHost(host string) bool {
	return host == "youtube.com" || host == "www.youtube.com" ||
		host == "m.youtube.com" || host == "youtu.be"
}

// extractYouTubeID pulls the 11-character video id out of the common
// youtube.com/watch?v=, youtu.be/, and /shorts/ URL shapes.
func extractYouTubeID(u *url.URL) (string, bool) {
	host := strings.ToLower(u.Hostname())

	if host == "youtu.be" {
		id := strings.Trim(u.Path, "/")
		if youTubeIDPattern.MatchString(id) {
			return id, true
		}
		return "", false
	}

	if id := u.Query().Get("v"); youTubeIDPattern.MatchString(id) {
		return id, true
	}

	for _, prefix := range []string{"/shorts/", "/embed/", "/v/"} {
		if strings.HasPrefix(u.Path, prefix) {
			id := strings.TrimPrefix(u.Path, prefix)
			id = strings.SplitN(id, "/", 2)[0]
			if youTubeIDPattern.MatchString(id) {
				return id, true
			}
		}
	}

	return "", false
}

type oEmbedResponse struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// fetchYouTubeOEmbed uses YouTube's public oEmbed endpoint to resolve
// title/author without touching the full watch page. The thumbnail URL is
// always derived from the video id pattern; oEmbed's thumbnail_url is unused.
func (f *Fetcher) fetchYouTubeOEmbed(ctx context.Context, watchURL, videoID string) (*Result, error) {
	oembedURL := "https://www.youtube.com/oembed?format=json&url=" + url.QueryEscape(watchURL)

	checked, err := CheckURL(oembedURL)
	if err != nil {
		return nil, err
	}
	if err := f.guardHost(ctx, checked); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, checked.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("external failure: building oembed request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("external failure: oembed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("external failure: oembed status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, utils.MaxFetchBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("external failure: reading oembed body: %w", err)
	}

	var parsed oEmbedResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("external failure: decoding oembed body: %w", err)
	}

	return &Result{
		URL:         watchURL,
		Title:       decodeEntities(parsed.Title),
		Description: parsed.AuthorName,
		Thumbnail:   fmt.Sprintf("https://i.ytimg.com/vi/%s/hqdefault.jpg", videoID),
		SiteName:    "YouTube",
		ContentType: "youtube",
	}, nil
}

// classifyContentType infers a library entry's content type from the
// unfurled URL's hostname.
func classifyContentType(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "generic"
	}
	host := strings.ToLower(u.Hostname())
	switch {
	case isYouTubeHost(host):
		return "youtube"
	case host == "twitter.com" || host == "www.twitter.com" || host == "x.com" || host == "www.x.com":
		return "tweet"
	case host == "instagram.com" || host == "www.instagram.com":
		return "instagram"
	default:
		return "article"
	}
}
