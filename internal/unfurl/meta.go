// unfurl/meta.go
package unfurl

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var namedEntities = map[string]string{
	"&amp;":  "&",
	"&lt;":   "<",
	"&gt;":   ">",
	"&quot;": `"`,
	"&apos;": "'",
	"&nbsp;": " ",
}

// decodeEntities replaces numeric character references and the handful of
// named entities pages commonly leave undecoded in og:* attribute values.
func decodeEntities(s string) string {
	for from, to := range namedEntities {
		s = strings.ReplaceAll(s, from, to)
	}

	var b strings.Builder
	for i := 0; i < len(s); {
		if s[i] == '&' && i+2 < len(s) && s[i+1] == '#' {
			if end := strings.IndexByte(s[i:], ';'); end > 0 && end < 12 {
				numPart := s[i+2 : i+end]
				base := 10
				if strings.HasPrefix(numPart, "x") || strings.HasPrefix(numPart, "X") {
					numPart = numPart[1:]
					base = 16
				}
				if code, err := strconv.ParseInt(numPart, base, 32); err == nil && code > 0 {
					b.WriteRune(rune(code))
					i += end + 1
					continue
				}
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

// parseHTMLMeta reads Open-Graph, Twitter-card, and <title> metadata out of
// an HTML document, in that preference order.
func parseHTMLMeta(sourceURL string, body []byte) (*Result, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, parseError("external failure: parsing html: " + err.Error())
	}

	meta := func(names ...string) string {
		for _, name := range names {
			if v, ok := doc.Find(`meta[property="` + name + `"]`).Attr("content"); ok && v != "" {
				return v
			}
			if v, ok := doc.Find(`meta[name="` + name + `"]`).Attr("content"); ok && v != "" {
				return v
			}
		}
		return ""
	}

	title := meta("og:title", "twitter:title")
	if title == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	description := meta("og:description", "twitter:description", "description")
	thumbnail := meta("og:image", "twitter:image")
	siteName := meta("og:site_name")

	return &Result{
		URL:         sourceURL,
		Title:       decodeEntities(strings.TrimSpace(title)),
		Description: decodeEntities(strings.TrimSpace(description)),
		Thumbnail:   strings.TrimSpace(thumbnail),
		SiteName:    decodeEntities(strings.TrimSpace(siteName)),
		ContentType: classifyContentType(sourceURL),
	}, nil
}

type parseError string

func (e parseError) Error() string { return string(e) }
