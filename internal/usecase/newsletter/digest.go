package newsletter

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"byte-highlight/internal/domain/entity"
)

const (
	// DigestWindow is how far back the weekly digest looks for articles.
	DigestWindow = 7 * 24 * time.Hour

	// MaxDigestUpdates is the length of the "Latest Updates" list.
	MaxDigestUpdates = 10

	// UnsubscribePlaceholder is replaced per recipient by the provider.
	// It only uses URL-safe characters so the template leaves it untouched.
	UnsubscribePlaceholder = "-unsubscribe_url-"

	subjectPrefix = "The Byte Highlight - Weekly Tech Update"
)

// Digest is a rendered weekly newsletter.
type Digest struct {
	Subject  string
	HTML     string
	Featured *entity.Article
	Updates  []*entity.Article
}

// DigestBuilder renders the weekly newsletter.
type DigestBuilder struct {
	// BaseURL is the public site root used for article and unsubscribe links.
	BaseURL string
}

type digestItem struct {
	Title    string
	Subtitle string
	URL      string
	Meta     string
}

type digestView struct {
	Date           string
	Year           int
	Intro          string
	Featured       *digestItem
	Updates        []digestItem
	ArticlesURL    string
	UnsubscribeURL string
}

var digestTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>The Byte Highlight - Weekly Newsletter</title>
  <style>
    body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px; }
    .header { text-align: center; margin-bottom: 30px; }
    .logo { font-size: 24px; font-weight: bold; }
    .date { color: #666; margin-bottom: 20px; }
    .meta { color: #888; font-size: 13px; }
    .footer { text-align: center; font-size: 12px; color: #666; border-top: 1px solid #eee; padding-top: 20px; }
    .button { display: inline-block; background-color: #0051a3; color: white; text-decoration: none; padding: 10px 20px; border-radius: 4px; }
  </style>
</head>
<body>
  <div class="header">
    <div class="logo">
      <span style="color:#FF6B00">T</span><span style="color:#0038B8">B</span><span style="color:#009B3A">H</span>
      THE BYTE HIGHLIGHT
    </div>
    <div class="date">{{.Date}}</div>
  </div>

  <div class="content">
    <h1>This Week in Tech</h1>
{{- if .Intro}}
    <p>{{.Intro}}</p>
{{- end}}
{{- if .Featured}}

    <h2>Featured Story</h2>
    <h3>{{if .Featured.URL}}<a href="{{.Featured.URL}}">{{.Featured.Title}}</a>{{else}}{{.Featured.Title}}{{end}}</h3>
    <p>{{.Featured.Subtitle}}</p>
    <p class="meta">{{.Featured.Meta}}</p>
{{- else}}

    <p>It was a quiet week. No new stories were published, but we will be back next week with the latest in tech.</p>
{{- end}}
{{- if .Updates}}

    <h2>Latest Updates</h2>
    <ul>
{{- range .Updates}}
      <li>{{if .URL}}<a href="{{.URL}}">{{.Title}}</a>{{else}}{{.Title}}{{end}}<span class="meta"> ({{.Meta}})</span></li>
{{- end}}
    </ul>
{{- end}}

    <div style="text-align: center; margin: 30px 0;">
      <a href="{{.ArticlesURL}}" class="button">Read More Articles</a>
    </div>
  </div>

  <div class="footer">
    <p>&copy; {{.Year}} The Byte Highlight. All rights reserved.</p>
    <p><a href="{{.UnsubscribeURL}}">Unsubscribe</a></p>
  </div>
</body>
</html>
`))

// Subject returns the weekly subject line for now, e.g.
// "The Byte Highlight - Weekly Tech Update 3/9/2026".
func Subject(now time.Time) string {
	return subjectPrefix + " " + now.Format("1/2/2006")
}

// Build renders the digest. articles must be ordered newest first; the first
// one is featured and up to MaxDigestUpdates of the rest are listed.
func (b DigestBuilder) Build(articles []*entity.Article, intro string, now time.Time) (*Digest, error) {
	d := &Digest{Subject: Subject(now)}

	view := digestView{
		Date:           now.Format("Monday, January 2, 2006"),
		Year:           now.Year(),
		Intro:          strings.TrimSpace(intro),
		ArticlesURL:    b.link("/articles"),
		UnsubscribeURL: UnsubscribePlaceholder,
	}

	if len(articles) > 0 {
		d.Featured = articles[0]
		item := toDigestItem(articles[0])
		view.Featured = &item

		rest := articles[1:]
		if len(rest) > MaxDigestUpdates {
			rest = rest[:MaxDigestUpdates]
		}
		d.Updates = rest
		for _, a := range rest {
			view.Updates = append(view.Updates, toDigestItem(a))
		}
	}

	var buf bytes.Buffer
	if err := digestTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render digest: %w", err)
	}
	d.HTML = buf.String()
	return d, nil
}

// UnsubscribeURL builds the personal unsubscribe link for email.
func (b DigestBuilder) UnsubscribeURL(email, token string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", token)
	return b.link("/api/unsubscribe?" + q.Encode())
}

func (b DigestBuilder) link(path string) string {
	return strings.TrimRight(b.BaseURL, "/") + path
}

func toDigestItem(a *entity.Article) digestItem {
	meta := a.Author
	if a.Topic != "" {
		meta += " · " + a.Topic
	}
	return digestItem{Title: a.Title, Subtitle: a.Subtitle, URL: a.URL, Meta: meta}
}
