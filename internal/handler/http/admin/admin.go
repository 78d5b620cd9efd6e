// Package admin renders the server-side admin pages. Access control is done by
// auth.Sessions.AdminGate, which wraps the whole mux.
package admin

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"
	"net/http"

	"byte-highlight/internal/domain/entity"
	"byte-highlight/internal/handler/http/auth"
)

// SubscriberCounter reports subscribers per status.
type SubscriberCounter interface {
	Counts(ctx context.Context) (map[entity.SubscriberStatus]int64, error)
}

// SendHistory lists recent dispatches.
type SendHistory interface {
	RecentSends(ctx context.Context, limit int) ([]*entity.SendLog, error)
}

const dashboardSends = 10

type Pages struct {
	Subscribers SubscriberCounter
	Sends       SendHistory
	Session     *auth.SessionHandler
}

func (p *Pages) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /admin/login", p.LoginPage)
	mux.HandleFunc("POST /admin/login", p.Session.Login)
	mux.HandleFunc("POST /admin/logout", p.Session.Logout)
	mux.HandleFunc("GET /admin", p.Dashboard)
}

// LoginPage shows the sign-in form.
func (p *Pages) LoginPage(w http.ResponseWriter, _ *http.Request) {
	RenderLogin(w, http.StatusOK, "")
}

// RenderLogin implements auth.LoginPageRenderer.
func RenderLogin(w http.ResponseWriter, status int, errMsg string) {
	render(w, status, loginTmpl, struct{ Error string }{errMsg})
}

type dashboardView struct {
	User         string
	Active       int64
	Unsubscribed int64
	Total        int64
	Sends        []*entity.SendLog
	Warning      string
}

// Dashboard shows subscriber totals and the latest dispatches.
func (p *Pages) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	view := dashboardView{}
	view.User, _ = auth.UserFromContext(ctx)

	counts, err := p.Subscribers.Counts(ctx)
	if err != nil {
		slog.Error("dashboard: count subscribers", slog.Any("error", err))
		view.Warning = "Subscriber statistics are unavailable"
	}
	view.Active = counts[entity.SubscriberStatusActive]
	view.Unsubscribed = counts[entity.SubscriberStatusUnsubscribed]
	for _, n := range counts {
		view.Total += n
	}

	if p.Sends != nil {
		sends, err := p.Sends.RecentSends(ctx, dashboardSends)
		if err != nil {
			slog.Error("dashboard: list sends", slog.Any("error", err))
			view.Warning = "Send history is unavailable"
		}
		view.Sends = sends
	}

	render(w, http.StatusOK, dashboardTmpl, view)
}

func render(w http.ResponseWriter, status int, t *template.Template, data any) {
	// 途中で失敗した場合に半端な HTML を返さないようバッファしてから書き込む
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		slog.Error("render admin page", slog.String("template", t.Name()), slog.Any("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

const layoutHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>The Byte Highlight Admin</title>
<style>
body{font-family:system-ui,sans-serif;max-width:760px;margin:40px auto;padding:0 16px;color:#1f2937}
.card{border:1px solid #e5e7eb;border-radius:8px;padding:20px;margin-bottom:20px}
.error{color:#b91c1c}
table{width:100%;border-collapse:collapse}
td,th{text-align:left;padding:6px;border-bottom:1px solid #f3f4f6}
</style>
</head>
<body>`

var loginTmpl = template.Must(template.New("login").Parse(layoutHead + `
<div class="card">
<h1>Admin sign in</h1>
{{if .Error}}<p class="error">{{.Error}}</p>{{end}}
<form method="post" action="/admin/login">
<p><label>Username<br><input name="username" autocomplete="username" required></label></p>
<p><label>Password<br><input name="password" type="password" autocomplete="current-password" required></label></p>
<p><button type="submit">Sign in</button></p>
</form>
</div>
</body>
</html>`))

var dashboardTmpl = template.Must(template.New("dashboard").Parse(layoutHead + `
<h1>The Byte Highlight</h1>
<p>Signed in as {{.User}}</p>
<form method="post" action="/admin/logout"><button type="submit">Sign out</button></form>
{{if .Warning}}<p class="error">{{.Warning}}</p>{{end}}
<div class="card">
<h2>Subscribers</h2>
<p>Active: {{.Active}} / Unsubscribed: {{.Unsubscribed}} / Total: {{.Total}}</p>
</div>
<div class="card">
<h2>Recent sends</h2>
{{if .Sends}}
<table>
<tr><th>Date</th><th>Subject</th><th>Mode</th><th>Sent</th><th>Failed</th></tr>
{{range .Sends}}<tr><td>{{.CreatedAt.Format "2006-01-02 15:04"}}</td><td>{{.Subject}}</td><td>{{.Mode}}{{if .TestMode}} (test){{end}}</td><td>{{.Sent}}</td><td>{{.Failed}}</td></tr>
{{end}}</table>
{{else}}<p>No newsletters sent yet.</p>{{end}}
</div>
</body>
</html>`))
