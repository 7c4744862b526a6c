package http

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

//go:embed web
var webFS embed.FS

const qrSize = 320

var pageNames = []string{"setup", "game", "leaderboard", "admin", "loading"}

type views struct {
	pages  map[string]*template.Template
	static http.Handler
}

type pageData struct {
	Title         string
	Page          string
	Started       bool
	TeamCount     int
	QuestionCount int
	RefreshMillis int64
}

func mustLoadViews() *views {
	v := &views{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		v.pages[name] = template.Must(template.ParseFS(webFS, "web/layout.html", "web/"+name+".html"))
	}
	static, err := fs.Sub(webFS, "web/static")
	if err != nil {
		panic(err)
	}
	v.static = http.StripPrefix("/static/", http.FileServer(http.FS(static)))
	return v
}

func (s *Server) handleSetupView(w http.ResponseWriter, r *http.Request) {
	if !s.service.Loading() && s.service.Snapshot().Started {
		http.Redirect(w, r, "/game", http.StatusFound)
		return
	}
	s.render(w, "setup", "Team Setup")
}

func (s *Server) handleGameView(w http.ResponseWriter, r *http.Request) {
	if !s.service.Loading() && !s.service.Snapshot().Started {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.render(w, "game", "CyberHunt Challenge")
}

func (s *Server) handleLeaderboardView(w http.ResponseWriter, r *http.Request) {
	s.render(w, "leaderboard", "Leaderboard")
}

func (s *Server) handleAdminView(w http.ResponseWriter, r *http.Request) {
	s.render(w, "admin", "Admin Panel")
}

func (s *Server) handleStatic(w http.ResponseWriter, r *http.Request) {
	s.views.static.ServeHTTP(w, r)
}

// render swaps in the loading page until the first question load finishes.
func (s *Server) render(w http.ResponseWriter, page, title string) {
	if s.service.Loading() {
		page, title = "loading", "Loading"
	}
	state := s.service.Snapshot()
	data := pageData{
		Title:         title,
		Page:          page,
		Started:       state.Started,
		TeamCount:     len(state.Teams),
		QuestionCount: state.QuestionCount(),
		RefreshMillis: s.opts.RefreshInterval.Milliseconds(),
	}

	var buf bytes.Buffer
	if err := s.views.pages[page].ExecuteTemplate(&buf, "layout", data); err != nil {
		s.log.Error("render view failed", zap.String("page", page), zap.Error(err))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(buf.Bytes())
}

// handleQR encodes the site URL so teams can join from their phones.
func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	url := s.opts.BaseURL
	if url == "" {
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		url = scheme + "://" + r.Host
	}
	url = strings.TrimSuffix(url, "/") + "/"

	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		s.log.Error("qr generation failed", zap.Error(err))
		http.Error(w, "qr generation failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(png)
}
