package handler

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/handler/middleware"
	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/service"
	"github.com/DoctorDictator/rdbbms-project-2025-sub000/internal/notes-service/session"
)

type Options struct {
	CookieSecure bool
	StaticDir    string
	// RateLimiter guards register and login when set.
	RateLimiter *middleware.RateLimiter
}

type handler struct {
	svc      *service.Service
	sessions *session.Manager
	l        *log.Entry
	opts     Options
}

func NewHandler(svc *service.Service, sessions *session.Manager, l *log.Entry, opts Options) http.Handler {
	h := &handler{svc: svc, sessions: sessions, l: l, opts: opts}
	mux := http.NewServeMux()

	auth := middleware.CheckAuth(sessions)
	protected := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, auth(fn))
	}
	limited := func(fn http.HandlerFunc) http.Handler {
		if opts.RateLimiter == nil {
			return fn
		}
		return opts.RateLimiter.Limit(fn)
	}

	mux.HandleFunc("GET /health", h.health)

	mux.Handle("POST /api/auth/register", limited(h.register))
	mux.Handle("POST /api/auth/login", limited(h.login))
	protected("POST /api/auth/logout", h.logout)

	protected("GET /api/files", h.listFiles)
	protected("POST /api/files", h.createFile)
	protected("GET /api/files/{id}", h.getFile)
	protected("PATCH /api/files/{id}", h.updateFile)
	protected("DELETE /api/files/{id}", h.deleteFile)
	protected("PATCH /api/files/{id}/favorite", h.toggleFavourite)
	protected("PATCH /api/files/{id}/trash", h.toggleTrash)

	protected("GET /api/favourites", h.listFavourites)
	protected("POST /api/favourites", h.addFavourite)
	protected("DELETE /api/favourites/{id}", h.removeFavourite)

	protected("GET /api/trash", h.listTrash)
	protected("POST /api/trash", h.addTrash)
	protected("GET /api/trash/empty", h.trashStats)
	protected("POST /api/trash/empty", h.emptyTrash)
	protected("GET /api/trash/{id}", h.getTrash)
	protected("DELETE /api/trash/{id}", h.deleteTrash)
	protected("PATCH /api/trash/{id}/restore", h.restoreTrash)

	protected("GET /api/shares", h.listSharedWithMe)
	protected("POST /api/shares", h.shareFile)
	protected("GET /api/shares/by-me", h.listSharedByMe)
	protected("GET /api/shares/{id}", h.getShare)
	protected("PATCH /api/shares/{id}", h.updateShare)
	protected("DELETE /api/shares/{id}", h.deleteShare)

	protected("GET /api/friendships", h.listFriendships)
	protected("POST /api/friendships", h.requestFriendship)
	protected("GET /api/friendships/pending", h.listPendingRequests)
	protected("GET /api/friendships/{id}", h.getFriendship)
	protected("PATCH /api/friendships/{id}", h.updateFriendship)
	protected("DELETE /api/friendships/{id}", h.deleteFriendship)
	protected("PATCH /api/friendships/{id}/accept", h.acceptFriendship)
	protected("PATCH /api/friendships/{id}/reject", h.rejectFriendship)
	protected("PATCH /api/friendships/{id}/block", h.blockFriendship)

	protected("GET /api/profile", h.getProfile)
	protected("PATCH /api/profile", h.updateProfile)
	protected("DELETE /api/profile", h.deleteProfile)
	protected("GET /api/profile/{id}", h.getProfile)
	protected("PATCH /api/profile/{id}", h.updateProfile)
	protected("DELETE /api/profile/{id}", h.deleteProfile)

	protected("GET /api/activities", h.listActivities)
	protected("GET /api/activities/{id}", h.listFileActivities)

	protected("GET /api/all", h.dumpAll)
	protected("GET /api/all/{table}", h.dump)

	mux.HandleFunc("/api/", func(rw http.ResponseWriter, r *http.Request) {
		writeJSON(rw, http.StatusNotFound, envelope{"error": "Not found"})
	})
	mux.Handle("/", middleware.PageGuard(sessions)(pages(opts.StaticDir)))

	return middleware.Recover(l)(middleware.Logging(l)(mux))
}

// logger returns the request scoped entry.
func (h *handler) logger(r *http.Request) *log.Entry {
	fields := log.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
		"client": middleware.ClientIP(r),
	}
	if c, ok := middleware.ClaimsFromContext(r.Context()); ok {
		fields[fieldNameUserID] = c.UserID
	}
	return h.l.WithFields(fields)
}

func (h *handler) health(rw http.ResponseWriter, r *http.Request) {
	if err := h.svc.Ping(r.Context()); err != nil {
		h.logger(r).WithError(err).Error("database is unreachable")
		writeJSON(rw, http.StatusServiceUnavailable, envelope{"status": "unavailable"})
		return
	}
	writeJSON(rw, http.StatusOK, envelope{"status": "ok"})
}

// pages serves the frontend from dir. Unknown paths fall back to index.html.
func pages(dir string) http.Handler {
	if dir == "" {
		return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
			rw.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = rw.Write([]byte("notes-service"))
		})
	}
	files := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(rw http.ResponseWriter, r *http.Request) {
		p := path.Clean("/" + r.URL.Path)
		local := filepath.Join(dir, filepath.FromSlash(p))
		if _, err := os.Stat(local); err == nil {
			files.ServeHTTP(rw, r)
			return
		}
		if !strings.HasSuffix(p, ".html") {
			if _, err := os.Stat(local + ".html"); err == nil {
				http.ServeFile(rw, r, local+".html")
				return
			}
		}
		http.ServeFile(rw, r, filepath.Join(dir, "index.html"))
	})
}
