package handler

import (
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/weifish0/file-upload-sys/internal/auth"
	"github.com/weifish0/file-upload-sys/internal/service"
	"github.com/weifish0/file-upload-sys/internal/web"
)

// AdminHandler serves the session-protected dashboard: listing, search,
// deletion, CSV export and file downloads.
type AdminHandler struct {
	authSvc   *service.AuthService
	dashSvc   *service.DashboardService
	exportSvc *service.ExportService
	sessions  *auth.SessionManager
	tmpl      *template.Template
}

func NewAdminHandler(
	authSvc *service.AuthService,
	dashSvc *service.DashboardService,
	exportSvc *service.ExportService,
	sessions *auth.SessionManager,
	tmpl *template.Template,
) *AdminHandler {
	return &AdminHandler{
		authSvc:   authSvc,
		dashSvc:   dashSvc,
		exportSvc: exportSvc,
		sessions:  sessions,
		tmpl:      tmpl,
	}
}

func (h *AdminHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.sessions.AdminID(r) != "" {
		http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
		return
	}
	web.Render(w, h.tmpl, "login.html", map[string]any{
		"Flashes": h.sessions.Flashes(w, r),
	})
}

func (h *AdminHandler) Login(w http.ResponseWriter, r *http.Request) {
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")

	admin, err := h.authSvc.Login(r.Context(), username, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			log.Printf("login: %v", err)
		}
		h.sessions.AddFlash(w, r, "danger", "使用者名稱或密碼錯誤")
		http.Redirect(w, r, "/admin/login", http.StatusFound)
		return
	}
	if err := h.sessions.SignIn(w, r, admin.ID); err != nil {
		log.Printf("login: save session: %v", err)
		h.sessions.AddFlash(w, r, "danger", "登入失敗，請稍後再試")
		http.Redirect(w, r, "/admin/login", http.StatusFound)
		return
	}
	h.sessions.AddFlash(w, r, "success", "登入成功！")
	http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
}

func (h *AdminHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.SignOut(w, r)
	h.sessions.AddFlash(w, r, "success", "已成功登出")
	http.Redirect(w, r, "/", http.StatusFound)
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	search := r.URL.Query().Get("search")

	p, err := h.dashSvc.List(r.Context(), page, search)
	if err != nil {
		log.Printf("dashboard: %v", err)
		h.ServerError(w, r)
		return
	}
	web.Render(w, h.tmpl, "dashboard.html", map[string]any{
		"Page":    p,
		"Flashes": h.sessions.Flashes(w, r),
	})
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	switch err := h.dashSvc.Delete(r.Context(), id); {
	case errors.Is(err, service.ErrNotFound):
		h.sessions.AddFlash(w, r, "danger", "記錄不存在")
	case err != nil:
		log.Printf("delete %s: %v", id, err)
		h.sessions.AddFlash(w, r, "danger", "刪除失敗，請稍後再試")
	default:
		h.sessions.AddFlash(w, r, "success", "記錄已刪除")
	}
	http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
}

func (h *AdminHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	data, err := h.exportSvc.CSV(r.Context())
	if err != nil {
		log.Printf("export csv: %v", err)
		h.ServerError(w, r)
		return
	}
	filename := "submissions_" + time.Now().Format("20060102") + ".csv"
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename=`+filename)
	w.Write(data)
}

func (h *AdminHandler) DownloadAll(w http.ResponseWriter, r *http.Request) {
	data, err := h.exportSvc.ZIP(r.Context())
	if err != nil {
		log.Printf("download all: %v", err)
		h.ServerError(w, r)
		return
	}
	filename := "all_files_" + time.Now().Format("20060102_1504") + ".zip"
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename=`+filename)
	w.Write(data)
}

func (h *AdminHandler) Download(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	data, sub, err := h.dashSvc.Download(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.sessions.AddFlash(w, r, "danger", "記錄不存在")
			http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
			return
		}
		log.Printf("download %s: %v", id, err)
		h.ServerError(w, r)
		return
	}
	// RFC 5987 so the browser restores the original (possibly CJK) name.
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename*=utf-8''%s", url.PathEscape(sub.OriginalFilename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// NotFound renders the dedicated 404 page.
func (h *AdminHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusNotFound)
	if err := h.tmpl.ExecuteTemplate(w, "404.html", nil); err != nil {
		log.Printf("render 404: %v", err)
	}
}

// ServerError renders the dedicated 500 page; details stay in the log.
func (h *AdminHandler) ServerError(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	if err := h.tmpl.ExecuteTemplate(w, "500.html", nil); err != nil {
		log.Printf("render 500: %v", err)
	}
}
