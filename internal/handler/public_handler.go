package handler

import (
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"net"
	"net/http"

	"github.com/weifish0/file-upload-sys/internal/auth"
	"github.com/weifish0/file-upload-sys/internal/service"
	"github.com/weifish0/file-upload-sys/internal/web"
)

// PublicHandler serves the parent-facing pages: the submission form and the
// multipart submit endpoint.
type PublicHandler struct {
	subSvc   *service.SubmissionService
	sessions *auth.SessionManager
	tmpl     *template.Template
}

func NewPublicHandler(subSvc *service.SubmissionService, sessions *auth.SessionManager, tmpl *template.Template) *PublicHandler {
	return &PublicHandler{subSvc: subSvc, sessions: sessions, tmpl: tmpl}
}

func (h *PublicHandler) Index(w http.ResponseWriter, r *http.Request) {
	web.Render(w, h.tmpl, "index.html", map[string]any{
		"Flashes": h.sessions.Flashes(w, r),
	})
}

func (h *PublicHandler) Submit(w http.ResponseWriter, r *http.Request) {
	// The body is already capped by the MaxBytes middleware; an oversized
	// upload surfaces here as a parse error.
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		log.Printf("submit: parse form: %v", err)
		h.sessions.AddFlash(w, r, "danger", "上傳失敗：檔案太大或表單格式錯誤")
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}

	var files []service.UploadedFile
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["file"] {
			if fh.Filename == "" {
				continue
			}
			f, err := fh.Open()
			if err != nil {
				log.Printf("submit: open %q: %v", fh.Filename, err)
				continue
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				log.Printf("submit: read %q: %v", fh.Filename, err)
				continue
			}
			files = append(files, service.UploadedFile{
				Name:        fh.Filename,
				Data:        data,
				ContentType: fh.Header.Get("Content-Type"),
			})
		}
	}

	in := service.SubmitInput{
		ChildName:  r.FormValue("child_name"),
		ParentInfo: r.FormValue("parent_info"),
		Files:      files,
	}
	result, err := h.subSvc.Submit(r.Context(), in, clientIP(r))
	switch {
	case errors.Is(err, service.ErrChildNameRequired):
		h.sessions.AddFlash(w, r, "danger", "請填寫孩子姓名")
	case errors.Is(err, service.ErrNoFiles):
		h.sessions.AddFlash(w, r, "danger", "請選擇要上傳的檔案")
	case err != nil:
		log.Printf("submit: %v", err)
		h.sessions.AddFlash(w, r, "danger", "上傳失敗，請稍後再試")
	case result.AllFailed():
		h.sessions.AddFlash(w, r, "danger", "檔案上傳失敗，請檢查檔案格式或大小")
	default:
		msg := fmt.Sprintf("成功上傳 %d 個檔案！感謝您的參與 🎉", result.Succeeded)
		if result.Failed > 0 {
			msg += fmt.Sprintf("（另有 %d 個檔案上傳失敗）", result.Failed)
		}
		h.sessions.AddFlash(w, r, "success", msg)
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

// clientIP is best-effort: RealIP middleware has already rewritten
// RemoteAddr from forwarding headers when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
