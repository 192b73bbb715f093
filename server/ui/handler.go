// Package ui serves the wizard and history pages and translates form posts
// into wizard actions. Audio and uploaded images are streamed through from
// the remote API so the browser only ever talks to this service.
package ui

import (
	"embed"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mirecekd/diktatOR/pkg/client"
	"github.com/mirecekd/diktatOR/pkg/history"
	"github.com/mirecekd/diktatOR/pkg/observe"
	"github.com/mirecekd/diktatOR/pkg/render"
	"github.com/mirecekd/diktatOR/pkg/wizard"
)

//go:embed templates/*.html
var templatesFS embed.FS

// maxUploadMemory bounds the in-memory part of multipart parsing. Larger
// files spill to disk before validation rejects them.
const maxUploadMemory = 32 << 20

type Handler struct {
	client *client.Client

	wizard  *wizard.Wizard
	history *history.Viewer

	templates *template.Template
}

func New(c *client.Client, w *wizard.Wizard, metrics *observe.Metrics) *Handler {
	funcs := template.FuncMap{
		"scoreTier":  render.ScoreTier,
		"scoreValue": render.ScoreValue,
		"critique":   render.Critique,
		"timestamp":  render.Timestamp,

		"float": func(v *float64) float64 {
			if v == nil {
				return 0
			}
			return *v
		},
		"inc": func(v int) int {
			return v + 1
		},
	}

	return &Handler{
		client: c,

		wizard:  w,
		history: history.NewViewer(c, metrics),

		templates: template.Must(template.New("").Funcs(funcs).ParseFS(templatesFS, "templates/*.html")),
	}
}

func (h *Handler) Attach(r chi.Router) {
	r.Get("/", h.handleIndex)

	r.Post("/wizard/generate", h.handleGenerate)
	r.Post("/wizard/played", h.handlePlayed)
	r.Post("/wizard/image", h.handleImage)
	r.Post("/wizard/rotate", h.handleRotate)
	r.Post("/wizard/evaluate", h.handleEvaluate)
	r.Post("/wizard/reset", h.handleReset)

	r.Get("/predesle", h.handleHistory)
	r.Post("/predesle/toggle", h.handleHistoryToggle)

	r.Get("/audio/{filename}", h.handleAudio)
	r.Get("/uploads/{filename}", h.handleUpload)
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, "index.html", h.wizard.Snapshot())
}

func (h *Handler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	grade, err := strconv.Atoi(r.FormValue("grade"))

	if err != nil {
		http.Error(w, "invalid grade", http.StatusBadRequest)
		return
	}

	numSentences, err := strconv.Atoi(r.FormValue("num_sentences"))

	if err != nil {
		http.Error(w, "invalid num_sentences", http.StatusBadRequest)
		return
	}

	pauseDuration, err := strconv.ParseFloat(r.FormValue("pause_duration"), 64)

	if err != nil {
		http.Error(w, "invalid pause_duration", http.StatusBadRequest)
		return
	}

	h.wizard.Generate(r.Context(), grade, numSentences, pauseDuration)

	h.redirect(w, r, "/")
}

func (h *Handler) handlePlayed(w http.ResponseWriter, r *http.Request) {
	h.wizard.PlaybackFinished()
	h.redirect(w, r, "/")
}

func (h *Handler) handleImage(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")

	if err != nil {
		http.Error(w, "missing image", http.StatusBadRequest)
		return
	}

	defer file.Close()

	h.wizard.SelectImage(header.Header.Get("Content-Type"), header.Size, file)

	h.redirect(w, r, "/")
}

func (h *Handler) handleRotate(w http.ResponseWriter, r *http.Request) {
	h.wizard.Rotate()
	h.redirect(w, r, "/")
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	h.wizard.Evaluate(r.Context())
	h.redirect(w, r, "/")
}

func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	h.wizard.Reset()
	h.redirect(w, r, "/")
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	h.history.Load(r.Context())
	h.renderPage(w, "predesle.html", h.history.Snapshot())
}

func (h *Handler) handleHistoryToggle(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.FormValue("index"))

	if err != nil {
		http.Error(w, "invalid index", http.StatusBadRequest)
		return
	}

	h.history.Toggle(index)
	h.renderPage(w, "predesle.html", h.history.Snapshot())
}

func (h *Handler) handleAudio(w http.ResponseWriter, r *http.Request) {
	stream, err := h.client.Dictations.Audio(r.Context(), chi.URLParam(r, "filename"))

	if err != nil {
		http.Error(w, "audio not found", http.StatusNotFound)
		return
	}

	defer stream.Body.Close()

	contentType := stream.ContentType

	if contentType == "" {
		contentType = "audio/mpeg"
	}

	w.Header().Set("Content-Type", contentType)
	io.Copy(w, stream.Body)
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	stream, err := h.client.Evaluations.Upload(r.Context(), chi.URLParam(r, "filename"))

	if err != nil {
		http.Error(w, "image not found", http.StatusNotFound)
		return
	}

	defer stream.Body.Close()

	contentType := stream.ContentType

	if contentType == "" {
		contentType = "image/jpeg"
	}

	w.Header().Set("Content-Type", contentType)
	io.Copy(w, stream.Body)
}

func (h *Handler) renderPage(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		slog.Error("rendering page failed", "page", name, "err", err)
	}
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, to string) {
	http.Redirect(w, r, to, http.StatusSeeOther)
}
