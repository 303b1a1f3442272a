package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/krishichetan/kchetan/internal/client/api"
	"github.com/krishichetan/kchetan/internal/controller"
	"github.com/krishichetan/kchetan/internal/middleware"
	"github.com/krishichetan/kchetan/internal/models"
	"github.com/krishichetan/kchetan/internal/screen"
)

// maxUpload bounds the leaf image accepted by Diagnose.
const maxUpload = 10 << 20

// ViewController is the subset of the controller the handlers drive.
type ViewController interface {
	Session() (models.Session, bool)
	Active() models.Module
	Language() models.Language
	Login(ctx context.Context, phone, password string) (models.Session, error)
	ActivateModule(id string) error
	RefreshActive() error
	SetLanguage(code string) error
	SendChat(ctx context.Context, text string) (*models.ChatReply, error)
	Diagnose(ctx context.Context, img api.Image) (*models.Diagnosis, error)
	SaveProfile(ctx context.Context, form controller.ProfileForm) error
	UpdateAdvisoryStatus(ctx context.Context, id string, status models.AdvisoryStatus) error
	ValidateRecommendation(ctx context.Context, id, text string) error
	SendAdvisory(ctx context.Context, kind, message string) (*models.BroadcastResult, error)
	Logout(ctx context.Context) error
	Wait()
}

// Snapshotter returns the painted screen.
type Snapshotter interface {
	Snapshot() screen.Snapshot
}

// ViewHandler serves the view API.
type ViewHandler struct {
	Controller ViewController
	Screen     Snapshotter
	Log        *zap.Logger
}

// ViewResponse is the body of every endpoint that changes the view.
type ViewResponse struct {
	Module   models.Module   `json:"module"`
	Language models.Language `json:"language"`
	User     string          `json:"user,omitempty"`
	Role     models.Role     `json:"role,omitempty"`
	Screen   screen.Snapshot `json:"screen"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps controller and backend errors to a response.
func (h *ViewHandler) fail(w http.ResponseWriter, err error) {
	var se *api.StatusError
	var pe *api.ParseError
	switch {
	case errors.Is(err, controller.ErrUnauthenticated):
		middleware.Unauthorized(w)
	case errors.Is(err, controller.ErrUnsupportedLanguage):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, api.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &se), errors.As(err, &pe):
		writeError(w, http.StatusBadGateway, err.Error())
	default:
		h.Log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// respond writes the current view. With ?wait=true it first waits for the
// dispatched refreshes to finish.
func (h *ViewHandler) respond(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("wait") == "true" {
		h.Controller.Wait()
	}
	resp := ViewResponse{
		Module:   h.Controller.Active(),
		Language: h.Controller.Language(),
		Screen:   h.Screen.Snapshot(),
	}
	if s, ok := h.Controller.Session(); ok {
		resp.User, resp.Role = s.Name, s.Role
	}
	writeJSON(w, http.StatusOK, resp)
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("invalid body: %w", err)
	}
	return nil
}

// Health reports liveness.
func (h *ViewHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Login exchanges credentials for a session and returns the initial view.
func (h *ViewHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decode(r, &req); err != nil || req.Phone == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if _, err := h.Controller.Login(r.Context(), req.Phone, req.Password); err != nil {
		var se *api.StatusError
		if errors.As(err, &se) && se.Code == http.StatusUnauthorized {
			writeError(w, http.StatusUnauthorized, "incorrect phone or password")
			return
		}
		h.fail(w, err)
		return
	}
	h.respond(w, r)
}

// View returns the painted screen.
func (h *ViewHandler) View(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r)
}

// Activate switches the visible module. Unknown ids leave the view as is.
func (h *ViewHandler) Activate(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.ActivateModule(chi.URLParam(r, "id")); err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r)
}

// Refresh reloads the visible module.
func (h *ViewHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.RefreshActive(); err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r)
}

// Language switches the UI language.
func (h *ViewHandler) Language(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.SetLanguage(chi.URLParam(r, "lang")); err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r)
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// Chat sends a message to the assistant. A backend failure still returns
// the view, whose transcript carries the error entry.
func (h *ViewHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if _, err := h.Controller.SendChat(r.Context(), req.Message); err != nil {
		if errors.Is(err, controller.ErrUnauthenticated) {
			h.fail(w, err)
			return
		}
		h.Log.Warn("chat failed", zap.Error(err))
	}
	h.respond(w, r)
}

// Diagnose accepts a multipart upload in field "file". A request without
// a file submits an empty image.
func (h *ViewHandler) Diagnose(w http.ResponseWriter, r *http.Request) {
	var img api.Image
	if err := r.ParseMultipartForm(maxUpload); err == nil {
		if f, hdr, err := r.FormFile("file"); err == nil {
			defer f.Close()
			data, err := io.ReadAll(io.LimitReader(f, maxUpload))
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid upload")
				return
			}
			img = api.Image{Name: hdr.Filename, Data: data}
		}
	}
	if _, err := h.Controller.Diagnose(r.Context(), img); err != nil {
		if errors.Is(err, controller.ErrUnauthenticated) {
			h.fail(w, err)
			return
		}
		h.Log.Warn("diagnosis failed", zap.Error(err))
	}
	h.respond(w, r)
}

// SaveProfile stores the farm profile from the setup form.
func (h *ViewHandler) SaveProfile(w http.ResponseWriter, r *http.Request) {
	var form controller.ProfileForm
	if err := decode(r, &form); err != nil || form.CropType == "" || form.Location == "" {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.Controller.SaveProfile(r.Context(), form); err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r)
}

// StatusRequest is the body of POST /api/advisories/{id}/status.
type StatusRequest struct {
	Status models.AdvisoryStatus `json:"status"`
}

// AdvisoryStatus records what the farmer did with an advisory.
func (h *ViewHandler) AdvisoryStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if err := decode(r, &req); err != nil || !req.Status.Valid() {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.Controller.UpdateAdvisoryStatus(r.Context(), chi.URLParam(r, "id"), req.Status); err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r)
}

// ValidateRequest is the body of POST /api/officer/recs/{id}/validate.
type ValidateRequest struct {
	Text string `json:"text"`
}

// ValidateRecommendation approves a pending AI recommendation.
func (h *ViewHandler) ValidateRecommendation(w http.ResponseWriter, r *http.Request) {
	if !h.officer(w, r) {
		return
	}
	var req ValidateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	if err := h.Controller.ValidateRecommendation(r.Context(), chi.URLParam(r, "id"), req.Text); err != nil {
		h.fail(w, err)
		return
	}
	h.respond(w, r)
}

// AdvisoryRequest is the body of POST /api/officer/advisories.
type AdvisoryRequest struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// SendAdvisory broadcasts an advisory.
func (h *ViewHandler) SendAdvisory(w http.ResponseWriter, r *http.Request) {
	if !h.officer(w, r) {
		return
	}
	var req AdvisoryRequest
	if err := decode(r, &req); err != nil || req.Message == "" {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	res, err := h.Controller.SendAdvisory(r.Context(), req.Type, req.Message)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Logout ends the session.
func (h *ViewHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.Controller.Logout(r.Context()); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"redirect": controller.RedirectLogin})
}

// officer rejects non-officer sessions.
func (h *ViewHandler) officer(w http.ResponseWriter, r *http.Request) bool {
	s, ok := middleware.SessionFromContext(r.Context())
	if !ok || s.Role != models.RoleOfficer {
		writeError(w, http.StatusForbidden, "officer role required")
		return false
	}
	return true
}
