package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/models"
	"github.com/clemsonMakerspace/unified-makerspace-sub003/internal/settings"
)

type UpdateReportEmailRequest struct {
	Role  string `json:"role"`
	Email string `json:"email"`
}

type ReportEmailResponse struct {
	Role  string `json:"role"`
	Email string `json:"email"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageResponse{Message: msg})
}

// GET /report-email?Role=sender|recipient
func (a *App) viewReportEmail(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("Role")
	if raw == "" {
		writeError(w, http.StatusBadRequest, "Failed to provide parameter: Role")
		return
	}
	role, err := models.ParseRole(raw)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Value of 'Role' must be 'sender' or 'recipient'")
		return
	}

	addr, err := a.Addresses.Get(r.Context(), role)
	if err != nil {
		if errors.Is(err, settings.ErrMissingAddress) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		a.Logger.Error("read report email", zap.String("role", raw), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ReportEmailResponse{Role: raw, Email: addr})
}

// PUT /report-email stores the address and asks SES to verify it.
func (a *App) updateReportEmail(w http.ResponseWriter, r *http.Request) {
	var req UpdateReportEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	addr := strings.TrimSpace(req.Email)
	if addr == "" {
		writeError(w, http.StatusBadRequest, "Failed to provide parameter: email")
		return
	}
	role, err := models.ParseRole(req.Role)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Value of 'role' must be 'sender' or 'recipient'")
		return
	}

	if err := a.Addresses.Put(r.Context(), role, addr); err != nil {
		if errors.Is(err, settings.ErrInvalidAddress) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		a.Logger.Error("update report email", zap.String("role", req.Role), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	sent, err := a.Identities.RequestVerification(r.Context(), addr)
	if err != nil {
		a.Logger.Error("request verification", zap.String("email", addr), zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if !sent {
		writeJSON(w, http.StatusOK, MessageResponse{Message: addr + " is already verified"})
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{Message: "Verification email sent to " + addr})
}

// GET /report/preview renders today's report without sending it.
// ?format=text returns the plain-text body instead of HTML.
func (a *App) previewReport(w http.ResponseWriter, r *http.Request) {
	rep, err := a.Reports.Preview(r.Context())
	if err != nil {
		a.Logger.Error("preview report", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to load tasks")
		return
	}

	if r.URL.Query().Get("format") == "text" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(rep.Text))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Report-Subject", rep.Subject)
	_, _ = w.Write([]byte(rep.HTML))
}
