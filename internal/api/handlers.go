package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ignite/mailblast/internal/dispatch"
	"github.com/ignite/mailblast/internal/pkg/logger"
	"github.com/ignite/mailblast/internal/progress"
	"github.com/ignite/mailblast/internal/recipient"
	"github.com/ignite/mailblast/internal/sheet"
	"github.com/ignite/mailblast/internal/smtp"
)

// =====================================================
// HTTP Handlers
// =====================================================

const maxUploadBytes = 20 << 20 // 20 MB

// Handlers wires the HTTP surface to the dispatch services.
type Handlers struct {
	transport  smtp.Transport
	dispatcher *dispatch.Dispatcher
	hub        *progress.Hub
	store      *progress.RedisStore
}

// NewHandlers creates the handler set. store may be nil when Redis snapshots
// are disabled.
func NewHandlers(transport smtp.Transport, dispatcher *dispatch.Dispatcher, hub *progress.Hub, store *progress.RedisStore) *Handlers {
	return &Handlers{
		transport:  transport,
		dispatcher: dispatcher,
		hub:        hub,
		store:      store,
	}
}

// sendRequest is the POST /api/email/send payload. Recipients accepts a
// comma-separated string or an array of addresses; RecipientsData carries
// structured entries with personalization variables and wins when present.
type sendRequest struct {
	SMTPConfig     *smtp.Credentials  `json:"smtpConfig"`
	EmailData      *dispatch.Template `json:"emailData"`
	Recipients     json.RawMessage    `json:"recipients"`
	RecipientsData []recipient.Entry  `json:"recipientsData"`
	RunID          string             `json:"runId"`
}

// HandleSend validates the request, resolves recipients, and runs the full
// dispatch loop before responding with the final report.
func (h *Handlers) HandleSend(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.SMTPConfig == nil {
		respondError(w, http.StatusBadRequest, "Invalid SMTP configuration: missing smtpConfig")
		return
	}
	if req.EmailData == nil {
		respondError(w, http.StatusBadRequest, "Missing emailData")
		return
	}

	field, err := recipient.ParseField(req.Recipients)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid recipients format")
		return
	}

	recipients, err := recipient.Resolve(field, req.RecipientsData)
	if err != nil {
		switch {
		case errors.Is(err, recipient.ErrInvalidInput):
			respondError(w, http.StatusBadRequest, "Invalid recipients format")
		case errors.Is(err, recipient.ErrNoRecipients):
			respondError(w, http.StatusBadRequest, "No valid email addresses found")
		default:
			respondError(w, http.StatusInternalServerError, "Failed to resolve recipients")
		}
		return
	}

	report, err := h.dispatcher.Dispatch(r.Context(), req.RunID, *req.SMTPConfig, *req.EmailData, recipients)
	if err != nil {
		switch {
		case errors.Is(err, smtp.ErrInvalidCredentials):
			respondError(w, http.StatusBadRequest, "Invalid SMTP configuration: "+err.Error())
		case errors.Is(err, dispatch.ErrInvalidTemplate):
			respondError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, recipient.ErrNoRecipients):
			respondError(w, http.StatusBadRequest, "No valid email addresses found")
		case errors.Is(err, dispatch.ErrVerifyFailed):
			respondError(w, http.StatusBadRequest, "SMTP connection verification failed: "+err.Error())
		default:
			logger.Error("dispatch failed", "error", err.Error())
			respondError(w, http.StatusInternalServerError, "Email sending failed")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Email sending process completed",
		"results": report,
	})
}

// HandleTestConnection verifies SMTP credentials without sending anything.
func (h *Handlers) HandleTestConnection(w http.ResponseWriter, r *http.Request) {
	var creds smtp.Credentials
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := creds.Validate(); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid SMTP configuration: "+err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	if err := h.transport.Verify(ctx, creds); err != nil {
		respondJSON(w, http.StatusBadRequest, map[string]interface{}{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "SMTP connection verified",
	})
}

// HandleUpload parses an uploaded spreadsheet into recipients. With
// fullData=true the response carries full personalization rows; otherwise it
// returns just the address list.
func (h *Handlers) HandleUpload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}

	rows, err := sheet.Decode(header.Filename, data, r.FormValue("sheetName"))
	if err != nil {
		switch {
		case errors.Is(err, sheet.ErrUnsupportedFormat):
			respondError(w, http.StatusBadRequest, "Unsupported file format")
		case errors.Is(err, sheet.ErrSheetNotFound):
			respondError(w, http.StatusBadRequest, "Sheet not found in workbook")
		case errors.Is(err, sheet.ErrEmptySheet):
			respondError(w, http.StatusBadRequest, "File contains no data rows")
		default:
			respondError(w, http.StatusBadRequest, "Failed to parse file")
		}
		return
	}

	if r.FormValue("fullData") == "true" {
		recipients := sheet.Extract(rows)
		if len(recipients) == 0 {
			respondError(w, http.StatusBadRequest, "No valid email addresses found")
			return
		}
		emails := make([]string, 0, len(recipients))
		for _, rec := range recipients {
			emails = append(emails, rec.Email)
		}
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"success":            true,
			"recipients":         recipients,
			"emails":             emails,
			"count":              len(recipients),
			"availableVariables": availableVariables(recipients),
		})
		return
	}

	emails := sheet.ExtractEmailsFrom(rows, r.FormValue("columnName"))
	if len(emails) == 0 {
		respondError(w, http.StatusBadRequest, "No valid email addresses found")
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"emails":  emails,
		"count":   len(emails),
	})
}

// availableVariables lists the personalization keys of the first recipient,
// which the client uses to offer placeholder suggestions.
func availableVariables(recipients []recipient.Recipient) []string {
	if len(recipients) == 0 {
		return []string{}
	}
	keys := make([]string, 0, len(recipients[0].Variables))
	for k := range recipients[0].Variables {
		keys = append(keys, k)
	}
	return keys
}

// HandleRunProgress returns the latest Redis snapshot for a run.
func (h *Handlers) HandleRunProgress(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		respondError(w, http.StatusNotImplemented, "Progress snapshots are not enabled")
		return
	}

	runID := runIDParam(r)
	if runID == "" {
		respondError(w, http.StatusBadRequest, "Missing run ID")
		return
	}

	event, err := h.store.Get(r.Context(), runID)
	if err != nil {
		logger.Error("reading run progress", "runID", runID, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "Failed to read progress")
		return
	}
	if event == nil {
		respondError(w, http.StatusNotFound, "Run not found")
		return
	}
	respondJSON(w, http.StatusOK, event)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]interface{}{"success": false, "error": message})
}

// Health check

// HealthCheck returns the health status of the API
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}
