package expense

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/zombor/fin-tracker/internal/dashboard"
	"github.com/zombor/fin-tracker/internal/scanning"
)

const (
	// 50MB handles high-resolution phone photos
	maxUploadSize = int64(50 << 20)
	// base64 grows the image by a third
	maxScanBodySize = maxUploadSize * 4 / 3
	maxJSONBodySize = int64(1 << 20)

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeScanError maps a failed scan to its status, code and message
func writeScanError(w http.ResponseWriter, err error) {
	switch scanning.KindOf(err) {
	case scanning.KindConfig:
		writeError(w, http.StatusInternalServerError, string(scanning.KindConfig), "OCR provider not configured")
	case scanning.KindInvalidInput:
		message := "No image provided"
		if !errors.Is(err, scanning.ErrNoImage) {
			message = "Unsupported image: " + err.Error()
		}
		writeError(w, http.StatusBadRequest, string(scanning.KindInvalidInput), message)
	default:
		writeError(w, http.StatusInternalServerError, string(scanning.KindProcessing), "Failed to process receipt: "+err.Error())
	}
}

// writeServiceError maps validation and lookup failures; anything else is a 500
func writeServiceError(w http.ResponseWriter, err error, message string) {
	switch {
	case errors.Is(err, ErrInvalid):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", message+" not found")
	default:
		slog.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "Internal server error")
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.version})
}

// handleScanReceipt reads a base64 image (or data URL) from a JSON body
func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Image string `json:"image"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxScanBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, string(scanning.KindInvalidInput), "Invalid request body")
		return
	}

	result, err := s.service.ScanReceipt(r.Context(), req.Image)
	if err != nil {
		slog.Error("Error scanning receipt", "kind", scanning.KindOf(err), "error", err)
		writeScanError(w, err)
		return
	}

	slog.Info("Receipt scanned",
		"confidence", result.Confidence,
		"amount", result.Amount != nil,
		"date", result.Date != nil,
		"merchant", result.Merchant != nil,
	)
	writeJSON(w, http.StatusOK, result)
}

// handleScanReceiptFile stores and scans an uploaded receipt image
func (s *Server) handleScanReceiptFile(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		message := "Error parsing form"
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			message = "File is too large. Maximum size is 50MB. Please compress or resize your image."
		}
		writeError(w, http.StatusBadRequest, string(scanning.KindInvalidInput), message)
		return
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, string(scanning.KindInvalidInput), "No image provided")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "internal_error", "Error reading file. Please try again.")
		return
	}

	contentType := uploadContentType(header.Header.Get("Content-Type"), header.Filename)

	scanned, err := s.service.ScanReceiptFile(r.Context(), header.Filename, data, contentType)
	if err != nil {
		writeScanError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, scanned)
}

// uploadContentType falls back to the file extension when the part has no type
func uploadContentType(contentType, filename string) string {
	contentType = strings.ToLower(strings.TrimSpace(contentType))
	if contentType != "" && contentType != "application/octet-stream" {
		return contentType
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".gif":
		return "image/gif"
	case ".pdf":
		return "application/pdf"
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	default:
		return "application/octet-stream"
	}
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var input NewExpense
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	expense, err := s.service.CreateExpense(input)
	if err != nil {
		writeServiceError(w, err, "Expense")
		return
	}

	writeJSON(w, http.StatusCreated, expense)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := s.service.ListExpenses(r.URL.Query().Get("group_id"))
	if err != nil {
		writeServiceError(w, err, "Group")
		return
	}
	writeJSON(w, http.StatusOK, expenses)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	expense, err := s.service.GetExpense(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "Expense")
		return
	}
	writeJSON(w, http.StatusOK, expense)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteExpense(r.PathValue("id")); err != nil {
		writeServiceError(w, err, "Expense")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetReceiptFile(w http.ResponseWriter, r *http.Request) {
	data, contentType, err := s.service.GetReceiptFile(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "Receipt")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Write(data)
}

func (s *Server) handleExportExpenses(w http.ResponseWriter, r *http.Request) {
	groupID := r.URL.Query().Get("group_id")
	data, err := s.service.ExportExpenses(groupID)
	if err != nil {
		writeServiceError(w, err, "Group")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="spese-%s.xlsx"`, sanitizeFilename(groupID)))
	w.Write(data)
}

func (s *Server) handleDashboardStats(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GroupID string `json:"group_id"`
		Period  string `json:"period"`
		UserID  string `json:"user_id"`
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodySize)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body")
		return
	}

	stats, err := s.service.DashboardStats(req.GroupID, dashboard.Request{Period: req.Period, UserID: req.UserID})
	if err != nil {
		writeServiceError(w, err, "Group")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
