package api

import (
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"datagent/domain/core"
	"datagent/domain/datareadiness/ingestion"
	"datagent/internal/errors"
)

// AllowedExtensions are the upload types the ingestion pipeline can open
var AllowedExtensions = map[string]bool{
	".xlsx": true,
	".xlsm": true,
	".xls":  true,
	".csv":  true,
}

const multipartMemory = 8 << 20

type queryRequest struct {
	Query     string `json:"query"`
	DatasetID string `json:"dataset_id"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.Ingestion.MaxFileSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			s.respondError(w, r, errors.PayloadTooLarge(fmt.Sprintf("Upload exceeds %d bytes", s.config.Ingestion.MaxFileSize)))
			return
		}
		s.respondError(w, r, errors.InvalidInput("No file provided"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errors.InvalidInput("No file provided"))
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if header.Filename == "" || name == "." || name == string(filepath.Separator) {
		s.respondError(w, r, errors.InvalidInput("No file selected"))
		return
	}
	if !AllowedExtensions[strings.ToLower(filepath.Ext(name))] {
		s.respondError(w, r, errors.InvalidInput("Invalid file type. Only Excel (.xlsx, .xlsm, .xls) and CSV files are allowed"))
		return
	}

	path, err := s.uploads.Store(r.Context(), file, name)
	if err != nil {
		s.respondError(w, r, errors.Wrap(err, "failed to store upload"))
		return
	}

	result, err := s.datasets.Upload(r.Context(), name, path)
	if err != nil {
		if rmErr := s.uploads.Delete(r.Context(), path); rmErr != nil {
			s.logger.Warn("failed to remove rejected upload", slog.String("path", path), slog.String("error", rmErr.Error()))
		}
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, result)
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		s.respondError(w, r, errors.InvalidInput("Invalid request body"))
		return
	}
	if strings.TrimSpace(req.Query) == "" || req.DatasetID == "" {
		s.respondError(w, r, errors.InvalidInput("Missing required parameters"))
		return
	}
	id, err := core.ParseDatasetID(req.DatasetID)
	if err != nil {
		s.respondError(w, r, errors.InvalidInput(err.Error()))
		return
	}

	resp, err := s.queries.Process(r.Context(), id, req.Query)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, resp)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := s.datasetID(w, r)
	if !ok {
		return
	}
	history, err := s.datasets.History(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"success": true, "history": history})
}

func (s *Server) handleInsights(w http.ResponseWriter, r *http.Request) {
	id, ok := s.datasetID(w, r)
	if !ok {
		return
	}
	insights, err := s.datasets.Insights(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"success": true, "insights": insights})
}

func (s *Server) datasetID(w http.ResponseWriter, r *http.Request) (core.DatasetID, bool) {
	id, err := core.ParseDatasetID(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, errors.NotFound("Dataset"))
		return "", false
	}
	return id, true
}

// respondError writes ingestion failures in their tagged shape and everything
// else as a coded error
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	var ingestErr *ingestion.Error
	if stderrors.As(err, &ingestErr) {
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, ingestion.FailureFrom(ingestErr))
		return
	}

	appErr := classify(err)
	status := errors.HTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		s.logger.ErrorContext(r.Context(), "request failed",
			slog.String("path", r.URL.Path),
			slog.String("code", appErr.Code),
			slog.String("error", err.Error()))
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: appErr.Message, Code: appErr.Code})
}

func classify(err error) *errors.AppError {
	if errors.IsAppError(err) {
		var appErr *errors.AppError
		stderrors.As(err, &appErr)
		return appErr
	}
	switch {
	case stderrors.Is(err, core.ErrDatasetNotFound):
		return errors.NotFound("Dataset")
	case core.IsNotFoundError(err):
		return errors.New(errors.CodeNotFound, err.Error())
	case core.IsValidationError(err):
		return errors.ValidationError(err.Error())
	case stderrors.Is(err, core.ErrAgentFailed):
		return errors.ExternalServiceError("LLM", err)
	case stderrors.Is(err, core.ErrInsufficientData):
		return errors.ValidationError(err.Error())
	}
	return errors.InternalError(err.Error())
}
