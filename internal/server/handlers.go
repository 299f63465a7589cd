package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"clockin/internal/domain"
	"clockin/internal/errors"
	"clockin/internal/history"
)

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) listTimeEntries(w http.ResponseWriter, r *http.Request) {
	owner := strings.TrimSpace(r.URL.Query().Get("email"))
	if err := s.validator.ValidateOwner(owner); err != nil {
		writeError(w, http.StatusBadRequest, errors.GetUserMessage(err))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.queryTimeout)
	defer cancel()

	entries, err := s.repo.ListTimeEntries(ctx, owner)
	if err != nil {
		s.logFailure("list time entries", err)
		writeError(w, statusFor(err), errors.GetUserMessage(err))
		return
	}
	if entries == nil {
		entries = []*domain.TimeEntry{}
	}

	writeJSON(w, http.StatusOK, entries)
}

// maxBodyBytes caps a create request.
const maxBodyBytes = 1 << 20

func (s *Server) createTimeEntry(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var entry domain.TimeEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	entry.Owner = strings.TrimSpace(entry.Owner)

	if err := s.validator.ValidateTimeEntryForCreation(&entry); err != nil {
		writeError(w, http.StatusBadRequest, errors.GetUserMessage(err))
		return
	}

	// IDs and derived fields are always assigned here
	entry.ID = uuid.New().String()
	history.Derive(&entry)
	if s.validator.IsUnusuallyLong(&entry) {
		s.logger.Warn("unusually long time entry", "owner", entry.Owner, "checkIn", entry.CheckIn, "totalTime", entry.TotalTime)
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.queryTimeout)
	defer cancel()

	if err := s.repo.CreateTimeEntry(ctx, &entry); err != nil {
		s.logFailure("create time entry", err)
		writeError(w, statusFor(err), errors.GetUserMessage(err))
		return
	}

	s.hub.Broadcast(&entry)
	writeJSON(w, http.StatusCreated, &entry)
}

func (s *Server) logFailure(op string, err error) {
	if errors.ShouldLogError(err) {
		s.logger.Error(op+" failed", "error", err, "code", errors.GetErrorCode(err))
	}
}

func statusFor(err error) int {
	switch {
	case errors.IsErrorType(err, errors.ErrorTypeValidation), errors.IsErrorType(err, errors.ErrorTypeInvalidInput):
		return http.StatusBadRequest
	case errors.IsErrorType(err, errors.ErrorTypeNotFound):
		return http.StatusNotFound
	case errors.IsErrorType(err, errors.ErrorTypeTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
