package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/team-training-system/middleware"
	"github.com/Dosada05/team-training-system/models"
	"github.com/Dosada05/team-training-system/services"
)

type AttendanceHandler struct {
	attendanceService services.AttendanceService
}

func NewAttendanceHandler(as services.AttendanceService) *AttendanceHandler {
	return &AttendanceHandler{
		attendanceService: as,
	}
}

func (h *AttendanceHandler) UpdateAttendance(w http.ResponseWriter, r *http.Request) {
	attendanceID, err := getIDFromURL(r, "attendanceID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input struct {
		Status *models.AttendanceStatus `json:"status"`
		Notes  *string                  `json:"notes"`
	}
	err = readJSON(w, r, &input)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if input.Status == nil && input.Notes == nil {
		badRequestResponse(w, r, errors.New("no fields provided for update"))
		return
	}

	var record *models.Attendance
	if input.Status != nil {
		record, err = h.attendanceService.UpdateStatus(r.Context(), attendanceID, *input.Status, currentUserID)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
	}
	if input.Notes != nil {
		record, err = h.attendanceService.UpdateNotes(r.Context(), attendanceID, input.Notes, currentUserID)
		if err != nil {
			mapServiceErrorToHTTP(w, r, err)
			return
		}
	}

	response := jsonResponse{
		"attendance": record,
	}

	err = writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AttendanceHandler) ListSessionAttendance(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	records, err := h.attendanceService.ListBySession(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	summary, err := h.attendanceService.GetSummary(r.Context(), sessionID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"attendance": records,
		"summary":    summary,
	}

	err = writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *AttendanceHandler) MarkAllPresent(w http.ResponseWriter, r *http.Request) {
	sessionID, err := getIDFromURL(r, "sessionID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	result, err := h.attendanceService.MarkAllPresent(r.Context(), sessionID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"result": result,
	}

	err = writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
