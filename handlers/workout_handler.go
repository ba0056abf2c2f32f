package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/Dosada05/team-training-system/middleware"
	"github.com/Dosada05/team-training-system/repositories"
	"github.com/Dosada05/team-training-system/services"
)

type WorkoutHandler struct {
	workoutService services.WorkoutService
}

func NewWorkoutHandler(ws services.WorkoutService) *WorkoutHandler {
	return &WorkoutHandler{
		workoutService: ws,
	}
}

func (h *WorkoutHandler) CreateWorkout(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.CreateWorkoutInput
	err = readJSON(w, r, &input)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.CreatorID = currentUserID

	workout, err := h.workoutService.CreateWorkout(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"workout": workout,
	}

	err = writeJSON(w, http.StatusCreated, response, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *WorkoutHandler) GetWorkoutByID(w http.ResponseWriter, r *http.Request) {
	workoutID, err := getIDFromURL(r, "workoutID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	workout, err := h.workoutService.GetWorkoutByID(r.Context(), workoutID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"workout": workout,
	}

	err = writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *WorkoutHandler) ListWorkouts(w http.ResponseWriter, r *http.Request) {
	var filter repositories.WorkoutFilter

	if v := r.URL.Query().Get("team_id"); v != "" {
		teamID, err := strconv.Atoi(v)
		if err != nil || teamID <= 0 {
			badRequestResponse(w, r, fmt.Errorf("invalid team_id value: %q", v))
			return
		}
		filter.TeamID = &teamID
	}
	if v := r.URL.Query().Get("creator_id"); v != "" {
		creatorID, err := strconv.Atoi(v)
		if err != nil || creatorID <= 0 {
			badRequestResponse(w, r, fmt.Errorf("invalid creator_id value: %q", v))
			return
		}
		filter.CreatorID = &creatorID
	}

	workouts, err := h.workoutService.ListWorkouts(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"workouts": workouts,
	}

	err = writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *WorkoutHandler) UpdateWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, err := getIDFromURL(r, "workoutID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.UpdateWorkoutInput
	err = readJSON(w, r, &input)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	workout, err := h.workoutService.UpdateWorkout(r.Context(), workoutID, input, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"workout": workout,
	}

	err = writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *WorkoutHandler) DeleteWorkout(w http.ResponseWriter, r *http.Request) {
	workoutID, err := getIDFromURL(r, "workoutID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	err = h.workoutService.DeleteWorkout(r.Context(), workoutID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// SetExercises полностью заменяет список упражнений шаблона. Порядок строк
// тела запроса становится порядком выполнения.
func (h *WorkoutHandler) SetExercises(w http.ResponseWriter, r *http.Request) {
	workoutID, err := getIDFromURL(r, "workoutID")
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
		Exercises []services.WorkoutExerciseInput `json:"exercises"`
	}
	err = readJSON(w, r, &input)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	workout, err := h.workoutService.SetExercises(r.Context(), workoutID, input.Exercises, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"workout": workout,
	}

	err = writeJSON(w, http.StatusOK, response, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
