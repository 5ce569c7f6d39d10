package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"tutorials/internal/api/v1/dto"
	"tutorials/internal/model"
	"tutorials/internal/service"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

// TutorialHandler handles tutorial-related endpoints
type TutorialHandler struct {
	tutorialService service.TutorialService
	validate        *validator.Validate
	logger          zerolog.Logger
}

// NewTutorialHandler creates a new TutorialHandler
func NewTutorialHandler(tutorialService service.TutorialService, validate *validator.Validate, logger zerolog.Logger) *TutorialHandler {
	return &TutorialHandler{
		tutorialService: tutorialService,
		validate:        validate,
		logger:          logger.With().Str("component", "tutorial_handler").Logger(),
	}
}

// RegisterRoutes mounts tutorial routes
func (h *TutorialHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/tutorials", h.handleTutorials)
	mux.HandleFunc("/tutorials/", h.handleTutorial)
}

func (h *TutorialHandler) handleTutorials(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listTutorials(w, r)
	case http.MethodPost:
		h.createTutorial(w, r)
	case http.MethodDelete:
		h.deleteAllTutorials(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost, http.MethodDelete)
	}
}

func (h *TutorialHandler) handleTutorial(w http.ResponseWriter, r *http.Request) {
	rawID := strings.TrimPrefix(r.URL.Path, "/tutorials/")
	if rawID == "" {
		h.handleTutorials(w, r)
		return
	}
	if strings.Contains(rawID, "/") {
		http.NotFound(w, r)
		return
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid tutorial id: "+rawID)
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getTutorial(w, r, id)
	case http.MethodPut:
		h.updateTutorial(w, r, id)
	case http.MethodDelete:
		h.deleteTutorial(w, r, id)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// listTutorials godoc
// @Summary View tutorials
// @Description Filters tutorials by title or description. Without a filter all tutorials are returned. Title wins over description.
// @Tags tutorials
// @Produce json
// @Param title query string false "Case-insensitive substring of the title"
// @Param description query string false "Case-insensitive substring of the description"
// @Success 200 {array} dto.TutorialDTO
// @Success 204 "No tutorials found"
// @Failure 500 "Internal error"
// @Router /tutorials [get]
func (h *TutorialHandler) listTutorials(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var (
		op        string
		tutorials []model.Tutorial
		err       error
	)
	switch title, description := q.Get("title"), q.Get("description"); {
	case title != "":
		op = "search_by_title"
		tutorials, err = h.tutorialService.FindByTitleContaining(r.Context(), title)
	case description != "":
		op = "search_by_description"
		tutorials, err = h.tutorialService.FindByDescriptionContaining(r.Context(), description)
	default:
		op = "list"
		tutorials, err = h.tutorialService.GetAllTutorials(r.Context())
	}
	if err != nil {
		h.fail(w, r, op, err)
		return
	}

	if len(tutorials) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromModels(tutorials))
}

// getTutorial godoc
// @Summary Find a tutorial by id
// @Tags tutorials
// @Produce json
// @Param id path int true "Tutorial ID"
// @Success 200 {object} dto.TutorialDTO
// @Failure 400 {object} dto.ErrorResponseDTO "Invalid tutorial id"
// @Failure 404 "Tutorial not found"
// @Failure 500 "Internal error"
// @Router /tutorials/{id} [get]
func (h *TutorialHandler) getTutorial(w http.ResponseWriter, r *http.Request, id int64) {
	tutorial, err := h.tutorialService.GetTutorialByID(r.Context(), id)
	if err != nil {
		h.fail(w, r, "get", err)
		return
	}
	if tutorial == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromModel(*tutorial))
}

// createTutorial godoc
// @Summary Create a new tutorial
// @Description Creates a tutorial from the body. Without a body an empty tutorial is created.
// @Tags tutorials
// @Accept json
// @Produce json
// @Param tutorial body dto.TutorialDTO false "Tutorial to create"
// @Success 201 {object} dto.TutorialDTO
// @Failure 400 {object} dto.ErrorResponseDTO "Invalid JSON payload or validation failed"
// @Failure 500 "Internal error"
// @Router /tutorials [post]
func (h *TutorialHandler) createTutorial(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeTutorial(w, r, false)
	if !ok {
		return
	}

	created, err := h.tutorialService.CreateTutorial(r.Context(), dto.ToModel(req))
	if err != nil {
		h.fail(w, r, "create", err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.FromModel(*created))
}

// updateTutorial godoc
// @Summary Update a tutorial by id
// @Description Overwrites title and description of an existing tutorial.
// @Tags tutorials
// @Accept json
// @Produce json
// @Param id path int true "Tutorial ID"
// @Param tutorial body dto.TutorialDTO true "New tutorial values"
// @Success 200 {object} dto.TutorialDTO
// @Failure 400 {object} dto.ErrorResponseDTO "Invalid id, JSON payload or validation failed"
// @Failure 404 "Tutorial not found"
// @Failure 500 "Internal error"
// @Router /tutorials/{id} [put]
func (h *TutorialHandler) updateTutorial(w http.ResponseWriter, r *http.Request, id int64) {
	req, ok := h.decodeTutorial(w, r, true)
	if !ok {
		return
	}

	updated, err := h.tutorialService.UpdateTutorial(r.Context(), id, dto.ToModel(req))
	if err != nil {
		h.fail(w, r, "update", err)
		return
	}
	if updated == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dto.FromModel(*updated))
}

// deleteTutorial godoc
// @Summary Delete a tutorial by id
// @Tags tutorials
// @Param id path int true "Tutorial ID"
// @Success 204
// @Failure 400 {object} dto.ErrorResponseDTO "Invalid tutorial id"
// @Failure 500 "Internal error"
// @Router /tutorials/{id} [delete]
func (h *TutorialHandler) deleteTutorial(w http.ResponseWriter, r *http.Request, id int64) {
	if err := h.tutorialService.DeleteTutorial(r.Context(), id); err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteAllTutorials godoc
// @Summary Delete all tutorials
// @Tags tutorials
// @Success 204
// @Failure 500 "Internal error"
// @Router /tutorials [delete]
func (h *TutorialHandler) deleteAllTutorials(w http.ResponseWriter, r *http.Request) {
	if err := h.tutorialService.DeleteAllTutorials(r.Context()); err != nil {
		h.fail(w, r, "delete_all", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decodeTutorial reads and validates the request body. A missing body (or JSON
// null) yields a nil DTO unless required is set. On failure the 400 response
// has already been written.
func (h *TutorialHandler) decodeTutorial(w http.ResponseWriter, r *http.Request, required bool) (*dto.TutorialDTO, bool) {
	var req *dto.TutorialDTO
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "Invalid JSON payload: "+err.Error())
		return nil, false
	}
	if req == nil {
		if required {
			writeError(w, http.StatusBadRequest, "Request body is required")
			return nil, false
		}
		return nil, true
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return nil, false
	}
	return req, true
}

// fail logs a service failure and answers 500 without exposing it.
func (h *TutorialHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.requestLogger(r).Error().
		Err(err).
		Str("operation", op).
		Msg("Tutorial request failed")
	w.WriteHeader(http.StatusInternalServerError)
}

// requestLogger prefers the request-scoped logger set by the logging
// middleware, which already carries the request id.
func (h *TutorialHandler) requestLogger(r *http.Request) *zerolog.Logger {
	if l := zerolog.Ctx(r.Context()); l.GetLevel() != zerolog.Disabled {
		scoped := l.With().Str("component", "tutorial_handler").Logger()
		return &scoped
	}
	return &h.logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, dto.ErrorResponseDTO{Error: msg})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	w.WriteHeader(http.StatusMethodNotAllowed)
}
