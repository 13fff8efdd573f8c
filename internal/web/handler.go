package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"clubdesk/internal/models"
	"clubdesk/internal/service"

	"go.uber.org/zap"
)

// Handler is the JSON API the browser front end consumes. Rendering,
// navigation and printing live in the front end; this layer only
// exposes the entity store and the rule engine behind it.
type Handler struct {
	userService       service.UserService
	rosterService     service.RosterService
	scheduleService   service.ScheduleService
	matchService      service.MatchService
	attendanceService service.AttendanceService
	syncService       service.SyncService
	policy            service.PolicyService
	logger            *zap.Logger
}

func NewHandler(
	userService service.UserService,
	rosterService service.RosterService,
	scheduleService service.ScheduleService,
	matchService service.MatchService,
	attendanceService service.AttendanceService,
	syncService service.SyncService,
	policy service.PolicyService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		userService:       userService,
		rosterService:     rosterService,
		scheduleService:   scheduleService,
		matchService:      matchService,
		attendanceService: attendanceService,
		syncService:       syncService,
		policy:            policy,
		logger:            logger,
	}
}

func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/login", h.Login)
	mux.HandleFunc("GET /api/state", h.State)

	mux.HandleFunc("GET /api/people", h.ListPeople)
	mux.HandleFunc("POST /api/people", h.CreatePerson)
	mux.HandleFunc("PUT /api/people/{id}", h.UpdatePerson)
	mux.HandleFunc("DELETE /api/people/{id}", h.DeletePerson)

	mux.HandleFunc("GET /api/categories", h.ListCategories)
	mux.HandleFunc("POST /api/categories", h.CreateCategory)
	mux.HandleFunc("DELETE /api/categories/{id}", h.DeleteCategory)

	mux.HandleFunc("GET /api/sessions", h.ListSessions)
	mux.HandleFunc("POST /api/sessions", h.CreateSession)
	mux.HandleFunc("PUT /api/sessions/{id}", h.UpdateSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.DeleteSession)

	mux.HandleFunc("GET /api/sessions/{id}/attendance", h.SessionAttendance)
	mux.HandleFunc("POST /api/sessions/{id}/attendance", h.CommitAttendance)

	mux.HandleFunc("GET /api/matches", h.ListMatches)
	mux.HandleFunc("POST /api/matches", h.SaveMatch)
	mux.HandleFunc("DELETE /api/matches/{id}", h.DeleteMatch)
	mux.HandleFunc("POST /api/matches/{id}/substitution", h.RecordSubstitution)

	mux.HandleFunc("POST /api/sync", h.TriggerSync)
	mux.HandleFunc("GET /api/sync/status", h.SyncStatus)

	return mux
}

// currentUser resolves the acting user from the Authorization header.
// nil means unauthenticated; the policy engine denies everything for
// a nil user, so handlers only need a single check.
func (h *Handler) currentUser(r *http.Request) *models.AppUser {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return nil
	}
	user, err := h.userService.FromToken(token)
	if err != nil {
		return nil
	}
	return user
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, user, err := h.userService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.Error("login failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "login failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// State returns everything the acting user may view, in one payload:
// the front end renders from this snapshot.
func (h *Handler) State(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"people":     h.viewablePeople(user),
		"sessions":   h.viewableSessions(user),
		"matches":    h.viewableMatches(user),
		"categories": h.rosterService.Categories(),
	})
}

func (h *Handler) viewablePeople(user *models.AppUser) []models.Person {
	out := []models.Person{}
	for _, p := range h.rosterService.People() {
		if h.policy.CanAct(user, service.ActionViewEntity, service.ActionContext{Category: p.Category}) {
			out = append(out, p)
		}
	}
	return out
}

func (h *Handler) viewableSessions(user *models.AppUser) []models.TrainingSession {
	out := []models.TrainingSession{}
	for _, s := range h.scheduleService.Sessions() {
		if h.policy.CanAct(user, service.ActionViewEntity, service.ActionContext{Category: s.Category}) {
			out = append(out, s)
		}
	}
	return out
}

func (h *Handler) viewableMatches(user *models.AppUser) []models.Match {
	out := []models.Match{}
	for _, m := range h.matchService.Matches() {
		if h.policy.CanAct(user, service.ActionViewEntity, service.ActionContext{Category: m.Category}) {
			out = append(out, m)
		}
	}
	return out
}

func (h *Handler) ListPeople(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, h.viewablePeople(user))
}

func (h *Handler) CreatePerson(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)

	var person models.Person
	if err := json.NewDecoder(r.Body).Decode(&person); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.policy.CanAct(user, service.ActionCreateEntity, service.ActionContext{Category: person.Category}) {
		writeError(w, http.StatusForbidden, "permission denied")
		return
	}

	if err := h.rosterService.CreatePerson(&person); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, person)
}

func (h *Handler) UpdatePerson(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)

	var person models.Person
	if err := json.NewDecoder(r.Body).Decode(&person); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	person.ID = r.PathValue("id")

	if !h.policy.CanAct(user, service.ActionEditEntity, service.ActionContext{Category: person.Category}) {
		writeError(w, http.StatusForbidden, "permission denied")
		return
	}

	if err := h.rosterService.UpdatePerson(&person); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, person)
}

func (h *Handler) DeletePerson(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	id := r.PathValue("id")

	person, err := h.rosterService.PersonByID(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !h.policy.CanAct(user, service.ActionDeleteEntity, service.ActionContext{Category: person.Category}) {
		writeError(w, http.StatusForbidden, "permission denied")
		return
	}

	if err := h.rosterService.DeletePerson(id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	if h.currentUser(r) == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, h.rosterService.Categories())
}

func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		writeError(w, http.StatusBadRequest, "category name required")
		return
	}

	// Categories partition everything else, so only managers touch
	// them; a category-admin's restriction can never match a category
	// that does not exist yet.
	if user == nil || user.Role != models.RoleManager {
		writeError(w, http.StatusForbidden, "permission denied")
		return
	}

	category, err := h.rosterService.CreateCategory(req.Name)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, category)
}

func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil || user.Role != models.RoleManager {
		writeError(w, http.StatusForbidden, "permission denied")
		return
	}

	if err := h.rosterService.DeleteCategory(r.PathValue("id")); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) ListSessions(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, h.viewableSessions(user))
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)

	var session models.TrainingSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.policy.CanAct(user, service.ActionCreateEntity, service.ActionContext{Category: session.Category}) {
		writeError(w, http.StatusForbidden, "permission denied")
		return
	}

	if err := h.scheduleService.CreateSession(&session); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

func (h *Handler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)

	var session models.TrainingSession
	if err := json.NewDecoder(r.Body).Decode(&session); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	session.ID = r.PathValue("id")

	if !h.policy.CanAct(user, service.ActionEditEntity, service.ActionContext{Category: session.Category}) {
		writeError(w, http.StatusForbidden, "permission denied")
		return
	}

	if err := h.scheduleService.UpdateSession(&session); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	id := r.PathValue("id")

	session, err := h.scheduleService.SessionByID(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !h.policy.CanAct(user, service.ActionDeleteEntity, service.ActionContext{Category: session.Category}) {
		writeError(w, http.StatusForbidden, "permission denied")
		return
	}

	if err := h.scheduleService.DeleteSession(id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SessionAttendance returns the session's persisted records together
// with the lock state, freshly evaluated; the front end re-requests
// this to observe the unlocked-to-locked transition.
func (h *Handler) SessionAttendance(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	id := r.PathValue("id")

	session, err := h.scheduleService.SessionByID(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !h.policy.CanAct(user, service.ActionViewEntity, service.ActionContext{Category: session.Category}) {
		writeError(w, http.StatusForbidden, "permission denied")
		return
	}

	records := h.attendanceService.GetBySession(id)
	if records == nil {
		records = []models.AttendanceRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"locked":  h.attendanceService.IsLocked(session.ScheduledAt, time.Now()),
		"records": records,
	})
}

func (h *Handler) CommitAttendance(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)

	var req struct {
		Staged map[string]models.StagedEdit `json:"staged"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	records, err := h.attendanceService.Record(user, r.PathValue("id"), req.Staged)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	if user == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}
	writeJSON(w, http.StatusOK, h.viewableMatches(user))
}

// SaveMatch replaces the whole match document: the editor posts the
// complete match back and the last writer wins.
func (h *Handler) SaveMatch(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)

	var match models.Match
	if err := json.NewDecoder(r.Body).Decode(&match); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	action := service.ActionEditEntity
	if match.ID == "" {
		action = service.ActionCreateEntity
	}
	if !h.policy.CanAct(user, action, service.ActionContext{Category: match.Category}) {
		writeError(w, http.StatusForbidden, "permission denied")
		return
	}

	if err := h.matchService.SaveMatch(&match); err != nil {
		h.writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, match)
}

func (h *Handler) DeleteMatch(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	id := r.PathValue("id")

	match, err := h.matchService.MatchByID(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !h.policy.CanAct(user, service.ActionDeleteEntity, service.ActionContext{Category: match.Category}) {
		writeError(w, http.StatusForbidden, "permission denied")
		return
	}

	if err := h.matchService.DeleteMatch(id); err != nil {
		h.writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) RecordSubstitution(w http.ResponseWriter, r *http.Request) {
	user := h.currentUser(r)
	id := r.PathValue("id")

	var req struct {
		SubIndex         *int   `json:"sub_index"`
		ReplacedPlayerID string `json:"replaced_player_id"`
		Minute           string `json:"minute"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SubIndex == nil {
		writeError(w, http.StatusBadRequest, "sub_index required")
		return
	}

	match, err := h.matchService.MatchByID(id)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}
	if !h.policy.CanAct(user, service.ActionEditEntity, service.ActionContext{Category: match.Category}) {
		writeError(w, http.StatusForbidden, "permission denied")
		return
	}

	updated, err := h.matchService.RecordSubstitution(id, *req.SubIndex, req.ReplacedPlayerID, req.Minute)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.writeServiceError(w, err)
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// TriggerSync starts a reconciliation pull. Sync failures are not user
// errors: a completed pull always answers 200 and lists per-collection
// failures for the status indicator.
func (h *Handler) TriggerSync(w http.ResponseWriter, r *http.Request) {
	if h.currentUser(r) == nil {
		writeError(w, http.StatusUnauthorized, "authentication required")
		return
	}

	result, err := h.syncService.Pull()
	if err != nil {
		if errors.Is(err, service.ErrSyncInProgress) {
			writeError(w, http.StatusConflict, "sync already in progress")
			return
		}
		h.logger.Error("sync trigger failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "sync failed")
		return
	}

	failures := make(map[string]string, len(result.Failed))
	for name, ferr := range result.Failed {
		failures[name] = ferr.Error()
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"updated": result.Updated,
		"failed":  failures,
	})
}

func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{
		"in_progress": h.syncService.InProgress(),
	})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, service.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "permission denied")
	case errors.Is(err, service.ErrSessionLocked):
		writeError(w, http.StatusConflict, "session attendance is locked")
	case errors.Is(err, service.ErrNothingToSave):
		writeError(w, http.StatusBadRequest, "nothing to save")
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
