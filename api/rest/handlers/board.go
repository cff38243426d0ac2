package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/SamShahinDev/dirtfree-crm-sub004/core/board"
	"github.com/SamShahinDev/dirtfree-crm-sub004/core/models"
)

const dateFormat = "2006-01-02"

// BoardHandler handles dispatch board API requests
type BoardHandler struct {
	board *board.Service
	log   *zap.SugaredLogger
}

// NewBoardHandler creates a new board handler
func NewBoardHandler(svc *board.Service, log *zap.SugaredLogger) *BoardHandler {
	return &BoardHandler{board: svc, log: log}
}

// GetBoard handles GET /v1/board?date=YYYY-MM-DD
func (h *BoardHandler) GetBoard(w http.ResponseWriter, r *http.Request) {
	date, ok := h.parseDate(w, r.URL.Query().Get("date"))
	if !ok {
		return
	}

	b, err := h.board.Board(r.Context(), date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

// MoveCardRequest is the body for POST /v1/board/jobs/{id}/move. A null
// zone drops the card on the unassigned column.
type MoveCardRequest struct {
	Zone      *string `json:"zone"`
	Bucket    string  `json:"bucket"`
	PrevJobID string  `json:"prev_job_id"`
	NextJobID string  `json:"next_job_id"`
}

// MoveCard handles POST /v1/board/jobs/{id}/move
func (h *BoardHandler) MoveCard(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	var req MoveCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	bucket, err := models.ParseBucket(req.Bucket)
	if err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	input := board.MoveCardInput{
		JobID:     jobID,
		Bucket:    bucket,
		PrevJobID: req.PrevJobID,
		NextJobID: req.NextJobID,
	}
	if req.Zone != nil {
		zone, err := models.ParseZone(*req.Zone)
		if err != nil {
			writeBadRequest(w, err.Error())
			return
		}
		input.Zone = &zone
	}

	placement, err := h.board.MoveCard(r.Context(), input)
	if err != nil {
		h.writeError(w, err)
		return
	}

	resp := map[string]interface{}{
		"job_id":   jobID,
		"zone":     placement.Zone,
		"bucket":   placement.Bucket,
		"position": placement.Position,
	}
	if placement.Window.Start != nil {
		resp["time_start"] = placement.Window.Start.String()
		resp["time_end"] = placement.Window.End.String()
	}
	writeJSON(w, http.StatusOK, resp)
}

// ReorderRequest is the body for POST /v1/board/jobs/{id}/reorder.
type ReorderRequest struct {
	PrevJobID string `json:"prev_job_id"`
	NextJobID string `json:"next_job_id"`
}

// Reorder handles POST /v1/board/jobs/{id}/reorder
func (h *BoardHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	var req ReorderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	position, err := h.board.Reorder(r.Context(), jobID, req.PrevJobID, req.NextJobID)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":   jobID,
		"position": position,
	})
}

// AssignRequest is the body for both assignment endpoints. ScheduledDate
// is only honored by the full assign endpoint.
type AssignRequest struct {
	TechnicianID  string `json:"technician_id"`
	ScheduledDate string `json:"scheduled_date"`
}

// AssignTechnicianQuick handles POST /v1/board/jobs/{id}/assign-technician
func (h *BoardHandler) AssignTechnicianQuick(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.TechnicianID == "" {
		writeBadRequest(w, "technician_id is required")
		return
	}

	if err := h.board.AssignTechnicianQuick(r.Context(), jobID, req.TechnicianID); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job_id":        jobID,
		"technician_id": req.TechnicianID,
	})
}

// AssignJob handles POST /v1/board/jobs/{id}/assign
func (h *BoardHandler) AssignJob(w http.ResponseWriter, r *http.Request) {
	jobID := mux.Vars(r)["id"]

	var req AssignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if req.TechnicianID == "" {
		writeBadRequest(w, "technician_id is required")
		return
	}

	var scheduledDate *time.Time
	if req.ScheduledDate != "" {
		parsed, err := time.Parse(dateFormat, req.ScheduledDate)
		if err != nil {
			writeBadRequest(w, "invalid scheduled_date, expected YYYY-MM-DD")
			return
		}
		scheduledDate = &parsed
	}

	if err := h.board.AssignJob(r.Context(), jobID, req.TechnicianID, scheduledDate); err != nil {
		h.writeError(w, err)
		return
	}
	resp := map[string]interface{}{
		"job_id":        jobID,
		"technician_id": req.TechnicianID,
	}
	if scheduledDate != nil {
		resp["scheduled_date"] = scheduledDate.Format(dateFormat)
	}
	writeJSON(w, http.StatusOK, resp)
}

// ValidateSlot handles GET /v1/board/validate-slot. It checks duration
// and business-hour rules only; conflicts are reported by the mutating
// endpoints.
func (h *BoardHandler) ValidateSlot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	date, ok := h.parseDate(w, q.Get("date"))
	if !ok {
		return
	}
	start, err := models.ParseTimeOfDay(q.Get("start"))
	if err != nil {
		writeBadRequest(w, "invalid start, expected HH:MM")
		return
	}
	end, err := models.ParseTimeOfDay(q.Get("end"))
	if err != nil {
		writeBadRequest(w, "invalid end, expected HH:MM")
		return
	}

	if err := h.board.ValidateSlot(start.On(date), end.On(date)); err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"valid": false,
			"error": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"valid": true})
}

// NextSlot handles GET /v1/board/next-slot
func (h *BoardHandler) NextSlot(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	technicianID := q.Get("technician_id")
	if technicianID == "" {
		writeBadRequest(w, "technician_id is required")
		return
	}
	date, ok := h.parseDate(w, q.Get("date"))
	if !ok {
		return
	}

	duration := 60
	if d := q.Get("duration_minutes"); d != "" {
		parsed, err := strconv.Atoi(d)
		if err != nil || parsed <= 0 {
			writeBadRequest(w, "invalid duration_minutes")
			return
		}
		duration = parsed
	}

	preferred := date
	if p := q.Get("preferred_start"); p != "" {
		tod, err := models.ParseTimeOfDay(p)
		if err != nil {
			writeBadRequest(w, "invalid preferred_start, expected HH:MM")
			return
		}
		preferred = tod.On(date)
	}

	slot, err := h.board.NextSlot(r.Context(), technicianID, preferred, duration, date)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if slot == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{"available": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"available":  true,
		"slot_start": slot.Start.Format("15:04"),
		"slot_end":   slot.End.Format("15:04"),
		"date":       date.Format(dateFormat),
	})
}

func (h *BoardHandler) parseDate(w http.ResponseWriter, raw string) (time.Time, bool) {
	if raw == "" {
		writeBadRequest(w, "date is required, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	date, err := time.Parse(dateFormat, raw)
	if err != nil {
		writeBadRequest(w, "invalid date, expected YYYY-MM-DD")
		return time.Time{}, false
	}
	return date, true
}

// writeError maps a board action error onto an HTTP status and a
// structured body the UI can turn into a specific message.
func (h *BoardHandler) writeError(w http.ResponseWriter, err error) {
	kind := board.Kind(err)
	status := http.StatusInternalServerError
	switch kind {
	case "not_found":
		status = http.StatusNotFound
	case "terminal_status", "conflict":
		status = http.StatusConflict
	case "invalid_time_slot":
		status = http.StatusUnprocessableEntity
	}

	body := map[string]interface{}{
		"error": err.Error(),
		"kind":  kind,
	}
	var conflictErr *board.ConflictError
	if errors.As(err, &conflictErr) {
		ids := make([]string, 0, len(conflictErr.Conflicts))
		for _, job := range conflictErr.Conflicts {
			ids = append(ids, job.ID)
		}
		body["conflicts"] = ids
	}
	if status == http.StatusInternalServerError {
		h.log.Errorw("board action failed", "kind", kind, "error", err)
	}
	writeJSON(w, status, body)
}

func parseDateParam(raw string) (time.Time, error) {
	return time.Parse(dateFormat, raw)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeBadRequest(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusBadRequest, map[string]interface{}{
		"error": message,
		"kind":  "bad_request",
	})
}
