package handlers

import (
	"context"
	"net/http"
	"sort"

	"go.uber.org/zap"

	"github.com/SamShahinDev/dirtfree-crm-sub004/core/board"
	"github.com/SamShahinDev/dirtfree-crm-sub004/core/models"
)

// TechnicianLister provides technician reference data for the workload
// view. The production implementation is repository.TechnicianRepository.
type TechnicianLister interface {
	List(ctx context.Context, activeOnly bool) ([]models.Technician, error)
}

// DashboardHandler handles workload dashboard API requests
type DashboardHandler struct {
	board *board.Service
	techs TechnicianLister
	log   *zap.SugaredLogger
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(svc *board.Service, techs TechnicianLister, log *zap.SugaredLogger) *DashboardHandler {
	return &DashboardHandler{board: svc, techs: techs, log: log}
}

// TechnicianWorkload is one technician's day across all zones.
type TechnicianWorkload struct {
	TechnicianID     string `json:"technician_id"`
	Name             string `json:"name,omitempty"`
	JobCount         int    `json:"job_count"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

// GetTechnicians handles GET /v1/technicians?active=true
func (h *DashboardHandler) GetTechnicians(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active") != "false"
	techs, err := h.techs.List(r.Context(), activeOnly)
	if err != nil {
		h.log.Errorw("technician list failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "failed to list technicians",
			"kind":  "internal",
		})
		return
	}
	items := make([]map[string]interface{}, 0, len(techs))
	for _, t := range techs {
		items = append(items, map[string]interface{}{
			"id":     t.ID,
			"name":   t.Name,
			"phone":  t.Phone,
			"active": t.Active,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"technicians": items})
}

// GetWorkload handles GET /v1/dashboard/workload?date=YYYY-MM-DD. It
// reuses the board aggregates, summing each technician across zones.
func (h *DashboardHandler) GetWorkload(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("date")
	if raw == "" {
		writeBadRequest(w, "date is required, expected YYYY-MM-DD")
		return
	}
	date, err := parseDateParam(raw)
	if err != nil {
		writeBadRequest(w, "invalid date, expected YYYY-MM-DD")
		return
	}

	b, err := h.board.Board(r.Context(), date)
	if err != nil {
		h.log.Errorw("workload fetch failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]interface{}{
			"error": "failed to load workload",
			"kind":  "internal",
		})
		return
	}

	names := make(map[string]string)
	if techs, err := h.techs.List(r.Context(), true); err != nil {
		// Names are decoration; the workload still renders without them.
		h.log.Warnw("technician lookup failed", "error", err)
	} else {
		for _, t := range techs {
			names[t.ID] = t.Name
		}
	}

	byTech := make(map[string]*TechnicianWorkload)
	for _, col := range b.Columns {
		for _, load := range col.Technicians {
			wl, ok := byTech[load.TechnicianID]
			if !ok {
				wl = &TechnicianWorkload{TechnicianID: load.TechnicianID, Name: names[load.TechnicianID]}
				byTech[load.TechnicianID] = wl
			}
			wl.JobCount += load.JobCount
			wl.EstimatedMinutes += load.EstimatedMinutes
		}
	}

	workloads := make([]TechnicianWorkload, 0, len(byTech))
	for _, wl := range byTech {
		workloads = append(workloads, *wl)
	}
	sort.Slice(workloads, func(i, j int) bool {
		return workloads[i].TechnicianID < workloads[j].TechnicianID
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"date":        raw,
		"technicians": workloads,
	})
}
