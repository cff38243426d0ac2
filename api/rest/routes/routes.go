package routes

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/SamShahinDev/dirtfree-crm-sub004/api/rest/handlers"
	"github.com/SamShahinDev/dirtfree-crm-sub004/core/board"
	"github.com/SamShahinDev/dirtfree-crm-sub004/core/repository"
)

// SetupRoutes configures all API routes
func SetupRoutes(r *mux.Router, db *repository.DB, boardSvc *board.Service, log *zap.SugaredLogger) {
	techRepo := repository.NewTechnicianRepository(db)
	boardHandler := handlers.NewBoardHandler(boardSvc, log)
	dashboardHandler := handlers.NewDashboardHandler(boardSvc, techRepo, log)

	r.Use(requestLogging(log))

	api := r.PathPrefix("/v1").Subrouter()

	// Board endpoints
	api.HandleFunc("/board", boardHandler.GetBoard).Methods("GET")
	api.HandleFunc("/board/next-slot", boardHandler.NextSlot).Methods("GET")
	api.HandleFunc("/board/validate-slot", boardHandler.ValidateSlot).Methods("GET")
	api.HandleFunc("/board/jobs/{id}/move", boardHandler.MoveCard).Methods("POST")
	api.HandleFunc("/board/jobs/{id}/reorder", boardHandler.Reorder).Methods("POST")
	api.HandleFunc("/board/jobs/{id}/assign-technician", boardHandler.AssignTechnicianQuick).Methods("POST")
	api.HandleFunc("/board/jobs/{id}/assign", boardHandler.AssignJob).Methods("POST")

	// Reference data and dashboard
	api.HandleFunc("/technicians", dashboardHandler.GetTechnicians).Methods("GET")
	api.HandleFunc("/dashboard/workload", dashboardHandler.GetWorkload).Methods("GET")
}

// requestLogging tags each request with an id and logs method, path,
// and duration.
func requestLogging(log *zap.SugaredLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := uuid.New().String()
			w.Header().Set("X-Request-ID", requestID)
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Debugw("request",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
