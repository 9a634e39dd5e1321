package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/varuna/varuna/internal/database"
	"github.com/varuna/varuna/internal/domain"
	"github.com/varuna/varuna/internal/scheduler"
)

// SystemHandlers serves health, system info, and job trigger endpoints.
type SystemHandlers struct {
	databases map[string]*database.DB
	scheduler *scheduler.Scheduler
	startTime time.Time
	log       zerolog.Logger
}

// NewSystemHandlers creates new system handlers
func NewSystemHandlers(
	log zerolog.Logger,
	databases map[string]*database.DB,
	sched *scheduler.Scheduler,
) *SystemHandlers {
	return &SystemHandlers{
		databases: databases,
		scheduler: sched,
		startTime: time.Now(),
		log:       log.With().Str("handler", "system").Logger(),
	}
}

// HandleHealth reports service and database health.
// GET /health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	healthy := true
	databases := make(map[string]string, len(h.databases))
	for name, db := range h.databases {
		if err := db.QuickCheck(ctx); err != nil {
			healthy = false
			databases[name] = "unavailable"
			continue
		}
		databases[name] = "ok"
	}

	status := http.StatusOK
	overall := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	h.writeJSON(w, status, map[string]interface{}{
		"status":         overall,
		"databases":      databases,
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
	})
}

// HandleSystemInfo reports process and database statistics.
// GET /api/system/info
func (h *SystemHandlers) HandleSystemInfo(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.systemStats()

	dbStats := make(map[string]interface{}, len(h.databases))
	for name, db := range h.databases {
		stats, err := db.GetStats()
		if err != nil {
			h.log.Warn().Err(err).Str("database", name).Msg("Failed to get database stats")
			continue
		}
		dbStats[name] = map[string]interface{}{
			"size_bytes":     stats.SizeBytes,
			"wal_size_bytes": stats.WALSizeBytes,
			"page_count":     stats.PageCount,
			"freelist_count": stats.FreelistCount,
		}
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
		"go_version":     runtime.Version(),
		"goroutines":     runtime.NumGoroutine(),
		"cpu_percent":    cpuPercent,
		"memory_percent": memPercent,
		"databases":      dbStats,
	})
}

// HandleListJobs returns the registered scheduler jobs.
// GET /api/system/jobs
func (h *SystemHandlers) HandleListJobs(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"jobs": h.scheduler.JobNames(),
	})
}

// HandleRunJob triggers a scheduled job immediately.
// POST /api/system/jobs/{jobName}/run
func (h *SystemHandlers) HandleRunJob(w http.ResponseWriter, r *http.Request) {
	jobName := chi.URLParam(r, "jobName")
	if jobName == "" {
		h.writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Job name is required"})
		return
	}

	h.log.Info().Str("job", jobName).Msg("Manual job trigger")

	if err := h.scheduler.RunNow(jobName); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrNotFound) {
			status = http.StatusNotFound
		}
		h.writeJSON(w, status, map[string]string{"error": err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{
		"status": "success",
		"job":    jobName,
	})
}

// systemStats returns CPU and RAM usage percentages. A short sampling
// interval keeps the endpoint responsive.
func (h *SystemHandlers) systemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
