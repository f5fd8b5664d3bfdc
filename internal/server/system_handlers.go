package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/di"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/modules/stability"
	"github.com/sneed-and-feed/INCARNATE-SOPHIA-5.2/internal/scheduler"
)

// SystemHandlers handles system-wide monitoring and operations endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	startupTime time.Time
	registry    *stability.SessionRegistry
	maxSessions int
	schedule    string
	scheduler   *scheduler.Scheduler
	driftJob    scheduler.Job
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, container *di.Container, jobs *di.JobInstances) *SystemHandlers {
	h := &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		startupTime: time.Now(),
		registry:    container.SessionRegistry,
		scheduler:   container.Scheduler,
	}
	if container.Config != nil {
		h.maxSessions = container.Config.MaxSessions
		h.schedule = container.Config.AutoRunSchedule
	}
	if jobs != nil && jobs.Drift != nil {
		h.driftJob = jobs.Drift
	}
	return h
}

// SystemStatusResponse represents the system status
type SystemStatusResponse struct {
	Status           string  `json:"status"`
	Uptime           string  `json:"uptime"`
	UptimeSeconds    float64 `json:"uptime_seconds"`
	Sessions         int     `json:"sessions"`
	MaxSessions      int     `json:"max_sessions"`
	MeanCoherence    float64 `json:"mean_coherence"`
	LeakingSessions  int     `json:"leaking_sessions"`
	TotalCorrections uint64  `json:"total_corrections"`
	TotalSteps       uint64  `json:"total_steps"`
	DriftSchedule    string  `json:"drift_schedule,omitempty"`
	CPUPercent       float64 `json:"cpu_percent"`
	RAMPercent       float64 `json:"ram_percent"`
	Goroutines       int     `json:"goroutines"`
	GoVersion        string  `json:"go_version"`
}

// sessionSummary aggregates the live sessions
type sessionSummary struct {
	count         int
	meanCoherence float64
	leaking       int
	corrections   uint64
	steps         uint64
}

func summarize(sessions []stability.SessionInfo) sessionSummary {
	sum := sessionSummary{count: len(sessions)}
	if len(sessions) == 0 {
		return sum
	}

	var coherence float64
	for _, s := range sessions {
		coherence += s.Coherence
		sum.corrections += s.Corrections
		sum.steps += s.TotalSteps
		if s.Charge < 0 {
			sum.leaking++
		}
	}
	sum.meanCoherence = coherence / float64(len(sessions))
	return sum
}

// HandleSystemStatus returns comprehensive system status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	h.log.Debug().Msg("Getting system status")

	sum := summarize(h.registry.List())
	cpuPercent, ramPercent := h.getSystemStats()
	uptime := time.Since(h.startupTime)

	h.writeJSON(w, SystemStatusResponse{
		Status:           "healthy",
		Uptime:           uptime.Round(time.Second).String(),
		UptimeSeconds:    uptime.Seconds(),
		Sessions:         sum.count,
		MaxSessions:      h.maxSessions,
		MeanCoherence:    sum.meanCoherence,
		LeakingSessions:  sum.leaking,
		TotalCorrections: sum.corrections,
		TotalSteps:       sum.steps,
		DriftSchedule:    h.schedule,
		CPUPercent:       cpuPercent,
		RAMPercent:       ramPercent,
		Goroutines:       runtime.NumGoroutine(),
		GoVersion:        runtime.Version(),
	})
}

// HandleTriggerDrift runs the drift job immediately
// POST /api/system/jobs/drift
func (h *SystemHandlers) HandleTriggerDrift(w http.ResponseWriter, r *http.Request) {
	if h.driftJob == nil || h.scheduler == nil {
		h.log.Warn().Msg("Drift job not registered")
		h.writeJSON(w, map[string]string{
			"status":  "error",
			"message": "Drift job not registered",
		})
		return
	}

	h.log.Info().Msg("Manual drift triggered")

	if err := h.scheduler.RunNow(h.driftJob); err != nil {
		h.log.Error().Err(err).Msg("Failed to run drift job")
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]string{
		"status":  "success",
		"message": "Drift completed successfully",
	})
}

// getSystemStats calculates CPU and RAM usage percentages
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	// 100ms sample keeps the status call responsive
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

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
