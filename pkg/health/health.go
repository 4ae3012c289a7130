package health

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// Snapshot represents a point-in-time view of the relay process
type Snapshot struct {
	Status        string    `json:"status"`
	UptimeSeconds int64     `json:"uptime_seconds"`
	Timestamp     time.Time `json:"timestamp"`
	ActiveClients int       `json:"active_clients"`
	Goroutines    int       `json:"goroutines"`
	MemoryMB      uint64    `json:"memory_mb"`
}

// Monitor tracks process-level health metrics
type Monitor struct {
	startTime time.Time
	proc      *process.Process
}

// NewMonitor creates a health monitor anchored at process start
func NewMonitor() *Monitor {
	m := &Monitor{startTime: time.Now()}
	if p, err := process.NewProcess(int32(os.Getpid())); err == nil {
		m.proc = p
	}
	return m
}

// Uptime returns seconds since the monitor was created
func (m *Monitor) Uptime() int64 {
	return int64(time.Since(m.startTime).Seconds())
}

// Snapshot returns the current process health
func (m *Monitor) Snapshot(activeClients int) *Snapshot {
	return &Snapshot{
		Status:        "online",
		UptimeSeconds: m.Uptime(),
		Timestamp:     time.Now(),
		ActiveClients: activeClients,
		Goroutines:    runtime.NumGoroutine(),
		MemoryMB:      m.memoryMB(),
	}
}

// memoryMB reports resident memory, falling back to Go heap stats when the
// platform probe is unavailable
func (m *Monitor) memoryMB() uint64 {
	if m.proc != nil {
		if info, err := m.proc.MemoryInfo(); err == nil && info != nil {
			return info.RSS / 1024 / 1024
		}
	}
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	return stats.Alloc / 1024 / 1024
}
