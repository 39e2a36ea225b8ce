package health

import (
	"context"
	"sync"
	"time"
)

// DefaultCheckInterval bounds how often components are actually probed.
const DefaultCheckInterval = 10 * time.Second

// Component is a named dependency check. A failing Critical component makes
// the system critical; any other failure only degrades it.
type Component struct {
	Name     string
	Critical bool
	Check    func(ctx context.Context) error
	// Detail, when set, is attached to the report on every check.
	Detail func() any
}

// Monitor aggregates health status from various system components.
type Monitor struct {
	components []Component
	interval   time.Duration
	now        func() time.Time
	lastCheck  time.Time
	lastReport *HealthReport
	mu         sync.Mutex
}

// NewMonitor creates a new health monitor.
func NewMonitor(components ...Component) *Monitor {
	return &Monitor{
		components: components,
		interval:   DefaultCheckInterval,
		now:        time.Now,
	}
}

// SetInterval changes the probe rate limit. Zero probes on every call.
func (m *Monitor) SetInterval(d time.Duration) {
	m.mu.Lock()
	m.interval = d
	m.mu.Unlock()
}

// CheckHealth probes every component, reusing the previous report when it
// is younger than the check interval.
func (m *Monitor) CheckHealth(ctx context.Context) HealthReport {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Rate limit checks to avoid hammering the backend
	if m.lastReport != nil && m.now().Sub(m.lastCheck) < m.interval {
		return *m.lastReport
	}

	report := HealthReport{
		SystemStatus: StatusHealthy,
		Components:   make(map[string]ComponentHealth, len(m.components)),
	}
	for _, c := range m.components {
		h := ComponentHealth{Name: c.Name, Status: StatusHealthy}

		start := m.now()
		err := c.Check(ctx)
		h.LatencyMs = m.now().Sub(start).Milliseconds()
		if c.Detail != nil {
			h.Detail = c.Detail()
		}

		if err != nil {
			h.Error = err.Error()
			h.Status = StatusDegraded
			if c.Critical {
				h.Status = StatusCritical
			}
		}
		report.Components[c.Name] = h

		// Aggregate status (worst case wins)
		if h.Status == StatusCritical {
			report.SystemStatus = StatusCritical
		} else if h.Status == StatusDegraded && report.SystemStatus == StatusHealthy {
			report.SystemStatus = StatusDegraded
		}
	}

	report.CheckedAt = m.now()
	m.lastCheck = report.CheckedAt
	m.lastReport = &report
	return report
}
