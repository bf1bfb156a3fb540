package services

import (
	"log"
	"sync"
	"time"
)

const (
	failedKeyWindow    = 10 * time.Minute
	failedKeyThreshold = 5
	alertCooldown      = time.Hour
	maxAlerts          = 100
)

// SecurityEventMonitor counts failed admin key attempts per IP and raises alerts
type SecurityEventMonitor struct {
	mu         sync.Mutex
	failures   map[string][]time.Time
	alertedIPs map[string]time.Time
	alerts     []SecurityAlert
	now        func() time.Time
}

// SecurityAlert represents a triggered security alert
type SecurityAlert struct {
	Timestamp time.Time `json:"timestamp"`
	IP        string    `json:"ip"`
	Reason    string    `json:"reason"`
	Level     string    `json:"level"` // "WARNING", "CRITICAL"
}

// Monitor is the global monitor instance
var Monitor = NewSecurityMonitor()

// NewSecurityMonitor creates an empty monitor
func NewSecurityMonitor() *SecurityEventMonitor {
	return &SecurityEventMonitor{
		failures:   make(map[string][]time.Time),
		alertedIPs: make(map[string]time.Time),
		now:        time.Now,
	}
}

// TrackFailedAdminKey records a rejected admin key and alerts after repeated failures
func (m *SecurityEventMonitor) TrackFailedAdminKey(ip string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.pruneLocked(now)

	m.failures[ip] = append(m.failures[ip], now)
	if len(m.failures[ip]) >= failedKeyThreshold {
		m.triggerAlertLocked(now, ip, "Repeated invalid admin API keys")
	}
}

// pruneLocked drops attempts outside the window and expired alert cooldowns
func (m *SecurityEventMonitor) pruneLocked(now time.Time) {
	windowStart := now.Add(-failedKeyWindow)
	for ip, attempts := range m.failures {
		kept := attempts[:0]
		for _, t := range attempts {
			if t.After(windowStart) {
				kept = append(kept, t)
			}
		}
		if len(kept) == 0 {
			delete(m.failures, ip)
		} else {
			m.failures[ip] = kept
		}
	}
	for ip, last := range m.alertedIPs {
		if now.Sub(last) >= alertCooldown {
			delete(m.alertedIPs, ip)
		}
	}
}

// triggerAlertLocked logs an alert at most once per hour per IP
func (m *SecurityEventMonitor) triggerAlertLocked(now time.Time, ip, reason string) {
	if _, alerted := m.alertedIPs[ip]; alerted {
		return
	}
	m.alertedIPs[ip] = now

	alert := SecurityAlert{Timestamp: now, IP: ip, Reason: reason, Level: "CRITICAL"}
	// Newest first
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxAlerts {
		m.alerts = m.alerts[:maxAlerts]
	}
	log.Printf("[SECURITY ALERT] %s from IP: %s", reason, ip)
}

// RecentAlerts returns a copy of recent alerts, newest first
func (m *SecurityEventMonitor) RecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SecurityAlert, len(m.alerts))
	copy(out, m.alerts)
	return out
}
