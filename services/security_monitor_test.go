package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityMonitor(t *testing.T) {
	clock := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	m := NewSecurityMonitor()
	m.now = func() time.Time { return clock }

	t.Run("Below threshold", func(t *testing.T) {
		for i := 0; i < failedKeyThreshold-1; i++ {
			m.TrackFailedAdminKey("203.0.113.5")
		}
		assert.Empty(t, m.RecentAlerts())
	})

	t.Run("Alerts once", func(t *testing.T) {
		m.TrackFailedAdminKey("203.0.113.5")
		m.TrackFailedAdminKey("203.0.113.5")
		alerts := m.RecentAlerts()
		require.Len(t, alerts, 1)
		assert.Equal(t, "203.0.113.5", alerts[0].IP)
		assert.Equal(t, "CRITICAL", alerts[0].Level)
	})

	t.Run("Window expires", func(t *testing.T) {
		clock = clock.Add(2 * time.Hour)
		m.TrackFailedAdminKey("203.0.113.5")
		assert.Len(t, m.RecentAlerts(), 1)
		assert.Len(t, m.failures["203.0.113.5"], 1)
		_, alerted := m.alertedIPs["203.0.113.5"]
		assert.False(t, alerted)
	})

	t.Run("Separate IPs", func(t *testing.T) {
		for i := 0; i < failedKeyThreshold; i++ {
			m.TrackFailedAdminKey("198.51.100.9")
		}
		alerts := m.RecentAlerts()
		require.Len(t, alerts, 2)
		assert.Equal(t, "198.51.100.9", alerts[0].IP)
	})
}
