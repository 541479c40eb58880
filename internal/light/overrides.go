package light

import (
	"sync"
	"time"
)

// OverrideManager tracks manual overrides per location. While an override is
// active the agent stops publishing colours for that location.
type OverrideManager struct {
	mu        sync.RWMutex
	overrides map[string]time.Time
	now       func() time.Time
}

// NewOverrideManager creates a new override manager
func NewOverrideManager() *OverrideManager {
	return &OverrideManager{
		overrides: make(map[string]time.Time),
		now:       time.Now,
	}
}

// SetManualOverride sets a manual override for a location and returns its expiry
func (om *OverrideManager) SetManualOverride(location string, duration time.Duration) time.Time {
	om.mu.Lock()
	defer om.mu.Unlock()

	expiresAt := om.now().Add(duration)
	om.overrides[location] = expiresAt

	return expiresAt
}

// CheckManualOverride checks if a manual override is active for a location
// Returns true if active, false if not active or expired
func (om *OverrideManager) CheckManualOverride(location string) bool {
	om.mu.Lock()
	defer om.mu.Unlock()

	expiresAt, exists := om.overrides[location]
	if !exists {
		return false
	}

	if om.now().After(expiresAt) {
		delete(om.overrides, location)
		return false
	}

	return true
}

// ExpiresAt returns when the active override for a location ends
func (om *OverrideManager) ExpiresAt(location string) (time.Time, bool) {
	om.mu.RLock()
	defer om.mu.RUnlock()

	expiresAt, exists := om.overrides[location]
	if !exists || om.now().After(expiresAt) {
		return time.Time{}, false
	}
	return expiresAt, true
}

// ClearManualOverride removes a manual override for a location
func (om *OverrideManager) ClearManualOverride(location string) bool {
	om.mu.Lock()
	defer om.mu.Unlock()

	_, exists := om.overrides[location]
	if exists {
		delete(om.overrides, location)
		return true
	}

	return false
}

// CleanupExpiredOverrides removes all expired overrides
func (om *OverrideManager) CleanupExpiredOverrides() int {
	om.mu.Lock()
	defer om.mu.Unlock()

	now := om.now()
	cleaned := 0

	for location, expiresAt := range om.overrides {
		if now.After(expiresAt) {
			delete(om.overrides, location)
			cleaned++
		}
	}

	return cleaned
}
