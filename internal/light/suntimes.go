package light

import (
	"fmt"
	"sync"
	"time"

	"github.com/saaga0h/natlight/internal/solar"
)

// SunCache remembers sunrise and sunset for the most recent calendar date and
// coordinate. Failed calculations are not cached.
type SunCache struct {
	mu    sync.Mutex
	date  string
	coord solar.GeoCoordinate
	times solar.SunTimes
	valid bool
}

// NewSunCache creates an empty sun cache
func NewSunCache() *SunCache {
	return &SunCache{}
}

// Get returns the sun times for the calendar date of t at coord
func (sc *SunCache) Get(t time.Time, coord solar.GeoCoordinate) (solar.SunTimes, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	date := t.Format(time.DateOnly)
	if sc.valid && sc.date == date && sc.coord == coord {
		return sc.times, nil
	}

	times, err := solar.SunriseSunset(t, coord)
	if err != nil {
		sc.valid = false
		return solar.SunTimes{}, fmt.Errorf("failed to calculate sun times for %s: %w", date, err)
	}

	sc.date = date
	sc.coord = coord
	sc.times = times
	sc.valid = true

	return times, nil
}

// Invalidate forgets the cached date
func (sc *SunCache) Invalidate() {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.valid = false
}
