package solar

import (
	"math"
	"time"

	"github.com/sixdouglas/suncalc"
)

// Daylight describes where the sun is at a given instant
type Daylight struct {
	SunAltitude  float64 // degrees above the horizon
	IsDaytime    bool
	IsGoldenHour bool
	Sunrise      time.Time // suncalc's estimate, used to sanity check SunriseSunset
	Sunset       time.Time
}

// DaylightAt calculates sun altitude and suncalc's sunrise/sunset at t
func DaylightAt(t time.Time, coord GeoCoordinate) Daylight {
	position := suncalc.GetPosition(t, coord.Latitude, coord.Longitude)
	times := suncalc.GetTimes(t, coord.Latitude, coord.Longitude)

	// altitude is in radians
	altitudeDegrees := position.Altitude * (180.0 / math.Pi)

	return Daylight{
		SunAltitude:  altitudeDegrees,
		IsDaytime:    altitudeDegrees > 0,
		IsGoldenHour: altitudeDegrees > 0 && altitudeDegrees < 6,
		Sunrise:      times[suncalc.Sunrise].Value,
		Sunset:       times[suncalc.Sunset].Value,
	}
}
