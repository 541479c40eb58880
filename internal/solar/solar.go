// Package solar computes sunrise and sunset from a calendar date and a
// geographic position using the Julian-date solar position approximation.
//
// Results are in UTC and accurate to a few minutes, which is plenty for
// timing a lighting transition.
package solar

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrSolarGeometryUndefined is returned when the sun never crosses the horizon
// on the requested date (polar day or polar night).
var ErrSolarGeometryUndefined = errors.New("solar geometry undefined")

const (
	j2000          = 2451545.0
	julianCorrect  = 0.0009
	axialTilt      = 23.45
	horizonRefract = -0.83
)

// GeoCoordinate is a position on earth in degrees. Longitude is east-positive.
type GeoCoordinate struct {
	Longitude float64
	Latitude  float64
}

// SunTimes holds sunrise and sunset of a single date, both in UTC
type SunTimes struct {
	Sunrise ClockTime
	Sunset  ClockTime
}

// JulianDay returns the Julian day number of the calendar date of t
func JulianDay(t time.Time) int {
	year, month, day := t.Date()
	a := (14 - int(month)) / 12
	y := year + 4800 - a
	m := int(month) + 12*a - 3
	return day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045
}

// SunriseSunset calculates sunrise and sunset for the calendar date of date at coord
func SunriseSunset(date time.Time, coord GeoCoordinate) (SunTimes, error) {
	jd := float64(JulianDay(date))

	// the formulas below count longitude positive towards the west
	lw := -coord.Longitude

	nStar := jd - j2000 - julianCorrect - lw/360
	n := math.Round(nStar)
	jStar := j2000 + julianCorrect + lw/360 + n

	m := math.Mod(357.5291+0.98560028*(jStar-j2000), 360)
	c := 1.9148*sinDeg(m) + 0.0200*sinDeg(2*m) + 0.0003*sinDeg(3*m)
	lambda := math.Mod(m+102.9372+c+180, 360)

	drift := 0.0053*sinDeg(m) - 0.0069*sinDeg(2*lambda)
	jTransit := jStar + drift

	delta := asinDeg(sinDeg(lambda) * sinDeg(axialTilt))

	cosH := (sinDeg(horizonRefract) - sinDeg(coord.Latitude)*sinDeg(delta)) /
		(cosDeg(coord.Latitude) * cosDeg(delta))
	if math.IsNaN(cosH) || cosH < -1 || cosH > 1 {
		return SunTimes{}, fmt.Errorf("%w: hour angle cosine %.4f out of range on %s at latitude %.4f",
			ErrSolarGeometryUndefined, cosH, date.Format(time.DateOnly), coord.Latitude)
	}
	h := acosDeg(cosH)

	jSet := j2000 + julianCorrect + (h+lw)/360 + n + drift
	jRise := jTransit - (jSet - jTransit)

	return SunTimes{
		Sunrise: clockFromJulian(jRise),
		Sunset:  clockFromJulian(jSet),
	}, nil
}

// clockFromJulian converts the fractional part of a Julian date to a time of day.
// Julian days start at noon, hence the half day shift.
func clockFromJulian(jd float64) ClockTime {
	jd += 0.5
	_, frac := math.Modf(jd)
	return NewClockTime(int(frac*secondsPerDay + 0.5))
}

func sinDeg(deg float64) float64 {
	return math.Sin(deg * math.Pi / 180)
}

func cosDeg(deg float64) float64 {
	return math.Cos(deg * math.Pi / 180)
}

func asinDeg(x float64) float64 {
	return math.Asin(x) * 180 / math.Pi
}

func acosDeg(x float64) float64 {
	return math.Acos(x) * 180 / math.Pi
}
