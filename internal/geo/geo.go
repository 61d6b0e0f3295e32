// Package geo provides great-circle distance and "HH:MM" clock arithmetic for
// the dispatch core.
package geo

import (
	"fmt"
	"math"
	"time"
)

const earthRadiusKM = 6371.0

// DistanceKM returns the haversine great-circle distance in kilometers between
// two coordinates.
func DistanceKM(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKM * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}

// ParseClock parses an "HH:MM" wall-clock string.
func ParseClock(clock string) (hour, minute int, err error) {
	if _, err := fmt.Sscanf(clock, "%d:%d", &hour, &minute); err != nil {
		return 0, 0, fmt.Errorf("invalid clock time %q: %w", clock, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid clock time %q", clock)
	}
	return hour, minute, nil
}

// AddMinutes adds minutes to an "HH:MM" clock string, wrapping past midnight
// the same way the queue packing always has.
func AddMinutes(clock string, minutes int) (string, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return "", err
	}
	total := (hour*60 + minute + minutes) % (24 * 60)
	if total < 0 {
		total += 24 * 60
	}
	return fmt.Sprintf("%02d:%02d", total/60, total%60), nil
}

// At anchors an "HH:MM" clock string onto the given date, keeping the date's
// location.
func At(date time.Time, clock string) (time.Time, error) {
	hour, minute, err := ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), hour, minute, 0, 0, date.Location()), nil
}
