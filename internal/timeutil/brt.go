package timeutil

import (
	"time"
)

// BRT is the Brasília time location (UTC-3)
var BRT *time.Location

func init() {
	var err error
	BRT, err = time.LoadLocation("America/Sao_Paulo")
	if err != nil {
		// Fallback: create fixed zone if America/Sao_Paulo not available
		BRT = time.FixedZone("BRT", -3*60*60) // UTC-3
	}
}

// NowBRT returns the current time in BRT
func NowBRT() time.Time {
	return time.Now().In(BRT)
}

// ToBRT converts any time to BRT
func ToBRT(t time.Time) time.Time {
	return t.In(BRT)
}

// ParseInBRT parses a time string and returns it in BRT
func ParseInBRT(layout, value string) (time.Time, error) {
	t, err := time.ParseInLocation(layout, value, BRT)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// FormatBRT formats a time in BRT using the standard display layout
func FormatBRT(t time.Time) string {
	return t.In(BRT).Format(DateTimeLayout)
}

// StartOfDay returns the start of day (00:00:00) in BRT for the given time
func StartOfDay(t time.Time) time.Time {
	brt := t.In(BRT)
	return time.Date(brt.Year(), brt.Month(), brt.Day(), 0, 0, 0, 0, BRT)
}

// EndOfDay returns the end of day (23:59:59) in BRT for the given time
func EndOfDay(t time.Time) time.Time {
	brt := t.In(BRT)
	return time.Date(brt.Year(), brt.Month(), brt.Day(), 23, 59, 59, 999999999, BRT)
}

// Common layouts for BRT formatting
const (
	DateLayout     = "2006-01-02"
	TimeLayout     = "15:04:05"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006, 03:04 PM"
)
