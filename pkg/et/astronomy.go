package et

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// SolarConstant is Gsc in MJ m-2 min-1
const SolarConstant = 0.0820

// DayOfYear returns the ordinal day (1-366) of every entry in the index
func DayOfYear(index []time.Time) []int {
	days := make([]int, len(index))
	for i, t := range index {
		days[i] = t.YearDay()
	}
	return days
}

// DayOfYearJD returns the ordinal day (1-366) of a Julian Day
func DayOfYearJD(jd float64) int {
	return julian.JDToTime(jd).YearDay()
}

// IndexFromJD converts Julian Days into a daily time index
func IndexFromJD(jds []float64) []time.Time {
	index := make([]time.Time, len(jds))
	for i, jd := range jds {
		t := julian.JDToTime(jd).UTC()
		index[i] = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	}
	return index
}

// RelativeDistance is the inverse relative earth-sun distance dr (FAO-56 eq. 23)
func RelativeDistance(day int) float64 {
	return 1 + 0.033*math.Cos(2*math.Pi*float64(day)/365)
}

// SolarDeclination returns the solar declination in radians (FAO-56 eq. 24)
func SolarDeclination(day int) float64 {
	return 0.409 * math.Sin(2*math.Pi*float64(day)/365-1.39)
}

// SunsetAngle returns the sunset hour angle ωs in radians (FAO-56 eq. 25).
// Above the polar circles the sun may not rise or set at all; that case is
// reported as a DomainError instead of being clamped.
func SunsetAngle(lat, declination float64) (float64, error) {
	cosH := -math.Tan(lat) * math.Tan(declination)
	if math.IsNaN(cosH) {
		return 0, &DomainError{Quantity: "sunset_angle", Index: -1, Value: cosH, Reason: "undefined for latitude/declination"}
	}
	if cosH < -1 {
		return 0, &DomainError{Quantity: "sunset_angle", Index: -1, Value: cosH, Reason: "sun never sets (polar day)"}
	}
	if cosH > 1 {
		return 0, &DomainError{Quantity: "sunset_angle", Index: -1, Value: cosH, Reason: "sun never rises (polar night)"}
	}
	return math.Acos(cosH), nil
}

// DaylightHours returns the maximum possible sunshine duration N per day (FAO-56 eq. 34)
func DaylightHours(index []time.Time, lat float64) (Series, error) {
	days := DayOfYear(index)
	return mapSeriesErr(len(days), func(i int) (float64, error) {
		omega, err := SunsetAngle(lat, SolarDeclination(days[i]))
		if err != nil {
			return 0, asDomain(err, i)
		}
		return 24 / math.Pi * omega, nil
	})
}

// ExtraterrestrialRadiation returns Ra in MJ m-2 d-1 per day (FAO-56 eq. 21)
func ExtraterrestrialRadiation(index []time.Time, lat float64) (Series, error) {
	days := DayOfYear(index)
	return mapSeriesErr(len(days), func(i int) (float64, error) {
		ra, err := extraterrestrialDay(days[i], lat)
		if err != nil {
			return 0, asDomain(err, i)
		}
		return ra, nil
	})
}

func extraterrestrialDay(day int, lat float64) (float64, error) {
	dr := RelativeDistance(day)
	decl := SolarDeclination(day)
	omega, err := SunsetAngle(lat, decl)
	if err != nil {
		return 0, err
	}

	gsc := SolarConstant * 24 * 60 // 118.08 MJ m-2 d-1
	return gsc / math.Pi * dr * (omega*math.Sin(decl)*math.Sin(lat) +
		math.Cos(decl)*math.Cos(lat)*math.Sin(omega)), nil
}
