package et

import (
	"time"

	"gonum.org/v1/gonum/floats"
)

// Series is a daily time series. Element i belongs to day i of the index it is passed with.
type Series []float64

// Fill returns a series of n copies of v, for quantities that are constant over the period.
func Fill(n int, v float64) Series {
	s := make(Series, n)
	for i := range s {
		s[i] = v
	}
	return s
}

// Site holds the fixed properties of the location being evaluated
type Site struct {
	Elevation float64 // metres above sea level
	Latitude  float64 // radians, positive north
}

// Meteo is the set of index-aligned daily inputs of one formula call. Optional
// series are left nil when they were not observed. Formulas never modify it.
type Meteo struct {
	Time []time.Time // one entry per day

	Tmax     Series // maximum temperature [°C]
	Tmin     Series // minimum temperature [°C]
	Wind     Series // mean wind speed at 2 m [m/s]
	Humidity Humidity

	Solar         Series // incoming solar radiation [MJ m-2 d-1]
	Net           Series // measured net radiation [MJ m-2 d-1]
	SoilHeatFlux  Series // [MJ m-2 d-1], zero when nil
	Sunshine      Series // actual sunshine duration n [hour]
	DaylightHours Series // maximum sunshine duration N [hour]
	ClearSky      Series // clear-sky radiation Rso [MJ m-2 d-1]
	LAI           Series // leaf area index [-]
}

// Len returns the number of days in the call
func (m *Meteo) Len() int { return len(m.Time) }

type namedSeries struct {
	name string
	s    Series
}

func (m *Meteo) named() []namedSeries {
	ns := []namedSeries{
		{"tmax", m.Tmax},
		{"tmin", m.Tmin},
		{"wind", m.Wind},
		{"solar", m.Solar},
		{"net", m.Net},
		{"sflux", m.SoilHeatFlux},
		{"n", m.Sunshine},
		{"nn", m.DaylightHours},
		{"rso", m.ClearSky},
		{"lai", m.LAI},
	}
	return append(ns, m.Humidity.named()...)
}

// check verifies that every supplied series lines up with the day index and that
// each of the required inputs is present. need names the caller for error messages.
func (m *Meteo) check(need string, required ...string) error {
	n := m.Len()
	if n == 0 {
		return &MissingInputError{Input: "time", Need: need}
	}

	present := make(map[string]bool)
	for _, v := range m.named() {
		if v.s == nil {
			continue
		}
		if len(v.s) != n {
			return &ShapeMismatchError{Name: v.name, Got: len(v.s), Want: n}
		}
		present[v.name] = true
	}

	for _, r := range required {
		if !present[r] {
			return &MissingInputError{Input: r, Need: need}
		}
	}
	return nil
}

// soilHeatFlux returns G for day i
func (m *Meteo) soilHeatFlux(i int) float64 {
	if m.SoilHeatFlux == nil {
		return 0
	}
	return m.SoilHeatFlux[i]
}

// sameLength checks that every series has the length of the first one
func sameLength(series ...namedSeries) error {
	if len(series) == 0 {
		return nil
	}
	want := len(series[0].s)
	for _, v := range series[1:] {
		if len(v.s) != want {
			return &ShapeMismatchError{Name: v.name, Got: len(v.s), Want: want}
		}
	}
	return nil
}

// MeanTemperature returns (tmax + tmin) / 2 per day
func MeanTemperature(tmax, tmin Series) (Series, error) {
	if err := sameLength(namedSeries{"tmax", tmax}, namedSeries{"tmin", tmin}); err != nil {
		return nil, err
	}
	ta := make(Series, len(tmax))
	floats.AddTo(ta, tmax, tmin)
	floats.Scale(0.5, ta)
	return ta, nil
}

// mapSeries evaluates f for every day
func mapSeries(n int, f func(i int) float64) Series {
	out := make(Series, n)
	for i := range out {
		out[i] = f(i)
	}
	return out
}

// mapSeriesErr evaluates f for every day and stops at the first failure
func mapSeriesErr(n int, f func(i int) (float64, error)) (Series, error) {
	out := make(Series, n)
	for i := range out {
		v, err := f(i)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}
