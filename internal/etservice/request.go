package etservice

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/chrissnell/evapo/pkg/config"
	"github.com/chrissnell/evapo/pkg/et"
)

// ErrInvalidRequest is returned for requests whose index or location cannot
// be interpreted
var ErrInvalidRequest = errors.New("invalid request")

// Request is a self-contained evaluation: a location, a daily index and the
// observed series. Days are given either as dates or as Julian Days.
type Request struct {
	Latitude  float64 `json:"latitude"`  // degrees
	Elevation float64 `json:"elevation"` // metres

	Dates      []string  `json:"dates,omitempty"` // YYYY-MM-DD
	JulianDays []float64 `json:"julian_days,omitempty"`

	Tmax          []float64 `json:"tmax,omitempty"`
	Tmin          []float64 `json:"tmin,omitempty"`
	Wind          []float64 `json:"wind,omitempty"`
	RHMax         []float64 `json:"rh_max,omitempty"`
	RHMin         []float64 `json:"rh_min,omitempty"`
	RHMean        []float64 `json:"rh_mean,omitempty"`
	Solar         []float64 `json:"solar,omitempty"`
	Net           []float64 `json:"net,omitempty"`
	SoilHeatFlux  []float64 `json:"soil_heat_flux,omitempty"`
	Sunshine      []float64 `json:"sunshine,omitempty"`
	DaylightHours []float64 `json:"daylight_hours,omitempty"`
	ClearSky      []float64 `json:"clear_sky,omitempty"`
	LAI           []float64 `json:"lai,omitempty"`

	Coefficients config.CoefficientData `json:"coefficients,omitempty"`
}

// Index returns the daily index of the request
func (r *Request) Index() ([]time.Time, error) {
	switch {
	case len(r.Dates) > 0 && len(r.JulianDays) > 0:
		return nil, fmt.Errorf("%w: give either dates or julian_days, not both", ErrInvalidRequest)
	case len(r.JulianDays) > 0:
		return et.IndexFromJD(r.JulianDays), nil
	}

	index := make([]time.Time, len(r.Dates))
	for i, d := range r.Dates {
		t, err := time.Parse(time.DateOnly, d)
		if err != nil {
			return nil, fmt.Errorf("%w: dates[%d]: %v", ErrInvalidRequest, i, err)
		}
		index[i] = t
	}
	return index, nil
}

// Humidity picks the humidity variant from the series present. Extremes win
// over a mean when both are given.
func (r *Request) Humidity() et.Humidity {
	switch {
	case r.RHMax != nil && r.RHMin != nil:
		return et.RHExtremes(r.RHMax, r.RHMin)
	case r.RHMax != nil:
		return et.RHMaxOnly(r.RHMax)
	case r.RHMin != nil:
		return et.RHMinOnly(r.RHMin)
	case r.RHMean != nil:
		return et.RHMean(r.RHMean)
	}
	return et.Humidity{}
}

// Meteo builds the inputs of a formula call. Series lengths are checked by
// the formulas themselves.
func (r *Request) Meteo() (*et.Meteo, error) {
	index, err := r.Index()
	if err != nil {
		return nil, err
	}
	return &et.Meteo{
		Time:          index,
		Tmax:          r.Tmax,
		Tmin:          r.Tmin,
		Wind:          r.Wind,
		Humidity:      r.Humidity(),
		Solar:         r.Solar,
		Net:           r.Net,
		SoilHeatFlux:  r.SoilHeatFlux,
		Sunshine:      r.Sunshine,
		DaylightHours: r.DaylightHours,
		ClearSky:      r.ClearSky,
		LAI:           r.LAI,
	}, nil
}

// Site returns the location of the request
func (r *Request) Site() (et.Site, et.Params, error) {
	if math.Abs(r.Latitude) > 90 {
		return et.Site{}, et.Params{}, fmt.Errorf("%w: latitude %.2f out of range", ErrInvalidRequest, r.Latitude)
	}
	site, params, _, err := SiteParams(config.SiteData{
		Name:         "request",
		Latitude:     r.Latitude,
		Elevation:    r.Elevation,
		Method:       config.DefaultMethod,
		Coefficients: r.Coefficients,
	})
	if err != nil {
		return et.Site{}, et.Params{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	return site, params, nil
}

// Result is the outcome of evaluating a Request. NaN values are reported as
// null.
type Result struct {
	Method string     `json:"method"`
	Dates  []string   `json:"dates"`
	ET     []*float64 `json:"et"`

	Components *Components `json:"components,omitempty"`
}

// Components are the FAO-1990 intermediate terms
type Components struct {
	Longwave    []*float64 `json:"longwave"`
	Shortwave   []*float64 `json:"shortwave"`
	Radiative   []*float64 `json:"radiative"`
	Aerodynamic []*float64 `json:"aerodynamic"`
}

// EvaluateRequest runs method over the request
func (s *Service) EvaluateRequest(method et.Method, r *Request) (Result, error) {
	m, err := r.Meteo()
	if err != nil {
		return Result{}, err
	}
	site, params, err := r.Site()
	if err != nil {
		return Result{}, err
	}

	res := Result{Method: method.String(), Dates: FormatDays(m.Time)}

	if method == et.MethodFAO1990 {
		start := time.Now()
		out, err := et.FAO1990(m, site, params.FAO1990)
		s.metrics.ObserveComputation(method.String(), m.Len(), time.Since(start), err)
		if err != nil {
			return Result{}, err
		}
		res.ET = Nullable(out.ET)
		res.Components = &Components{
			Longwave:    Nullable(out.Longwave),
			Shortwave:   Nullable(out.Shortwave),
			Radiative:   Nullable(out.Radiative),
			Aerodynamic: Nullable(out.Aerodynamic),
		}
		return res, nil
	}

	out, err := s.Evaluate(method, m, site, params)
	if err != nil {
		return Result{}, err
	}
	res.ET = Nullable(out)
	return res, nil
}

// FormatDays renders a daily index as YYYY-MM-DD strings
func FormatDays(days []time.Time) []string {
	out := make([]string, len(days))
	for i, d := range days {
		out[i] = d.Format(time.DateOnly)
	}
	return out
}

// Nullable maps NaN and infinite values to nil so the series can be encoded
// as JSON
func Nullable(s []float64) []*float64 {
	out := make([]*float64, len(s))
	for i := range s {
		if math.IsNaN(s[i]) || math.IsInf(s[i], 0) {
			continue
		}
		v := s[i]
		out[i] = &v
	}
	return out
}
