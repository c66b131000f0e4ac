// Package daily reduces raw station readings to the daily series the
// evapotranspiration equations work on.
package daily

import (
	"math"
	"sort"
	"time"

	"github.com/chrissnell/evapo/internal/types"
	"github.com/chrissnell/evapo/pkg/et"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Observation is the daily summary of one station
type Observation struct {
	Day     time.Time // midnight in the summary's location
	Samples int

	Tmax   float64 // °C
	Tmin   float64 // °C
	RHMax  float64 // %
	RHMin  float64 // %
	RHMean float64 // %
	Wind   float64 // mean wind speed at 2 m [m/s]

	Solar    float64 // MJ m-2 d-1, valid when HasSolar
	HasSolar bool
}

// Options control how readings are bucketed and which days are kept
type Options struct {
	// Location decides where a day starts. UTC when nil.
	Location *time.Location

	// WindHeight is the anemometer height in metres. Speeds are reduced to
	// 2 m with the logarithmic profile. 2 m when zero.
	WindHeight float64

	// MinSamples drops days with fewer readings than this
	MinSamples int

	// MinSolarCoverage is the shortest span of solar readings that is
	// integrated into a daily total. Days below it report no solar radiation.
	MinSolarCoverage time.Duration
}

// DefaultOptions returns hourly-or-better coverage requirements in UTC
func DefaultOptions() Options {
	return Options{
		Location:         time.UTC,
		WindHeight:       2,
		MinSamples:       24,
		MinSolarCoverage: 20 * time.Hour,
	}
}

func (o Options) withDefaults() Options {
	if o.Location == nil {
		o.Location = time.UTC
	}
	if o.WindHeight == 0 {
		o.WindHeight = 2
	}
	if o.MinSamples < 1 {
		o.MinSamples = 1
	}
	return o
}

// FahrenheitToCelsius converts a temperature in °F to °C
func FahrenheitToCelsius(f float64) float64 {
	return (f - 32) * 5 / 9
}

// MPHToMetersPerSecond converts a speed in mph to m/s
func MPHToMetersPerSecond(mph float64) float64 {
	return mph * 0.44704
}

// WindAt2m reduces a wind speed measured at height z metres to the 2 m
// standard height (FAO-56 eq. 47)
func WindAt2m(uz, z float64) float64 {
	if z == 2 {
		return uz
	}
	return uz * 4.87 / math.Log(67.8*z-5.42)
}

// Summarize buckets readings into calendar days and reduces each day to an
// Observation. The result is ordered by day and skips days that do not meet
// the sample requirement.
func Summarize(readings []types.Reading, opts Options) []Observation {
	opts = opts.withDefaults()

	buckets := make(map[time.Time][]types.Reading)
	for _, r := range readings {
		t := r.Timestamp.In(opts.Location)
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, opts.Location)
		buckets[day] = append(buckets[day], r)
	}

	out := make([]Observation, 0, len(buckets))
	for day, rs := range buckets {
		if len(rs) < opts.MinSamples {
			continue
		}
		out = append(out, summarizeDay(day, rs, opts))
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Day.Before(out[j].Day) })
	return out
}

func summarizeDay(day time.Time, rs []types.Reading, opts Options) Observation {
	sort.Slice(rs, func(i, j int) bool { return rs[i].Timestamp.Before(rs[j].Timestamp) })

	n := len(rs)
	temp := make([]float64, n)
	rh := make([]float64, n)
	wind := make([]float64, n)
	for i, r := range rs {
		temp[i] = FahrenheitToCelsius(float64(r.OutTemp))
		rh[i] = float64(r.OutHumidity)
		wind[i] = MPHToMetersPerSecond(float64(r.WindSpeed))
	}

	obs := Observation{
		Day:     day,
		Samples: n,
		Tmax:    floats.Max(temp),
		Tmin:    floats.Min(temp),
		RHMax:   floats.Max(rh),
		RHMin:   floats.Min(rh),
		RHMean:  stat.Mean(rh, nil),
		Wind:    WindAt2m(stat.Mean(wind, nil), opts.WindHeight),
	}

	obs.Solar, obs.HasSolar = solarTotal(day, rs, opts.MinSolarCoverage)
	return obs
}

// solarTotal integrates irradiance from midnight to midnight and returns
// MJ m-2. The first and last readings are held flat out to the day boundaries;
// missing hours inside the day are interpolated.
func solarTotal(day time.Time, rs []types.Reading, minCoverage time.Duration) (float64, bool) {
	if len(rs) < 2 {
		return 0, false
	}
	span := rs[len(rs)-1].Timestamp.Sub(rs[0].Timestamp)
	if span < minCoverage {
		return 0, false
	}

	end := day.AddDate(0, 0, 1).Sub(day).Seconds()
	x := make([]float64, 0, len(rs)+2)
	f := make([]float64, 0, len(rs)+2)
	for _, r := range rs {
		x = append(x, r.Timestamp.Sub(day).Seconds())
		f = append(f, float64(r.SolarWatts))
	}
	if x[0] > 0 {
		x = append([]float64{0}, x...)
		f = append([]float64{f[0]}, f...)
	}
	if last := len(x) - 1; x[last] < end {
		x = append(x, end)
		f = append(f, f[last])
	}

	return integrate.Trapezoidal(x, f) / 1e6, true
}

// Set is a run of daily observations in ascending day order
type Set []Observation

// Meteo lays the set out as index-aligned series. Humidity is given as daily
// extremes. Solar radiation is included only when every day has it.
func (s Set) Meteo() *et.Meteo {
	n := len(s)
	m := &et.Meteo{
		Time: make([]time.Time, n),
		Tmax: make(et.Series, n),
		Tmin: make(et.Series, n),
		Wind: make(et.Series, n),
	}
	rhmax := make(et.Series, n)
	rhmin := make(et.Series, n)
	solar := make(et.Series, n)
	allSolar := n > 0

	for i, o := range s {
		m.Time[i] = o.Day
		m.Tmax[i] = o.Tmax
		m.Tmin[i] = o.Tmin
		m.Wind[i] = o.Wind
		rhmax[i] = o.RHMax
		rhmin[i] = o.RHMin
		solar[i] = o.Solar
		allSolar = allSolar && o.HasSolar
	}

	m.Humidity = et.RHExtremes(rhmax, rhmin)
	if allSolar {
		m.Solar = solar
	}
	return m
}

// MeanHumidity returns the daily mean relative humidity series, which the
// FAO-1990 equation takes in place of the extremes
func (s Set) MeanHumidity() et.Humidity {
	mean := make(et.Series, len(s))
	for i, o := range s {
		mean[i] = o.RHMean
	}
	return et.RHMean(mean)
}
