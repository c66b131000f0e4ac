package et

import "math"

// HumidityKind enumerates the relative humidity observations a caller can supply
type HumidityKind int

const (
	HumidityNone     HumidityKind = iota // nothing observed
	HumidityExtremes                     // daily max and min
	HumidityMaxOnly                      // daily max
	HumidityMinOnly                      // daily min
	HumidityMean                         // daily mean
)

func (k HumidityKind) String() string {
	switch k {
	case HumidityExtremes:
		return "extremes"
	case HumidityMaxOnly:
		return "max"
	case HumidityMinOnly:
		return "min"
	case HumidityMean:
		return "mean"
	default:
		return "none"
	}
}

// Humidity is the relative humidity input of a call [%, 0-100]. Build it with
// RHExtremes, RHMaxOnly, RHMinOnly or RHMean; the zero value carries no humidity.
type Humidity struct {
	kind HumidityKind
	max  Series
	min  Series
	mean Series
}

// RHExtremes builds a humidity input from daily maximum and minimum relative humidity
func RHExtremes(max, min Series) Humidity {
	return Humidity{kind: HumidityExtremes, max: max, min: min}
}

// RHMaxOnly builds a humidity input from daily maximum relative humidity
func RHMaxOnly(max Series) Humidity {
	return Humidity{kind: HumidityMaxOnly, max: max}
}

// RHMinOnly builds a humidity input from daily minimum relative humidity
func RHMinOnly(min Series) Humidity {
	return Humidity{kind: HumidityMinOnly, min: min}
}

// RHMean builds a humidity input from daily mean relative humidity
func RHMean(mean Series) Humidity {
	return Humidity{kind: HumidityMean, mean: mean}
}

// Kind reports which observations the input carries
func (h Humidity) Kind() HumidityKind { return h.kind }

// Mean returns the mean relative humidity series, nil unless Kind is HumidityMean
func (h Humidity) Mean() Series { return h.mean }

func (h Humidity) named() []namedSeries {
	switch h.kind {
	case HumidityExtremes:
		return []namedSeries{{"rhmax", h.max}, {"rhmin", h.min}}
	case HumidityMaxOnly:
		return []namedSeries{{"rhmax", h.max}}
	case HumidityMinOnly:
		return []namedSeries{{"rhmin", h.min}}
	case HumidityMean:
		return []namedSeries{{"rh", h.mean}}
	}
	return nil
}

// SaturationVaporPressure returns e°(T) in kPa for a temperature in °C (FAO-56 eq. 11)
func SaturationVaporPressure(t float64) float64 {
	return 0.6108 * math.Exp(17.27*t/(t+237.3))
}

// MeanSaturationVaporPressure returns es, the mean of e° at tmax and tmin (FAO-56 eq. 12)
func MeanSaturationVaporPressure(tmax, tmin Series) (Series, error) {
	if err := sameLength(namedSeries{"tmax", tmax}, namedSeries{"tmin", tmin}); err != nil {
		return nil, err
	}
	return mapSeries(len(tmax), func(i int) float64 {
		return (SaturationVaporPressure(tmax[i]) + SaturationVaporPressure(tmin[i])) / 2
	}), nil
}

// ActualVaporPressure returns ea in kPa from temperature extremes and whichever
// humidity observations are available (FAO-56 eqs. 17, 18, 48 and 19).
//
// With only the minimum humidity the result is e°(tmin), which ignores the
// observation entirely. That branch is kept as published and still needs review.
func ActualVaporPressure(tmax, tmin Series, h Humidity) (Series, error) {
	if h.kind == HumidityNone {
		return nil, &MissingInputError{Input: "rh, rhmax or rhmin", Need: "actual vapour pressure"}
	}

	in := append([]namedSeries{{"tmax", tmax}, {"tmin", tmin}}, h.named()...)
	for _, v := range in {
		if v.s == nil {
			return nil, &MissingInputError{Input: v.name, Need: "actual vapour pressure"}
		}
	}
	if err := sameLength(in...); err != nil {
		return nil, err
	}

	return mapSeries(len(tmax), func(i int) float64 {
		eamax := SaturationVaporPressure(tmax[i])
		eamin := SaturationVaporPressure(tmin[i])

		switch h.kind {
		case HumidityExtremes: // eq. 17
			return eamin*h.max[i]/200 + eamax*h.min[i]/200
		case HumidityMaxOnly: // eq. 18
			return eamin * h.max[i] / 100
		case HumidityMinOnly: // eq. 48
			return eamin
		default: // eq. 19
			return h.mean[i] / 200 * (eamax + eamin)
		}
	}), nil
}

// DewpointVaporPressure returns ed in kPa from mean relative humidity (FAO-1990 Annex V eq. 11)
func DewpointVaporPressure(tmax, tmin, rh Series) (Series, error) {
	if rh == nil {
		return nil, &MissingInputError{Input: "rh", Need: "dewpoint vapour pressure"}
	}
	if err := sameLength(namedSeries{"tmax", tmax}, namedSeries{"tmin", tmin}, namedSeries{"rh", rh}); err != nil {
		return nil, err
	}
	return mapSeries(len(tmax), func(i int) float64 {
		eamax := SaturationVaporPressure(tmax[i])
		eamin := SaturationVaporPressure(tmin[i])
		return rh[i] / (50/eamin + 50/eamax)
	}), nil
}
