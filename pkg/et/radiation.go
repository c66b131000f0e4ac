package et

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	// Albedo of the hypothetical grass reference crop
	Albedo = 0.23

	stefanBoltzmann        = 4.903e-9 // MJ K-4 m-2 d-1
	stefanBoltzmannFAO1990 = 2.45e-9  // half of σ, applied to the sum of both extremes

	angstromA = 0.25
	angstromB = 0.5
)

// ClearSkyRadiation returns Rso in MJ m-2 d-1 (FAO-56 eq. 37)
func ClearSkyRadiation(ra, elevation float64) float64 {
	return (0.75 + 2e-5*elevation) * ra
}

// CloudinessFactor returns f = 1.35 Rs/Rso - 0.35 (FAO-1990 Annex V eq. 57)
func CloudinessFactor(rs, rso float64) float64 {
	return 1.35*rs/rso - 0.35
}

// IncomingSolarRadiation returns Rs from sunshine duration with the Angström
// formula (FAO-56 eq. 35). nn may be nil, in which case daylight hours are used.
func IncomingSolarRadiation(m *Meteo, site Site) (Series, error) {
	if m.Sunshine == nil {
		return nil, &MissingInputError{Input: "solar or n", Need: "incoming solar radiation"}
	}

	ra, err := ExtraterrestrialRadiation(m.Time, site.Latitude)
	if err != nil {
		return nil, err
	}

	nn := m.DaylightHours
	if nn == nil {
		nn, err = DaylightHours(m.Time, site.Latitude)
		if err != nil {
			return nil, err
		}
	}

	return mapSeriesErr(len(ra), func(i int) (float64, error) {
		if nn[i] == 0 {
			return 0, &DomainError{Quantity: "nn", Index: i, Value: 0, Reason: "no daylight"}
		}
		return (angstromA + angstromB*m.Sunshine[i]/nn[i]) * ra[i], nil
	})
}

// solar returns the measured incoming solar radiation, or derives it from sunshine
func solar(m *Meteo, site Site) (Series, error) {
	if m.Solar != nil {
		return m.Solar, nil
	}
	return IncomingSolarRadiation(m, site)
}

// NetShortwaveRadiation returns Rns = (1 - albedo) Rs (FAO-56 eq. 38)
func NetShortwaveRadiation(m *Meteo, site Site, albedo float64) (Series, error) {
	if err := m.check("net shortwave radiation"); err != nil {
		return nil, err
	}
	rs, err := solar(m, site)
	if err != nil {
		return nil, err
	}
	rns := make(Series, len(rs))
	floats.ScaleTo(rns, 1-albedo, rs)
	return rns, nil
}

// clearSky returns the supplied Rso or derives it from Ra and elevation
func clearSky(m *Meteo, site Site) (Series, error) {
	if m.ClearSky != nil {
		return m.ClearSky, nil
	}
	ra, err := ExtraterrestrialRadiation(m.Time, site.Latitude)
	if err != nil {
		return nil, err
	}
	return mapSeries(len(ra), func(i int) float64 {
		return ClearSkyRadiation(ra[i], site.Elevation)
	}), nil
}

// NetLongwaveRadiation returns Rnl in MJ m-2 d-1 (FAO-56 eq. 39). When ea is nil
// it is derived from the humidity of m.
func NetLongwaveRadiation(m *Meteo, site Site, ea Series) (Series, error) {
	if err := m.check("net longwave radiation", "tmax", "tmin"); err != nil {
		return nil, err
	}

	rs, err := solar(m, site)
	if err != nil {
		return nil, err
	}
	rso, err := clearSky(m, site)
	if err != nil {
		return nil, err
	}
	if ea == nil {
		ea, err = ActualVaporPressure(m.Tmax, m.Tmin, m.Humidity)
		if err != nil {
			return nil, err
		}
	} else if len(ea) != m.Len() {
		return nil, &ShapeMismatchError{Name: "ea", Got: len(ea), Want: m.Len()}
	}

	return mapSeriesErr(m.Len(), func(i int) (float64, error) {
		if rso[i] == 0 {
			return 0, &DomainError{Quantity: "rso", Index: i, Value: 0, Reason: "clear-sky radiation is zero"}
		}
		tmp1 := stefanBoltzmann * (math.Pow(m.Tmax[i]+273.2, 4) + math.Pow(m.Tmin[i]+273.2, 4)) / 2
		tmp2 := 0.34 - 0.14*math.Sqrt(ea[i])
		tmp3 := 1.35*rs[i]/rso[i] - 0.35
		return tmp1 * tmp2 * tmp3, nil
	})
}

// NetLongwaveRadiationFAO1990 returns Rnl from the dewpoint vapour pressure ed and
// the cloudiness factor f (FAO-1990 Annex V eq. 56).
func NetLongwaveRadiationFAO1990(tmax, tmin, ed, cloud Series, fidelity Fidelity) (Series, error) {
	err := sameLength(namedSeries{"tmax", tmax}, namedSeries{"tmin", tmin},
		namedSeries{"ed", ed}, namedSeries{"cloudiness", cloud})
	if err != nil {
		return nil, err
	}
	return mapSeries(len(tmax), func(i int) float64 {
		sigma := stefanBoltzmannFAO1990 * (math.Pow(tmax[i]+273.16, 4) + math.Pow(tmin[i]+273.16, 4))
		emissivity := 0.34 - 0.139*fidelity.round(math.Sqrt(ed[i]))
		return sigma * cloud[i] * emissivity
	}), nil
}

// NetRadiation returns Rn. The measured series is returned when m.Net is set,
// otherwise Rn = Rns - Rnl with ea derived from m when nil.
func NetRadiation(m *Meteo, site Site, ea Series) (Series, error) {
	if err := m.check("net radiation"); err != nil {
		return nil, err
	}
	if m.Net != nil {
		return m.Net, nil
	}

	rns, err := NetShortwaveRadiation(m, site, Albedo)
	if err != nil {
		return nil, err
	}
	rnl, err := NetLongwaveRadiation(m, site, ea)
	if err != nil {
		return nil, err
	}

	rn := make(Series, len(rns))
	floats.SubTo(rn, rns, rnl)
	return rn, nil
}
