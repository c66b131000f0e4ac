package et

import "math"

// FAO1990Params configure the FAO-1990 Penman-Monteith equation
type FAO1990Params struct {
	CropHeight float64 // m
	Fidelity   Fidelity
}

// FAO1990Result carries the final estimate along with the terms it was built from
type FAO1990Result struct {
	Longwave    Series // net longwave radiation Rnl [MJ m-2 d-1]
	Shortwave   Series // net shortwave radiation Rns [MJ m-2 d-1]
	Radiative   Series // radiation term [mm/day]
	Aerodynamic Series // aerodynamic term [mm/day]
	ET          Series // corrected evapotranspiration [mm/day]
}

// FAO1990 returns evapotranspiration with the FAO Penman-Monteith equation as
// published in FAO (1990) Annex V eq. 30. It needs measured solar radiation and
// mean relative humidity.
func FAO1990(m *Meteo, site Site, p FAO1990Params) (FAO1990Result, error) {
	if err := m.check("fao1990", "tmax", "tmin", "wind", "solar"); err != nil {
		return FAO1990Result{}, err
	}
	if m.Humidity.Kind() != HumidityMean || m.Humidity.Mean() == nil {
		return FAO1990Result{}, &MissingInputError{Input: "rh", Need: "fao1990"}
	}

	fid := p.Fidelity
	n := m.Len()

	aerdyn, err := logProfileCoefficient(p.CropHeight)
	if err != nil {
		return FAO1990Result{}, err
	}
	ed, err := DewpointVaporPressure(m.Tmax, m.Tmin, m.Humidity.Mean())
	if err != nil {
		return FAO1990Result{}, err
	}
	ra, err := ExtraterrestrialRadiation(m.Time, site.Latitude)
	if err != nil {
		return FAO1990Result{}, err
	}

	pressure := AtmosphericPressure(site.Elevation, PowerFAO1990)
	ta := mapSeries(n, func(i int) float64 { return (fid.round(m.Tmax[i]) + fid.round(m.Tmin[i])) / 2 })

	rns := mapSeries(n, func(i int) float64 { return (1 - Albedo) * m.Solar[i] })
	cloud := mapSeries(n, func(i int) float64 {
		rso := (angstromA + angstromB) * ra[i] // FAO-1990 eq. 52 with n/N = 1
		return CloudinessFactor(m.Solar[i], rso)
	})
	rnl, err := NetLongwaveRadiationFAO1990(m.Tmax, m.Tmin, ed, cloud, fid)
	if err != nil {
		return FAO1990Result{}, err
	}

	res := FAO1990Result{
		Longwave:    rnl,
		Shortwave:   rns,
		Radiative:   make(Series, n),
		Aerodynamic: make(Series, n),
		ET:          make(Series, n),
	}

	aeroCoef := 0.622 * 3.486 * 86400 / aerdyn / airHeatCapacity

	for i := 0; i < n; i++ {
		u := m.Wind[i]
		if u == 0 {
			return FAO1990Result{}, &DomainError{Quantity: "wind", Index: i, Value: u, Reason: "aerodynamic resistance divides by wind speed"}
		}

		lambda := fid.round(LatentHeat(ta[i]))
		gamma := PsychrometricConstantLambda(pressure, lambda)
		delta := VaporPressureCurveSlopeExtremes(m.Tmax[i], m.Tmin[i], fid)

		raa := aerdyn / u
		gamma1 := gamma * (1 + 60/raa)
		eamean := (SaturationVaporPressure(m.Tmax[i]) + SaturationVaporPressure(m.Tmin[i])) / 2

		aero := gamma / (delta + gamma1) * aeroCoef / (ta[i] + 273) * u * (eamean - ed[i])
		rad := delta / (delta + gamma1) * (rns[i] - rnl[i]) / lambda

		d := ta[i] - 4
		res.Aerodynamic[i] = aero
		res.Radiative[i] = rad
		res.ET[i] = (aero + rad) * (1 - 7.37e-6*math.Pow(d, 2) + 3.79e-8*math.Pow(d, 3))
	}

	return res, nil
}
