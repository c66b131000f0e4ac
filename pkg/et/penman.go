package et

// terms holds the per-day quantities shared by the combination equations
type terms struct {
	ta     Series // mean temperature [°C]
	lambda Series // latent heat [MJ/kg]
	delta  Series // slope of the vapour pressure curve [kPa/°C]
	gamma  float64
	es     Series
	ea     Series
	rn     Series
}

// combinationTerms runs the common front half of every combination equation:
// mean temperature, pressure, γ, Δ, λ, vapour pressures and net radiation.
func combinationTerms(m *Meteo, site Site, need string) (*terms, error) {
	if err := m.check(need, "tmax", "tmin", "wind"); err != nil {
		return nil, err
	}

	ta, err := MeanTemperature(m.Tmax, m.Tmin)
	if err != nil {
		return nil, err
	}
	ea, err := ActualVaporPressure(m.Tmax, m.Tmin, m.Humidity)
	if err != nil {
		return nil, err
	}
	es, err := MeanSaturationVaporPressure(m.Tmax, m.Tmin)
	if err != nil {
		return nil, err
	}
	rn, err := NetRadiation(m, site, ea)
	if err != nil {
		return nil, err
	}

	return &terms{
		ta:     ta,
		lambda: mapSeries(len(ta), func(i int) float64 { return LatentHeat(ta[i]) }),
		delta:  mapSeries(len(ta), func(i int) float64 { return VaporPressureCurveSlope(ta[i]) }),
		gamma:  PsychrometricConstant(AtmosphericPressure(site.Elevation, PowerFAO56)),
		es:     es,
		ea:     ea,
		rn:     rn,
	}, nil
}

// PenmanParams are the coefficients of the Penman wind function f(u) = a (1 + b u)
type PenmanParams struct {
	A float64
	B float64
}

// DefaultPenmanParams returns the 1948 wind function coefficients
func DefaultPenmanParams() PenmanParams {
	return PenmanParams{A: 2.6, B: 0.536}
}

func (p PenmanParams) withDefaults() PenmanParams {
	d := DefaultPenmanParams()
	if p.A == 0 {
		p.A = d.A
	}
	if p.B == 0 {
		p.B = d.B
	}
	return p
}

// Penman returns evapotranspiration in mm/day with the Penman (1948) equation
func Penman(m *Meteo, site Site, p PenmanParams) (Series, error) {
	p = p.withDefaults()

	t, err := combinationTerms(m, site, "penman")
	if err != nil {
		return nil, err
	}

	return mapSeries(m.Len(), func(i int) float64 {
		w := p.A * (1 + p.B*m.Wind[i])
		den := t.lambda[i] * (t.delta[i] + t.gamma)
		radiative := t.delta[i] * (t.rn[i] - m.soilHeatFlux(i)) / den
		aerodynamic := t.gamma * (t.es[i] - t.ea[i]) * w / den
		return radiative + aerodynamic
	}), nil
}

// FAO56 returns grass reference evapotranspiration in mm/day with the FAO-56
// Penman-Monteith equation (Allen et al. 1998, eq. 6).
func FAO56(m *Meteo, site Site) (Series, error) {
	t, err := combinationTerms(m, site, "fao56")
	if err != nil {
		return nil, err
	}

	return mapSeries(m.Len(), func(i int) float64 {
		u := m.Wind[i]
		den := t.delta[i] + t.gamma*(1+0.34*u)
		radiative := 0.408 * t.delta[i] * (t.rn[i] - m.soilHeatFlux(i))
		aerodynamic := t.gamma * (t.es[i] - t.ea[i]) * 900 * u / (t.ta[i] + 273)
		return (radiative + aerodynamic) / den
	}), nil
}

// PM1965Params select the resistances of the Penman-Monteith (1965) equation
type PM1965Params struct {
	Canopy      CanopyModel
	Aerodynamic AerodynamicModel
	CropHeight  float64 // m, for AerodynamicLogProfile
}

// DefaultPM1965Params returns fixed canopy and aerodynamic resistances
func DefaultPM1965Params() PM1965Params {
	return PM1965Params{Canopy: CanopyFixed, Aerodynamic: AerodynamicFixed}
}

func (p PM1965Params) withDefaults() PM1965Params {
	if p.Canopy == 0 {
		p.Canopy = CanopyFixed
	}
	if p.Aerodynamic == 0 {
		p.Aerodynamic = AerodynamicFixed
	}
	return p
}

// PM1965 returns evapotranspiration in mm/day with the Penman-Monteith equation
// using explicit aerodynamic and canopy resistances (Monteith 1965; FAO 1990).
func PM1965(m *Meteo, site Site, p PM1965Params) (Series, error) {
	p = p.withDefaults()

	if p.Canopy == CanopyLAI {
		if err := m.check("pm1965", "lai"); err != nil {
			return nil, err
		}
	}

	t, err := combinationTerms(m, site, "pm1965")
	if err != nil {
		return nil, err
	}
	pressure := AtmosphericPressure(site.Elevation, PowerFAO56)

	return mapSeriesErr(m.Len(), func(i int) (float64, error) {
		ra, err := AerodynamicResistance(p.Aerodynamic, m.Wind[i], p.CropHeight)
		if err != nil {
			return 0, asDomain(err, i)
		}
		var lai float64
		if m.LAI != nil {
			lai = m.LAI[i]
		}
		rc, err := CanopyResistance(p.Canopy, lai)
		if err != nil {
			return 0, asDomain(err, i)
		}

		rhoA := AirDensity(pressure, t.ta[i])
		gamma1 := t.gamma * (1 + rc/ra)
		den := t.lambda[i] * (t.delta[i] + gamma1)
		radiative := t.delta[i] * (t.rn[i] - m.soilHeatFlux(i)) / den
		aerodynamic := rhoA * airHeatCapacity * 86400 * (t.es[i] - t.ea[i]) / ra / den
		return radiative + aerodynamic, nil
	})
}
