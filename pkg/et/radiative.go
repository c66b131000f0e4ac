package et

// PriestleyTaylorParams holds the Priestley-Taylor calibration coefficient α
type PriestleyTaylorParams struct {
	Alpha float64
}

// DefaultPriestleyTaylorParams returns α = 1.26
func DefaultPriestleyTaylorParams() PriestleyTaylorParams {
	return PriestleyTaylorParams{Alpha: 1.26}
}

func (p PriestleyTaylorParams) withDefaults() PriestleyTaylorParams {
	if p.Alpha == 0 {
		p.Alpha = DefaultPriestleyTaylorParams().Alpha
	}
	return p
}

// PriestleyTaylor returns evapotranspiration in mm/day from net radiation alone
// (Priestley and Taylor 1972). Humidity is only needed when m.Net is nil.
func PriestleyTaylor(m *Meteo, site Site, p PriestleyTaylorParams) (Series, error) {
	p = p.withDefaults()

	if err := m.check("priestley_taylor", "tmax", "tmin"); err != nil {
		return nil, err
	}
	ta, err := MeanTemperature(m.Tmax, m.Tmin)
	if err != nil {
		return nil, err
	}
	rn, err := NetRadiation(m, site, nil)
	if err != nil {
		return nil, err
	}
	gamma := PsychrometricConstant(AtmosphericPressure(site.Elevation, PowerFAO56))

	return mapSeries(m.Len(), func(i int) float64 {
		delta := VaporPressureCurveSlope(ta[i])
		return p.Alpha * delta * rn[i] / (LatentHeat(ta[i]) * (delta + gamma))
	}), nil
}

// MakkinkParams holds the crop coefficient f applied to Makkink estimates
type MakkinkParams struct {
	F float64
}

// DefaultMakkinkParams returns f = 1
func DefaultMakkinkParams() MakkinkParams {
	return MakkinkParams{F: 1}
}

func (p MakkinkParams) withDefaults() MakkinkParams {
	if p.F == 0 {
		p.F = DefaultMakkinkParams().F
	}
	return p
}

// Makkink returns evapotranspiration in mm/day with the Makkink (1957) equation.
// It uses measured solar radiation, or Angström radiation from sunshine duration.
func Makkink(m *Meteo, site Site, p MakkinkParams) (Series, error) {
	p = p.withDefaults()

	if err := m.check("makkink", "tmax", "tmin"); err != nil {
		return nil, err
	}
	ta, err := MeanTemperature(m.Tmax, m.Tmin)
	if err != nil {
		return nil, err
	}
	rs, err := solar(m, site)
	if err != nil {
		return nil, err
	}
	gamma := PsychrometricConstant(AtmosphericPressure(site.Elevation, PowerFAO56))

	return mapSeries(m.Len(), func(i int) float64 {
		delta := VaporPressureCurveSlope(ta[i])
		return p.F/2.45*0.61*rs[i]*delta/(delta+gamma) - 0.12
	}), nil
}
