package et

import (
	"errors"
	"testing"
	"time"
)

func TestFAO56Brussels(t *testing.T) {
	m, site := brussels()

	eto, err := FAO56(m, site)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(eto[0], 3.9, 0.05) {
		t.Errorf("expected ETo ~3.9 mm/day, got %f", eto[0])
	}
}

func TestFormulasTypicalDay(t *testing.T) {
	// reference values from the published equations evaluated independently
	tests := []struct {
		method Method
		solar  float64
		want   float64
	}{
		{MethodPenman, 20, 4.063187431734627},
		{MethodFAO56, 20, 4.347841168625314},
		{MethodPM1965, 20, 4.3299465660695144},
		{MethodPriestleyTaylor, 20, 4.270146630841177},
		{MethodMakkink, 20, 3.2906527665845404},
		{MethodFAO1990, 20, 4.618554941493275},
		{MethodPenman, 10, 2.6713891464683344},
		{MethodFAO56, 30, 5.49537077014798},
		{MethodMakkink, 30, 4.995979149876811},
	}

	params := Params{FAO1990: FAO1990Params{CropHeight: 0.12}}

	for _, tt := range tests {
		t.Run(tt.method.String(), func(t *testing.T) {
			m, site := typical(tt.solar)
			got, err := Compute(tt.method, m, site, params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !approxEqual(got[0], tt.want, 1e-6) {
				t.Errorf("solar %.0f: expected %.9f, got %.9f", tt.solar, tt.want, got[0])
			}
		})
	}
}

func TestFormulasMonotoneInSolar(t *testing.T) {
	params := Params{FAO1990: FAO1990Params{CropHeight: 0.12}}

	for _, method := range Methods() {
		t.Run(method.String(), func(t *testing.T) {
			prev := -1.0
			for _, solar := range []float64{10, 15, 20, 25, 30} {
				m, site := typical(solar)
				got, err := Compute(method, m, site, params)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got[0] < 0 {
					t.Errorf("solar %.0f: negative ET %f", solar, got[0])
				}
				if got[0] <= prev {
					t.Errorf("solar %.0f: ET %f did not increase from %f", solar, got[0], prev)
				}
				prev = got[0]
			}
		})
	}
}

func TestFAO56MissingHumidity(t *testing.T) {
	m, site := typical(20)
	m.Humidity = Humidity{}

	_, err := FAO56(m, site)
	var mie *MissingInputError
	if !errors.As(err, &mie) {
		t.Fatalf("expected *MissingInputError, got %v", err)
	}
}

func TestFormulasShapeMismatch(t *testing.T) {
	m, site := typical(20)
	m.Wind = Series{2, 3}

	for _, method := range []Method{MethodPenman, MethodFAO56, MethodPM1965, MethodFAO1990} {
		_, err := Compute(method, m, site, Params{FAO1990: FAO1990Params{CropHeight: 0.12}})
		if !errors.Is(err, ErrShapeMismatch) {
			t.Errorf("%v: expected shape mismatch, got %v", method, err)
		}
	}
}

func TestPriestleyTaylorWithMeasuredNet(t *testing.T) {
	m, site := typical(20)
	m.Humidity = Humidity{}
	m.Net = Series{12}

	got, err := PriestleyTaylor(m, site, PriestleyTaylorParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	delta := VaporPressureCurveSlope(20)
	gamma := PsychrometricConstant(AtmosphericPressure(100, PowerFAO56))
	want := 1.26 * delta * 12 / (LatentHeat(20) * (delta + gamma))
	if !approxEqual(got[0], want, 1e-12) {
		t.Errorf("expected %f, got %f", want, got[0])
	}

	doubled, _ := PriestleyTaylor(m, site, PriestleyTaylorParams{Alpha: 2.52})
	if !approxEqual(doubled[0], 2*got[0], 1e-12) {
		t.Errorf("alpha should scale linearly: %f vs %f", doubled[0], 2*got[0])
	}
}

func TestPenmanSoilHeatFlux(t *testing.T) {
	m, site := typical(20)
	base, err := Penman(m, site, DefaultPenmanParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	m.SoilHeatFlux = Series{2}
	withFlux, err := Penman(m, site, DefaultPenmanParams())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if withFlux[0] >= base[0] {
		t.Errorf("soil heat flux should reduce ET: %f >= %f", withFlux[0], base[0])
	}
}

func TestPM1965Resistances(t *testing.T) {
	m, site := typical(20)

	_, err := PM1965(m, site, PM1965Params{Canopy: CanopyLAI})
	if !errors.Is(err, ErrMissingInput) {
		t.Errorf("expected missing LAI, got %v", err)
	}

	m.LAI = Series{2.88}
	lai, err := PM1965(m, site, PM1965Params{Canopy: CanopyLAI})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fixed, _ := PM1965(m, site, DefaultPM1965Params())
	if !approxEqual(lai[0], fixed[0], 0.01) {
		t.Errorf("LAI 2.88 should be close to rc = 70: %f vs %f", lai[0], fixed[0])
	}

	_, err = PM1965(m, site, PM1965Params{Aerodynamic: AerodynamicLogProfile})
	if !errors.Is(err, ErrMissingInput) {
		t.Errorf("expected missing crop height, got %v", err)
	}

	m.Wind = Series{0}
	_, err = PM1965(m, site, DefaultPM1965Params())
	var de *DomainError
	if !errors.As(err, &de) || de.Index != 0 {
		t.Errorf("expected domain error at day 0, got %v", err)
	}
}

func TestFAO1990Components(t *testing.T) {
	m, site := typical(20)

	res, err := FAO1990(m, site, FAO1990Params{CropHeight: 0.12})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []struct {
		name string
		got  float64
		want float64
	}{
		{"longwave", res.Longwave[0], 3.4409215498873977},
		{"shortwave", res.Shortwave[0], 15.4},
		{"radiative", res.Radiative[0], 2.8624896445580306},
		{"aerodynamic", res.Aerodynamic[0], 1.764076110411163},
		{"et", res.ET[0], 4.618554941493275},
	}
	for _, w := range want {
		if !approxEqual(w.got, w.want, 1e-6) {
			t.Errorf("%s: expected %.9f, got %.9f", w.name, w.want, w.got)
		}
	}

	full, err := FAO1990(m, site, FAO1990Params{CropHeight: 0.12, Fidelity: FullPrecision})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(full.ET[0], res.ET[0], 1e-6) {
		t.Errorf("full precision drifted: %f vs %f", full.ET[0], res.ET[0])
	}
}

func TestFAO1990Inputs(t *testing.T) {
	tests := []struct {
		name   string
		modify func(m *Meteo)
		params FAO1990Params
		target error
	}{
		{name: "no crop height", modify: func(m *Meteo) {}, target: ErrMissingInput},
		{name: "extremes instead of mean", modify: func(m *Meteo) { m.Humidity = RHExtremes(Series{90}, Series{40}) }, params: FAO1990Params{CropHeight: 0.12}, target: ErrMissingInput},
		{name: "no solar", modify: func(m *Meteo) { m.Solar = nil }, params: FAO1990Params{CropHeight: 0.12}, target: ErrMissingInput},
		{name: "calm", modify: func(m *Meteo) { m.Wind = Series{0} }, params: FAO1990Params{CropHeight: 0.12}, target: ErrDomain},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, site := typical(20)
			tt.modify(m)
			_, err := FAO1990(m, site, tt.params)
			if !errors.Is(err, tt.target) {
				t.Errorf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestMakkinkFromSunshine(t *testing.T) {
	m, site := brussels()

	got, err := Makkink(m, site, MakkinkParams{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rs, _ := IncomingSolarRadiation(m, site)
	m.Sunshine = nil
	m.Solar = rs
	want, _ := Makkink(m, site, DefaultMakkinkParams())
	if !approxEqual(got[0], want[0], 1e-12) {
		t.Errorf("expected %f, got %f", want[0], got[0])
	}
}

func TestComputeSeries(t *testing.T) {
	index := days(date(2022, time.May, 1), 3)
	m := &Meteo{
		Time:     index,
		Tmax:     Series{22, 24, 19},
		Tmin:     Series{10, 12, 9},
		Wind:     Series{1.5, 2.5, 3},
		Humidity: RHMean(Series{65, 55, 80}),
		Solar:    Series{18, 22, 9},
	}
	site := Site{Elevation: 20, Latitude: degrees(52)}

	eto, err := Compute(MethodFAO56, m, site, Params{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(eto) != 3 {
		t.Fatalf("expected 3 values, got %d", len(eto))
	}
	for i := 1; i < 3; i++ {
		single := &Meteo{
			Time:     index[i : i+1],
			Tmax:     m.Tmax[i : i+1],
			Tmin:     m.Tmin[i : i+1],
			Wind:     m.Wind[i : i+1],
			Humidity: RHMean(Series{[]float64{65, 55, 80}[i]}),
			Solar:    m.Solar[i : i+1],
		}
		one, err := FAO56(single, site)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if one[0] != eto[i] {
			t.Errorf("day %d depends on other days: %f vs %f", i, one[0], eto[i])
		}
	}
}

func TestParseMethod(t *testing.T) {
	for _, m := range Methods() {
		got, err := ParseMethod(m.String())
		if err != nil || got != m {
			t.Errorf("%v: round trip gave %v (%v)", m, got, err)
		}
	}
	if got, err := ParseMethod("Priestley-Taylor"); err != nil || got != MethodPriestleyTaylor {
		t.Errorf("expected priestley_taylor, got %v (%v)", got, err)
	}
	if _, err := ParseMethod("hargreaves"); err == nil {
		t.Error("expected error for unknown method")
	}
	if _, err := Compute(Method(42), &Meteo{}, Site{}, Params{}); err == nil {
		t.Error("expected error for unknown method")
	}
}

func TestMissingTimeIndex(t *testing.T) {
	m, site := typical(20)
	m.Time = nil
	if _, err := FAO56(m, site); !errors.Is(err, ErrMissingInput) {
		t.Errorf("expected missing time index, got %v", err)
	}
}
