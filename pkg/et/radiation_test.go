package et

import (
	"errors"
	"testing"
	"time"
)

func TestClearSkyAndCloudiness(t *testing.T) {
	if got := ClearSkyRadiation(41.09, 100); !approxEqual(got, 30.90, 0.01) {
		t.Errorf("expected Rso 30.90, got %f", got)
	}
	if got := CloudinessFactor(20, 20); !approxEqual(got, 1.0, 1e-12) {
		t.Errorf("expected cloudiness 1 under clear sky, got %f", got)
	}
}

func TestIncomingSolarRadiation(t *testing.T) {
	m, site := brussels()

	rs, err := IncomingSolarRadiation(m, site)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !approxEqual(rs[0], 22.07, 0.01) {
		t.Errorf("expected Rs 22.07, got %f", rs[0])
	}

	m.Sunshine = nil
	if _, err := IncomingSolarRadiation(m, site); !errors.Is(err, ErrMissingInput) {
		t.Errorf("expected missing input, got %v", err)
	}
}

func TestNetRadiationBrussels(t *testing.T) {
	m, site := brussels()

	rns, err := NetShortwaveRadiation(m, site, Albedo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rnl, err := NetLongwaveRadiation(m, site, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rn, err := NetRadiation(m, site, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !approxEqual(rns[0], 16.9955, 0.0001) {
		t.Errorf("expected Rns 16.9955, got %f", rns[0])
	}
	if !approxEqual(rnl[0], 3.7143, 0.0001) {
		t.Errorf("expected Rnl 3.7143, got %f", rnl[0])
	}
	if rn[0] != rns[0]-rnl[0] {
		t.Errorf("Rn %f is not Rns - Rnl (%f)", rn[0], rns[0]-rnl[0])
	}
}

func TestNetRadiationIsShortMinusLong(t *testing.T) {
	index := days(date(2021, time.March, 1), 5)
	m := &Meteo{
		Time:     index,
		Tmax:     Series{12, 15, 18, 9, 20},
		Tmin:     Series{2, 4, 7, 1, 8},
		Humidity: RHExtremes(Series{95, 90, 88, 99, 80}, Series{50, 45, 40, 70, 35}),
		Solar:    Series{8, 12, 15, 4, 17},
	}
	site := Site{Elevation: 350, Latitude: degrees(45)}

	rns, err := NetShortwaveRadiation(m, site, Albedo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rnl, err := NetLongwaveRadiation(m, site, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	rn, err := NetRadiation(m, site, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range rn {
		if rn[i] != rns[i]-rnl[i] {
			t.Errorf("day %d: Rn %f != Rns %f - Rnl %f", i, rn[i], rns[i], rnl[i])
		}
	}
}

func TestNetRadiationMeasured(t *testing.T) {
	m, site := typical(20)
	m.Net = Series{11.5}
	m.Humidity = Humidity{}

	rn, err := NetRadiation(m, site, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rn[0] != 11.5 {
		t.Errorf("expected measured net radiation, got %f", rn[0])
	}
}

func TestNetLongwaveRadiationErrors(t *testing.T) {
	m, site := typical(20)
	m.Humidity = Humidity{}
	if _, err := NetLongwaveRadiation(m, site, nil); !errors.Is(err, ErrMissingInput) {
		t.Errorf("expected missing input without humidity, got %v", err)
	}

	m, site = typical(20)
	if _, err := NetLongwaveRadiation(m, site, Series{1, 2}); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected shape mismatch for ea, got %v", err)
	}

	m, site = typical(20)
	m.ClearSky = Series{0}
	if _, err := NetLongwaveRadiation(m, site, nil); !errors.Is(err, ErrDomain) {
		t.Errorf("expected domain error for zero Rso, got %v", err)
	}
}

func TestNetLongwaveRadiationFAO1990(t *testing.T) {
	ed, _ := DewpointVaporPressure(Series{25}, Series{15}, Series{60})
	rnl, err := NetLongwaveRadiationFAO1990(Series{25}, Series{15}, ed, Series{1}, ReferenceFidelity)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rnl[0] <= 0 {
		t.Errorf("expected positive longwave loss, got %f", rnl[0])
	}

	if _, err := NetLongwaveRadiationFAO1990(Series{25}, Series{15}, ed, Series{1, 1}, ReferenceFidelity); !errors.Is(err, ErrShapeMismatch) {
		t.Errorf("expected shape mismatch, got %v", err)
	}
}
