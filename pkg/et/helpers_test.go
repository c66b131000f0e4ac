package et

import (
	"math"
	"time"
)

func approxEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

func days(start time.Time, n int) []time.Time {
	index := make([]time.Time, n)
	for i := range index {
		index[i] = start.AddDate(0, 0, i)
	}
	return index
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func degrees(d float64) float64 { return d * math.Pi / 180 }

// brussels is FAO-56 example 17: Uccle, 6 July, sunshine based radiation
func brussels() (*Meteo, Site) {
	return &Meteo{
		Time:     []time.Time{date(2019, time.July, 6)},
		Tmax:     Series{21.5},
		Tmin:     Series{12.3},
		Wind:     Series{2.078},
		Humidity: RHExtremes(Series{84}, Series{63}),
		Sunshine: Series{9.25},
	}, Site{Elevation: 100, Latitude: degrees(50.8)}
}

// typical is a warm day at 0.5 rad latitude with measured solar radiation
func typical(solar float64) (*Meteo, Site) {
	return &Meteo{
		Time:     []time.Time{date(2020, time.June, 21)},
		Tmax:     Series{25},
		Tmin:     Series{15},
		Wind:     Series{2},
		Humidity: RHMean(Series{60}),
		Solar:    Series{solar},
	}, Site{Elevation: 100, Latitude: 0.5}
}
