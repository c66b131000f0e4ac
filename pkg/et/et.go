// Package et computes reference and potential evapotranspiration from daily
// weather series. Every function is a pure elementwise transform over series
// aligned with a daily time index; inputs that cannot be aligned or derived are
// reported as MissingInputError, DomainError or ShapeMismatchError.
package et

import "fmt"

// Method identifies one of the supported evapotranspiration equations
type Method int

const (
	MethodPenman Method = iota + 1
	MethodFAO56
	MethodPM1965
	MethodFAO1990
	MethodPriestleyTaylor
	MethodMakkink
)

var methodNames = map[Method]string{
	MethodPenman:          "penman",
	MethodFAO56:           "fao56",
	MethodPM1965:          "pm1965",
	MethodFAO1990:         "fao1990",
	MethodPriestleyTaylor: "priestley_taylor",
	MethodMakkink:         "makkink",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return fmt.Sprintf("method(%d)", int(m))
}

// Methods returns every supported method in declaration order
func Methods() []Method {
	return []Method{MethodPenman, MethodFAO56, MethodPM1965, MethodFAO1990, MethodPriestleyTaylor, MethodMakkink}
}

// ParseMethod maps a method name such as "fao56" to its Method
func ParseMethod(s string) (Method, error) {
	name := normalize(s)
	for m, n := range methodNames {
		if n == name {
			return m, nil
		}
	}
	return 0, fmt.Errorf("unknown evapotranspiration method %q", s)
}

// Params groups the coefficients of every method. Zero fields fall back to the
// published defaults.
type Params struct {
	Penman          PenmanParams
	PM1965          PM1965Params
	FAO1990         FAO1990Params
	PriestleyTaylor PriestleyTaylorParams
	Makkink         MakkinkParams
}

// Compute evaluates the chosen method and returns its evapotranspiration series
func Compute(method Method, m *Meteo, site Site, p Params) (Series, error) {
	switch method {
	case MethodPenman:
		return Penman(m, site, p.Penman)
	case MethodFAO56:
		return FAO56(m, site)
	case MethodPM1965:
		return PM1965(m, site, p.PM1965)
	case MethodFAO1990:
		res, err := FAO1990(m, site, p.FAO1990)
		if err != nil {
			return nil, err
		}
		return res.ET, nil
	case MethodPriestleyTaylor:
		return PriestleyTaylor(m, site, p.PriestleyTaylor)
	case MethodMakkink:
		return Makkink(m, site, p.Makkink)
	}
	return nil, fmt.Errorf("unknown evapotranspiration method %v", method)
}
