package planet

import "math"

// Round rounds v to places decimals, halves away from zero. Values too large
// to scale are returned unchanged; they carry no fractional digits anyway.
func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	if math.IsInf(v*p, 0) {
		return v
	}
	return math.Round(v*p) / p
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func finiteOrNil(v float64) *float64 {
	if !finite(v) {
		return nil
	}
	return F(v)
}

// GravityInG returns surface gravity in Earth g (mass / radius²) rounded to
// 2 decimals. 0 means undeterminable: either input missing or not positive.
func GravityInG(mass, radius *float64) float64 {
	if !known(mass) || !known(radius) {
		return 0
	}
	g := *mass / (*radius * *radius)
	if !finite(g) {
		return 0
	}
	return Round(g, 2)
}

// KelvinToCelsius converts k to °C rounded to 2 decimals. It returns nil,
// not 0, for a nil or zero input so that "not computed" stays distinct from
// a computed zero. Non-finite input is also nil.
func KelvinToCelsius(k *float64) *float64 {
	if k == nil || *k == 0 || !finite(*k) {
		return nil
	}
	return F(Round(*k-273.15, 2))
}

// DensityRelative returns bulk density relative to Earth (mass / radius³),
// or nil when either input is unknown.
func DensityRelative(mass, radius *float64) *float64 {
	if !known(mass) || !known(radius) {
		return nil
	}
	return finiteOrNil(*mass / math.Pow(*radius, 3))
}

// EscapeVelocityRelative returns escape velocity relative to Earth
// (sqrt(mass / radius)), or nil when either input is unknown.
func EscapeVelocityRelative(mass, radius *float64) *float64 {
	if !known(mass) || !known(radius) {
		return nil
	}
	return finiteOrNil(math.Sqrt(*mass / *radius))
}

// Insolation returns stellar flux relative to Earth (L / a²) for a
// luminosity in solar units and a semi-major axis in AU.
func Insolation(luminosity, semiMajorAxisAU *float64) *float64 {
	if !known(luminosity) || !known(semiMajorAxisAU) {
		return nil
	}
	return finiteOrNil(*luminosity / (*semiMajorAxisAU * *semiMajorAxisAU))
}

//Personal.AI order the ending
