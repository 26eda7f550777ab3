// Package erlang is the analytical loss model used to sanity-check simulated
// blocking: admitted flows are treated as servers of an Erlang-B system whose
// size is the number of average flows that fit under the airtime ceiling.
package erlang

import "gonum.org/v1/gonum/floats"

// ErlangB returns the blocking probability of an M/M/N/N system offered a
// Erlangs. It uses the recurrence B(0)=1, B(k)=a*B(k-1)/(k+a*B(k-1)), which
// stays finite for server counts where a^N/N! would overflow.
// With no offered traffic nothing is blocked, even with zero servers; once
// traffic is offered, zero servers block every call.
func ErlangB(a float64, n int) float64 {
	if a <= 0 {
		return 0
	}
	b := 1.0
	for k := 1; k <= n; k++ {
		b = a * b / (float64(k) + a*b)
	}
	return b
}

// Servers maps an airtime ceiling to an equivalent server count: the number of
// flows of avgAirtime that fit under threshold, truncated.
func Servers(threshold, avgAirtime float64) int {
	if avgAirtime <= 0 || threshold <= 0 {
		return 0
	}
	return int(threshold / avgAirtime)
}

// BlockingCurve evaluates ErlangB for each offered load against the server
// count implied by threshold and avgAirtime.
func BlockingCurve(loads []float64, threshold, avgAirtime float64) []float64 {
	n := Servers(threshold, avgAirtime)
	out := make([]float64, len(loads))
	for i, a := range loads {
		out[i] = ErlangB(a, n)
	}
	return out
}

// Loads returns count evenly spaced offered loads from lo to hi inclusive.
func Loads(lo, hi float64, count int) []float64 {
	if count <= 0 {
		return []float64{}
	}
	if count == 1 {
		return []float64{lo}
	}
	return floats.Span(make([]float64, count), lo, hi)
}
