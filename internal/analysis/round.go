package analysis

import "math"

// Derived values are rounded once, when a result row is emitted. Raw
// sums stay at full precision internally.

func round1(x float64) float64 { return math.Round(x*10) / 10 }

func round2(x float64) float64 { return math.Round(x*100) / 100 }

func round4(x float64) float64 { return math.Round(x*10000) / 10000 }
