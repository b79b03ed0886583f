package channel

// Curve maps fade progress t in [0,1] onto [0,1]. Curves must be monotonic
// with Curve(0)=0 and Curve(1)=1.
type Curve func(t float64) float64

func Linear(t float64) float64 {
	return clamp01(t)
}

// Smoothstep eases in and out: 3t^2 - 2t^3.
func Smoothstep(t float64) float64 {
	t = clamp01(t)
	return t * t * (3 - 2*t)
}

// CurveByName returns the named curve, falling back to Linear.
func CurveByName(name string) Curve {
	if name == "smoothstep" {
		return Smoothstep
	}
	return Linear
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
