package metrics

// RelativeError returns (x - ref) / ref, or the raw difference when ref is zero.
func RelativeError(x, ref float64) float64 {
	if ref == 0 {
		return x - ref
	}
	return (x - ref) / ref
}
