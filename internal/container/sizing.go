package container

// AddUint64 adds a and b, returning ErrSizeOverflow instead of wrapping
// around on overflow. The format imposes no upper bound on file counts or
// sizes, so every offset/size accumulation during a build goes through this
// instead of the bare `+` operator.
func AddUint64(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrSizeOverflow
	}
	return sum, nil
}
