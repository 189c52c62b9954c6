package pipeline

import "errors"

var (
	// ErrNoData is returned when nothing survives preparation.
	ErrNoData = errors.New("no data")
	// ErrInsufficientSamples is returned when there are too few
	// transactions to cluster.
	ErrInsufficientSamples = errors.New("insufficient data for clustering")
)
