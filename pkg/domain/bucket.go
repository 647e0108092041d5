package domain

// Bucket classifies both a single answer and a final score.
type Bucket string

const (
	Hot  Bucket = "Hot"
	Warm Bucket = "Warm"
	Cold Bucket = "Cold"
)

// BasePoints returns the points an answer in this bucket is worth before weighting.
func (b Bucket) BasePoints() int {
	switch b {
	case Hot:
		return 10
	case Warm:
		return 5
	case Cold:
		return 1
	default:
		return 0
	}
}

// Valid reports whether b is one of the known buckets.
func (b Bucket) Valid() bool {
	return b == Hot || b == Warm || b == Cold
}
