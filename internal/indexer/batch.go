package indexer

// Span is a half-open range [Start, End) of document positions.
type Span struct {
	Start, End int
}

// Len returns the number of positions in the span.
func (s Span) Len() int { return s.End - s.Start }

// Batches partitions [0, n) into consecutive spans of at most size positions.
// size must be positive.
func Batches(n, size int) []Span {
	if n <= 0 || size <= 0 {
		return nil
	}
	spans := make([]Span, 0, (n+size-1)/size)
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}
