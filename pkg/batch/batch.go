package batch

// Chunk splits items into slices of at most size elements. A size below 1 is
// treated as 1 so callers can never loop forever on a bad config value.
func Chunk[T any](items []T, size int) [][]T {
	if size < 1 {
		size = 1
	}

	var chunks [][]T
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		chunks = append(chunks, items[start:end])
	}
	return chunks
}
