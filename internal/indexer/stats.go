package indexer

import (
	"math"
	"sort"
)

// ChunkStats summarizes how a document was split. Lengths are in runes.
type ChunkStats struct {
	// Chunks is the number of chunks produced.
	Chunks int `json:"chunks"`
	// Min is the shortest chunk length.
	Min int `json:"min"`
	// Max is the longest chunk length.
	Max int `json:"max"`
	// Mean is the mean chunk length, rounded to two decimals.
	Mean float64 `json:"mean"`
	// P95 is the 95th percentile chunk length.
	P95 int `json:"p95"`
	// OverlapRunes is the total number of runes repeated across hard splits.
	OverlapRunes int `json:"overlap_runes"`
}

// Stats splits text and summarizes the result without embedding anything.
func (c *Chunker) Stats(text string) ChunkStats {
	return computeChunkStats(c.Split(text))
}

func computeChunkStats(chunks []Chunk) ChunkStats {
	if len(chunks) == 0 {
		return ChunkStats{}
	}

	lengths := make([]int, len(chunks))
	overlap := 0
	for i, c := range chunks {
		lengths[i] = c.End - c.Start
		if i > 0 {
			overlap += chunks[i-1].End - c.Start
		}
	}

	stats := computeLengthStats(lengths)
	stats.Chunks = len(chunks)
	stats.OverlapRunes = overlap
	return stats
}

// computeLengthStats computes min, max, mean, and p95 from lengths.
func computeLengthStats(lengths []int) ChunkStats {
	if len(lengths) == 0 {
		return ChunkStats{}
	}

	sorted := make([]int, len(lengths))
	copy(sorted, lengths)
	sort.Ints(sorted)

	sum := 0
	for _, n := range lengths {
		sum += n
	}
	mean := float64(sum) / float64(len(lengths))

	p95Index := int(math.Ceil(float64(len(sorted)) * 0.95))
	if p95Index >= len(sorted) {
		p95Index = len(sorted) - 1
	}

	return ChunkStats{
		Min:  sorted[0],
		Max:  sorted[len(sorted)-1],
		Mean: math.Round(mean*100) / 100, // Round to 2 decimal places
		P95:  sorted[p95Index],
	}
}
