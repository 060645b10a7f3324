package matcher

import "math"

// UpdateStats summarises the number of updates per record.
type UpdateStats struct {
	Records int
	Mean    float64
	// Stdev is the sample standard deviation, 0 with fewer than two records.
	Stdev float64
}

// UpdateStats returns update statistics per slot and over all records.
// Only records still in the result are counted.
func (r *Result) UpdateStats() (perSlot [NumSlots]UpdateStats, total UpdateStats) {
	var bySlot [NumSlots][]int
	all := make([]int, 0, len(r.Records))
	for _, rec := range r.Records {
		n := len(rec.Updates)
		bySlot[rec.Label] = append(bySlot[rec.Label], n)
		all = append(all, n)
	}
	for i := range bySlot {
		perSlot[i] = summarize(bySlot[i])
	}
	return perSlot, summarize(all)
}

func summarize(counts []int) UpdateStats {
	s := UpdateStats{Records: len(counts)}
	if len(counts) == 0 {
		return s
	}
	var sum float64
	for _, c := range counts {
		sum += float64(c)
	}
	s.Mean = sum / float64(len(counts))
	if len(counts) < 2 {
		return s
	}
	var sq float64
	for _, c := range counts {
		d := float64(c) - s.Mean
		sq += d * d
	}
	s.Stdev = math.Sqrt(sq / float64(len(counts)-1))
	return s
}
