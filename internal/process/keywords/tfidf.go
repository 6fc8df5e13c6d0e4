package keywords

import (
	"math"
	"sort"
)

type scoredTerm struct {
	term      string
	weight    float64
	frequency int
}

// termFrequency ranks terms by raw count across the corpus; weight is the
// count normalized by corpus size.
func termFrequency(docs [][]string) []scoredTerm {
	counts := make(map[string]int)
	total := 0

	for _, doc := range docs {
		for _, term := range doc {
			counts[term]++
			total++
		}
	}

	if total == 0 {
		return nil
	}

	scored := make([]scoredTerm, 0, len(counts))

	for term, count := range counts {
		scored = append(scored, scoredTerm{
			term:      term,
			weight:    float64(count) / float64(total),
			frequency: count,
		})
	}

	sortScored(scored)

	return scored
}

// tfidf scores terms with smoothed inverse document frequency: per-document
// raw counts are weighted by ln((1+N)/(1+df))+1, each document vector is
// L2-normalized, and the normalized weights are summed across documents.
// Reported frequency stays the raw corpus count.
func tfidf(docs [][]string) []scoredTerm {
	docFreq := make(map[string]int)
	corpusFreq := make(map[string]int)

	for _, doc := range docs {
		seen := make(map[string]struct{}, len(doc))

		for _, term := range doc {
			corpusFreq[term]++

			if _, ok := seen[term]; !ok {
				seen[term] = struct{}{}
				docFreq[term]++
			}
		}
	}

	if len(docFreq) == 0 {
		return nil
	}

	n := float64(len(docs))
	idf := make(map[string]float64, len(docFreq))

	for term, df := range docFreq {
		idf[term] = math.Log((1+n)/(1+float64(df))) + 1
	}

	summed := make(map[string]float64)

	for _, doc := range docs {
		counts := make(map[string]int, len(doc))
		for _, term := range doc {
			counts[term]++
		}

		var norm float64

		weights := make(map[string]float64, len(counts))

		for term, count := range counts {
			w := float64(count) * idf[term]
			weights[term] = w
			norm += w * w
		}

		if norm == 0 {
			continue
		}

		norm = math.Sqrt(norm)

		for term, w := range weights {
			summed[term] += w / norm
		}
	}

	scored := make([]scoredTerm, 0, len(summed))

	for term, weight := range summed {
		scored = append(scored, scoredTerm{
			term:      term,
			weight:    weight,
			frequency: corpusFreq[term],
		})
	}

	sortScored(scored)

	return scored
}

func sortScored(scored []scoredTerm) {
	sort.Slice(scored, func(i, j int) bool {
		if scored[i].weight != scored[j].weight {
			return scored[i].weight > scored[j].weight
		}

		return scored[i].term < scored[j].term
	})
}
