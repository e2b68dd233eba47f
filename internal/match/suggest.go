package match

import "sort"

// DefaultThreshold is the minimum Score for a name to be suggested.
const DefaultThreshold = 0.6

// Candidate is a name with its similarity to the query.
type Candidate struct {
	Name  string
	Score float64
}

// Rank scores every candidate name against name, best first. Ties keep
// alphabetical order.
func Rank(name string, candidates []string) []Candidate {
	ranked := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, Candidate{Name: c, Score: Score(name, c)})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}

		return ranked[i].Name < ranked[j].Name
	})

	return ranked
}

// Suggest returns up to limit candidates scoring at least DefaultThreshold
// against name.
func Suggest(name string, candidates []string, limit int) []string {
	var out []string

	for _, c := range Rank(name, candidates) {
		if c.Score < DefaultThreshold || len(out) == limit {
			break
		}

		if c.Name == name {
			continue
		}

		out = append(out, c.Name)
	}

	return out
}
