package domain

import "sort"

// Rank ordena los competitors por valor de portfolio descendente y asigna
// ranks 1..K consecutivos. Los empates en valor se desempatan por nombre
// ascendente para que el resultado sea determinista: mismos inputs, mismos
// ranks, en cualquier ciclo.
func Rank(competitors []RankedCompetitor) []RankedCompetitor {
	sort.SliceStable(competitors, func(i, j int) bool {
		if competitors[i].Value != competitors[j].Value {
			return competitors[i].Value > competitors[j].Value
		}
		return competitors[i].DisplayName < competitors[j].DisplayName
	})
	for i := range competitors {
		competitors[i].Rank = i + 1
	}
	return competitors
}
