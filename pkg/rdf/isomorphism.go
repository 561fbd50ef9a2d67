package rdf

import (
	"sort"
)

// AreGraphsIsomorphic checks if two sets of triples are isomorphic,
// accounting for blank node label differences.
// Two graphs are isomorphic if there exists a bijection between their
// blank nodes such that when applied, the graphs are identical.
// Duplicate triples count: both sides must hold the same multiset.
func AreGraphsIsomorphic(expected, actual []*Triple) bool {
	if len(expected) != len(actual) {
		return false
	}

	expectedBlanks := extractBlankNodeLabels(expected)
	actualBlanks := extractBlankNodeLabels(actual)
	if len(expectedBlanks) != len(actualBlanks) {
		return false
	}

	if len(expectedBlanks) == 0 {
		return verifyMapping(expected, actual, nil)
	}

	// match high-degree nodes first
	expectedBlanks = sortByDegree(expectedBlanks, expected)
	actualBlanks = sortByDegree(actualBlanks, actual)

	mapping := make(map[string]string)
	usedTargets := make(map[string]bool)
	return backtrack(expected, actual, expectedBlanks, actualBlanks, mapping, usedTargets, 0)
}

// extractBlankNodeLabels extracts all unique blank node labels from a set of triples
func extractBlankNodeLabels(triples []*Triple) []string {
	blanks := make(map[string]bool)
	for _, triple := range triples {
		if b, ok := triple.Subject.(*BlankNode); ok {
			blanks[b.ID] = true
		}
		if b, ok := triple.Object.(*BlankNode); ok {
			blanks[b.ID] = true
		}
	}

	result := make([]string, 0, len(blanks))
	for label := range blanks {
		result = append(result, label)
	}
	sort.Strings(result)
	return result
}

func sortByDegree(blanks []string, triples []*Triple) []string {
	degrees := make(map[string]int, len(blanks))
	for _, triple := range triples {
		if b, ok := triple.Subject.(*BlankNode); ok {
			degrees[b.ID]++
		}
		if b, ok := triple.Object.(*BlankNode); ok {
			degrees[b.ID]++
		}
	}

	sort.SliceStable(blanks, func(i, j int) bool {
		return degrees[blanks[i]] > degrees[blanks[j]]
	})
	return blanks
}

// backtrack recursively tries to find a valid mapping between blank nodes
func backtrack(expected, actual []*Triple, expectedBlanks, actualBlanks []string,
	mapping map[string]string, usedTargets map[string]bool, index int) bool {

	if index == len(expectedBlanks) {
		return verifyMapping(expected, actual, mapping)
	}

	currentBlank := expectedBlanks[index]
	for _, candidateBlank := range actualBlanks {
		if usedTargets[candidateBlank] {
			continue
		}

		mapping[currentBlank] = candidateBlank
		usedTargets[candidateBlank] = true

		if isConsistentSoFar(expected, actual, mapping) {
			if backtrack(expected, actual, expectedBlanks, actualBlanks, mapping, usedTargets, index+1) {
				return true
			}
		}

		delete(mapping, currentBlank)
		delete(usedTargets, candidateBlank)
	}

	return false
}

func isTermMapped(term Term, mapping map[string]string) bool {
	if b, ok := term.(*BlankNode); ok {
		_, exists := mapping[b.ID]
		return exists
	}
	return true
}

// isConsistentSoFar checks that every fully mapped expected triple exists in actual
func isConsistentSoFar(expected, actual []*Triple, mapping map[string]string) bool {
	actualSet := make(map[string]bool, len(actual))
	for _, triple := range actual {
		actualSet[tripleKey(triple, nil)] = true
	}

	for _, triple := range expected {
		if isTermMapped(triple.Subject, mapping) && isTermMapped(triple.Object, mapping) {
			if !actualSet[tripleKey(triple, mapping)] {
				return false
			}
		}
	}
	return true
}

// verifyMapping checks if the given mapping makes the two multisets identical
func verifyMapping(expected, actual []*Triple, mapping map[string]string) bool {
	counts := make(map[string]int, len(expected))
	for _, triple := range expected {
		counts[tripleKey(triple, mapping)]++
	}
	for _, triple := range actual {
		key := tripleKey(triple, nil)
		if counts[key] == 0 {
			return false
		}
		counts[key]--
	}
	return true
}

// tripleKey creates a string key for a triple, applying blank node mapping if provided
func tripleKey(triple *Triple, mapping map[string]string) string {
	return termString(triple.Subject, mapping) + " " +
		termString(triple.Predicate, mapping) + " " +
		termString(triple.Object, mapping)
}

// termString converts a term to its canonical form, applying blank node mapping if applicable
func termString(term Term, mapping map[string]string) string {
	if b, ok := term.(*BlankNode); ok && mapping != nil {
		if mapped, exists := mapping[b.ID]; exists {
			return "_:" + mapped
		}
	}
	return CanonicalTerm(term)
}
