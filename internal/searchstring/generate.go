// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package searchstring

// SimilarWordsFunc returns words similar to the given one, most similar
// first. Implementations wrap an external language model; the generator
// only consumes the ranking.
type SimilarWordsFunc func(word string) []string

// Generate builds a search string from topics, keeping nWordsPerTopic
// words in each topic.
func Generate(topics [][]string, nWordsPerTopic int) string {
	return JoinTopics(ReduceTopics(topics, nWordsPerTopic))
}

// GenerateWithSimilarWords builds a search string where each kept word
// is widened with up to nSimilarPerWord similar words from gen. The word
// itself always heads its group.
func GenerateWithSimilarWords(topics [][]string, nWordsPerTopic, nSimilarPerWord int, gen SimilarWordsFunc) string {
	reduced := ReduceTopics(topics, nWordsPerTopic)

	widened := make([][][]string, len(reduced))
	for i, topic := range reduced {
		groups := make([][]string, len(topic))
		for j, word := range topic {
			similar := gen(word)
			if len(similar) > nSimilarPerWord {
				similar = similar[:nSimilarPerWord]
			}
			groups[j] = append([]string{word}, similar...)
		}
		widened[i] = groups
	}

	return JoinTopicsWithSimilarWords(widened)
}
