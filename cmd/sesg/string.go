// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/demetrius-mp/sesg/internal/searchstring"
	"github.com/demetrius-mp/sesg/internal/store"
)

var stringCmd = &cobra.Command{
	Use:   "string",
	Short: "Generate and manage search strings",
}

var stringGenerateCmd = &cobra.Command{
	Use:   "generate [topics.yaml]",
	Short: "Assemble a search string from a topics file",
	Long: `Generate reads a topics YAML file and assembles a Scopus search string:
words within a topic are ANDed, topics are ORed. The topics file holds
one word list per topic:

    topics:
      - [machine, learning, model]
      - [code, smell, detection]

With --similar-words, each kept word is widened into an OR group using a
YAML map of precomputed similar words:

    machine: [computer, device]
    learning: [knowledge]

By default the string is printed to stdout. With --review, --experiment,
and --strategy it is stored for a later "sesg search" run instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runStringGenerate,
}

// topicsFile is the YAML shape of a topics input file.
type topicsFile struct {
	Topics [][]string `yaml:"topics"`
}

func runStringGenerate(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading topics file: %w", err)
	}
	var tf topicsFile
	if err := yaml.Unmarshal(data, &tf); err != nil {
		return fmt.Errorf("parsing topics file: %w", err)
	}
	if len(tf.Topics) == 0 {
		return fmt.Errorf("topics file %s has no topics", args[0])
	}

	wordsPerTopic, _ := cmd.Flags().GetInt("words-per-topic")
	if wordsPerTopic <= 0 {
		wordsPerTopic = viper.GetInt("string.words_per_topic")
	}
	if wordsPerTopic <= 0 {
		wordsPerTopic = 5
	}

	result, err := generateString(cmd, tf.Topics, wordsPerTopic)
	if err != nil {
		return err
	}

	reviewName, _ := cmd.Flags().GetString("review")
	experimentName, _ := cmd.Flags().GetString("experiment")
	if reviewName == "" && experimentName == "" {
		fmt.Println(result)
		return nil
	}
	if reviewName == "" || experimentName == "" {
		return fmt.Errorf("--review and --experiment must be given together")
	}

	ctx := cmd.Context()
	s, err := store.Open(dbPath())
	if err != nil {
		return err
	}
	defer s.Close()

	review, err := s.ReviewByName(ctx, reviewName)
	if err != nil {
		return err
	}
	experiment, err := s.ExperimentByName(ctx, review.ID, experimentName)
	if err != nil {
		return err
	}

	strategy, _ := cmd.Flags().GetString("strategy")
	if err := s.AddSearchStrings(ctx, experiment.ID, strategy, []string{result}); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Stored 1 search string for experiment %s.\n", experimentName)
	return nil
}

// generateString assembles the search string, widening words with a
// similar-words map when one was given.
func generateString(cmd *cobra.Command, topics [][]string, wordsPerTopic int) (string, error) {
	similarPath, _ := cmd.Flags().GetString("similar-words")
	if similarPath == "" {
		return searchstring.Generate(topics, wordsPerTopic), nil
	}

	data, err := os.ReadFile(similarPath)
	if err != nil {
		return "", fmt.Errorf("reading similar words file: %w", err)
	}
	similar := map[string][]string{}
	if err := yaml.Unmarshal(data, &similar); err != nil {
		return "", fmt.Errorf("parsing similar words file: %w", err)
	}

	similarPerWord, _ := cmd.Flags().GetInt("similar-per-word")
	if similarPerWord <= 0 {
		similarPerWord = viper.GetInt("string.similar_words_per_word")
	}
	if similarPerWord <= 0 {
		similarPerWord = 3
	}

	gen := func(word string) []string { return similar[word] }
	return searchstring.GenerateWithSimilarWords(topics, wordsPerTopic, similarPerWord, gen), nil
}

func init() {
	stringGenerateCmd.Flags().Int("words-per-topic", 0, "words kept per topic (default 5)")
	stringGenerateCmd.Flags().String("similar-words", "", "YAML map of word to similar words, used to widen each word into an OR group")
	stringGenerateCmd.Flags().Int("similar-per-word", 0, "similar words kept per word (default 3)")
	stringGenerateCmd.Flags().String("review", "", "store the string under this review")
	stringGenerateCmd.Flags().String("experiment", "", "store the string under this experiment")
	stringGenerateCmd.Flags().String("strategy", "", "strategy label recorded with the string")

	stringCmd.AddCommand(stringGenerateCmd)
	rootCmd.AddCommand(stringCmd)
}
