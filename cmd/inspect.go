package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/vectorspace"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Fit the corpus and print a summary of its vocabulary",
	Run: func(cmd *cobra.Command, _ []string) {
		inspect(cmd)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().IntP("terms", "t", 10, "number of rarest and most common terms to print")
}

type termWeight struct {
	Term string
	IDF  float64
}

func inspect(cmd *cobra.Command) {
	ctx := context.Background()
	logger, config := setup()

	limit, _ := cmd.Flags().GetInt("terms")

	engine, err := fittedEngine(ctx, config, logger, nil)
	if err != nil {
		logger.Fatal("preparing the engine", zap.Error(err))
	}

	snap := engine.Snapshot()
	weights := termWeights(snap.Model)

	fmt.Printf("corpus:         %s\n", snap.Corpus.Source)
	fmt.Printf("postings:       %d\n", snap.Corpus.Len())
	fmt.Printf("vocabulary:     %d (max %d)\n", snap.Model.VocabularySize(), config.Engine.MaxFeatures)
	fmt.Printf("model version:  %d\n", snap.Version())

	if len(weights) == 0 {
		return
	}
	if limit > len(weights) {
		limit = len(weights)
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nRAREST\tIDF\tMOST COMMON\tIDF")
	for i := 0; i < limit; i++ {
		rare := weights[i]
		common := weights[len(weights)-1-i]
		fmt.Fprintf(tw, "%s\t%.4f\t%s\t%.4f\n", rare.Term, rare.IDF, common.Term, common.IDF)
	}
	if err := tw.Flush(); err != nil {
		logger.Fatal("writing summary", zap.Error(err))
	}
}

// termWeights returns the vocabulary ordered by descending IDF, then term.
func termWeights(m *vectorspace.Model) []termWeight {
	vocab := m.Vocabulary()
	weights := make([]termWeight, 0, len(vocab))
	for _, term := range vocab {
		idf, _ := m.IDF(term)
		weights = append(weights, termWeight{Term: term, IDF: idf})
	}

	sort.SliceStable(weights, func(i, j int) bool {
		if weights[i].IDF != weights[j].IDF {
			return weights[i].IDF > weights[j].IDF
		}
		return weights[i].Term < weights[j].Term
	})
	return weights
}
