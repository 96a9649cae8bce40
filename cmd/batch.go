package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/profile"
	"github.com/spigell/job-matcher/internal/recommender"
)

var batchCmd = &cobra.Command{
	Use:   "batch <resume>...",
	Short: "Rank job postings against several resumes at once",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		batch(cmd, args)
	},
}

type batchResult struct {
	Resume string                       `json:"resume"`
	Result *recommender.Recommendations `json:"result"`
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntP("top-n", "n", 0, "number of recommendations per resume (default engine.batch-top-n)")
	batchCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
	batchCmd.Flags().Bool("dump", false, "also write the results to a temporary file")
}

func batch(cmd *cobra.Command, paths []string) {
	ctx := context.Background()
	logger, config := setup()

	topN, _ := cmd.Flags().GetInt("top-n")
	output, _ := cmd.Flags().GetString("output")
	dump, _ := cmd.Flags().GetBool("dump")

	resumes := make([]*profile.Profile, len(paths))
	for i, path := range paths {
		resume, err := profile.Load(path, config.Skills)
		if err != nil {
			logger.Fatal("loading resume", zap.Error(err), zap.String("path", path))
		}
		resumes[i] = resume
	}

	engine, err := fittedEngine(ctx, config, logger, nil)
	if err != nil {
		logger.Fatal("preparing the engine", zap.Error(err))
	}

	results, err := engine.Batch(ctx, resumes, topN)
	if err != nil {
		logger.Fatal("matching resumes", zap.Error(err))
	}

	report := make([]batchResult, len(paths))
	for i, path := range paths {
		report[i] = batchResult{Resume: path, Result: results[i]}
		logger.Info("resume matched",
			zap.String("resume", path),
			zap.String("outcome", string(results[i].Outcome)),
			zap.Int("count", results[i].Len()),
		)
	}

	switch output {
	case outputJSON:
		err = writeJSON(os.Stdout, report)
	case outputText:
		for _, r := range report {
			fmt.Printf("\n== %s\n", r.Resume)
			if err = writeRecommendations(os.Stdout, r.Result); err != nil {
				break
			}
		}
	default:
		err = fmt.Errorf("unknown output format %q", output)
	}
	if err != nil {
		logger.Fatal("writing recommendations", zap.Error(err))
	}

	if dump {
		filename, err := dumpBatch(report)
		if err != nil {
			logger.Fatal("dump results to file", zap.Error(err))
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
	}
}

func dumpBatch(report []batchResult) (string, error) {
	file, err := os.CreateTemp("", "batch_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := writeJSON(file, report); err != nil {
		return "", err
	}
	return file.Name(), nil
}
