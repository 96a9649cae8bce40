package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/job-matcher/internal/profile"
	"github.com/spigell/job-matcher/internal/recommender"
	"github.com/spigell/job-matcher/internal/utils"
)

const (
	PromptBack        = "back"
	PromptExit        = "exit"
	PromptResultsFile = "Dump recommendations to file"
	PromptCorpusFile  = "Dump postings to file"

	descriptionPreview = 600
)

var errExit = errors.New("exit requested")

var matchCmd = &cobra.Command{
	Use:   "match <resume>",
	Short: "Rank job postings against a resume (.json, .yaml, .toml, .txt, .md)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		match(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().IntP("top-n", "n", 0, "number of recommendations (default engine.top-n)")
	matchCmd.Flags().StringP("output", "o", outputText, "output format: text or json")
	matchCmd.Flags().BoolP("interactive", "i", false, "browse recommendations interactively")
}

func match(cmd *cobra.Command, path string) {
	ctx := context.Background()
	logger, config := setup()

	topN, _ := cmd.Flags().GetInt("top-n")
	output, _ := cmd.Flags().GetString("output")
	interactive, _ := cmd.Flags().GetBool("interactive")

	resume, err := profile.Load(path, config.Skills)
	if err != nil {
		logger.Fatal("loading resume", zap.Error(err), zap.String("path", path))
	}

	logger.Debug("resume loaded",
		zap.String("name", resume.Name),
		zap.Strings("skills", resume.UniqueSkills()),
		zap.String("text", utils.TruncateForLog(resume.FullText, 120)),
	)

	engine, err := fittedEngine(ctx, config, logger, nil)
	if err != nil {
		logger.Fatal("preparing the engine", zap.Error(err))
	}

	res, err := engine.Recommend(resume, topN)
	if err != nil {
		logger.Fatal("matching resume", zap.Error(err))
	}

	logger.Info("resume matched",
		zap.String("outcome", string(res.Outcome)),
		zap.Int("count", res.Len()),
		zap.Uint64("model_version", res.ModelVersion),
	)

	if interactive {
		if err := browse(logger, engine.Snapshot(), res); err != nil && !errors.Is(err, errExit) {
			logger.Fatal("exiting", zap.Error(err))
		}
		return
	}

	switch output {
	case outputJSON:
		err = writeJSON(os.Stdout, res)
	case outputText:
		err = writeRecommendations(os.Stdout, res)
	default:
		err = fmt.Errorf("unknown output format %q", output)
	}
	if err != nil {
		logger.Fatal("writing recommendations", zap.Error(err))
	}
}

// browse lets the user inspect one recommendation at a time.
func browse(logger *zap.Logger, snap *recommender.Snapshot, res *recommender.Recommendations) error {
	if msg := outcomeMessage(res.Outcome); msg != "" {
		logger.Info("no recommendations", zap.String("reason", msg))
		return nil
	}

	for {
		items := make([]string, 0, res.Len()+3)
		for _, item := range res.Items {
			items = append(items, recommendationLabel(item))
		}
		items = append(items, PromptResultsFile, PromptCorpusFile, PromptExit)

		selectPrompt := promptui.Select{
			Label: "Choose a posting and press ENTER",
			Items: items,
			Size:  10,
		}

		_, selected, err := selectPrompt.Run()
		if err != nil {
			return err
		}

		switch selected {
		case PromptExit:
			return errExit
		case PromptResultsFile:
			filename, err := res.DumpToTmpFile()
			if err != nil {
				return fmt.Errorf("dump recommendations to file: %w", err)
			}
			logger.Info("dumping recommendations to file", zap.String("filename", filename))
		case PromptCorpusFile:
			filename, err := snap.Corpus.DumpToTmpFile()
			if err != nil {
				return fmt.Errorf("dump postings to file: %w", err)
			}
			logger.Info("dumping postings to file", zap.String("filename", filename))
		default:
			rank, err := strconv.Atoi(strings.SplitN(selected, ".", 2)[0])
			if err != nil || rank < 1 || rank > res.Len() {
				return fmt.Errorf("there is no such recommendation %q", selected)
			}
			if err := showRecommendation(res.Items[rank-1]); err != nil {
				return err
			}
		}
	}
}

func showRecommendation(item recommender.Recommendation) error {
	fmt.Printf("\n%s\n", item.Posting.Title)
	fmt.Printf("score: %.3f (raw %.3f, boosted: %t)\n", item.Score, item.RawScore, item.Boosted)
	if item.Link != "" {
		fmt.Printf("apply: %s\n", item.Link)
	}
	fmt.Printf("\n%s\n\n", utils.TruncateForLog(item.Posting.Description, descriptionPreview))

	backPrompt := promptui.Select{
		Label: "Posting",
		Items: []string{PromptBack, PromptExit},
	}
	_, selected, err := backPrompt.Run()
	if err != nil {
		return err
	}
	if selected == PromptExit {
		return errExit
	}
	return nil
}
