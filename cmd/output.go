package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spigell/job-matcher/internal/recommender"
)

const (
	outputText = "text"
	outputJSON = "json"
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func writeRecommendations(w io.Writer, res *recommender.Recommendations) error {
	if msg := outcomeMessage(res.Outcome); msg != "" {
		_, err := fmt.Fprintf(w, "no recommendations: %s\n", msg)
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSCORE\tRAW\tTITLE\tLINK")
	for _, item := range res.Items {
		title := item.Posting.Title
		if item.Boosted {
			title += " *"
		}
		fmt.Fprintf(tw, "%d\t%.3f\t%.3f\t%s\t%s\n", item.Rank, item.Score, item.RawScore, title, item.Link)
	}
	return tw.Flush()
}

func recommendationLabel(item recommender.Recommendation) string {
	link := item.Link
	if link == "" {
		link = "no link"
	}
	return fmt.Sprintf("%d. %s (%.3f) / %s", item.Rank, item.Posting.Title, item.Score, link)
}
