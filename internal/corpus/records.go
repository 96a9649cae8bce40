package corpus

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/spigell/job-matcher/internal/textnorm"
)

// Record is one raw posting with whatever fields the source provided.
type Record map[string]any

const titleField = "title"

var (
	// descriptionFields are tried in order; the first one holding text in any record wins.
	descriptionFields = []string{"skills_desc", "description"}
	linkFields        = []string{"application_url", "apply_url", "job_posting_url", "link", "url"}
)

// FromRecords normalizes arbitrary records into a Corpus. Field names are
// matched case- and whitespace-insensitively. Missing titles and links become
// empty strings. Records are never rejected.
func FromRecords(source string, records []Record) *Corpus {
	rows := make([]map[string]string, len(records))
	for i, rec := range records {
		rows[i] = canonical(rec)
	}

	descField := pickDescriptionField(rows)

	c := &Corpus{Source: source, Items: make([]*Posting, 0, len(rows))}
	for i, row := range rows {
		p := &Posting{
			ID:    i,
			Title: row[titleField],
			Link:  firstNonEmpty(row, linkFields),
		}

		if descField != "" {
			p.Description = row[descField]
		} else {
			p.Description = remainingText(row)
		}
		p.Normalized = textnorm.Normalize(p.Description)

		c.Items = append(c.Items, p)
	}

	return c
}

const byteOrderMark = "\ufeff"

func canonical(rec Record) map[string]string {
	out := make(map[string]string, len(rec))
	for k, v := range rec {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(k, byteOrderMark)))
		if key == "" {
			continue
		}
		out[key] = valueAsString(v)
	}
	return out
}

func pickDescriptionField(rows []map[string]string) string {
	for _, field := range descriptionFields {
		for _, row := range rows {
			if strings.TrimSpace(row[field]) != "" {
				return field
			}
		}
	}
	return ""
}

// remainingText joins every non-title, non-link value in key order.
func remainingText(row map[string]string) string {
	skip := map[string]bool{titleField: true}
	for _, f := range linkFields {
		skip[f] = true
	}

	keys := make([]string, 0, len(row))
	for k := range row {
		if !skip[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := strings.TrimSpace(row[k]); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

func firstNonEmpty(row map[string]string, fields []string) string {
	for _, f := range fields {
		if v := strings.TrimSpace(row[f]); v != "" {
			return v
		}
	}
	return ""
}

func valueAsString(v any) string {
	switch typed := v.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		if math.IsNaN(typed) {
			return ""
		}
		return fmt.Sprintf("%v", typed)
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
