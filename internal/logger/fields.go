package logger

import (
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldCorpusSource is the structured log field key for where the corpus was loaded from.
	FieldCorpusSource = "corpus_source"
	// FieldModelVersion is the structured log field key for the fitted snapshot version.
	FieldModelVersion = "model_version"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger becomes a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// CommonFields returns the fields describing the corpus source and snapshot
// version. A zero version is treated as unknown and omitted.
func CommonFields(corpusSource string, modelVersion uint64) []zap.Field {
	version := ""
	if modelVersion > 0 {
		version = strconv.FormatUint(modelVersion, 10)
	}
	return StringFields(
		StringField{Key: FieldCorpusSource, Value: corpusSource},
		StringField{Key: FieldModelVersion, Value: version},
	)
}

// WithCommonFields attaches the corpus fields to the provided logger.
func WithCommonFields(logger *zap.Logger, corpusSource string, modelVersion uint64) *zap.Logger {
	return WithFields(logger, CommonFields(corpusSource, modelVersion)...)
}
