// Package trainer fits a baseline document classifier on dataset rows and
// reports how well it generalizes. The model is a multinomial naive Bayes
// over path tokens, the file extension, and optionally extracted text.
// Training is deterministic for a given dataset and seed.
package trainer

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hazyhaar/dlm/dataset"
)

// ErrInsufficientData is returned when the dataset is too small to split
// into meaningful train and test sets.
var ErrInsufficientData = errors.New("trainer: not enough labeled rows")

// ErrSingleClass is returned when every row carries the same label, so
// there is nothing to discriminate.
var ErrSingleClass = errors.New("trainer: dataset has a single class")

// Config configures a training run.
type Config struct {
	// Seed drives the train/test shuffle. Same dataset and seed give the
	// same split, model and metrics.
	Seed int64 `json:"seed" yaml:"seed"`

	// TestFraction is the share of rows held out for evaluation
	// (default: 0.2).
	TestFraction float64 `json:"test_fraction" yaml:"test_fraction"`

	// MinRows is the smallest dataset accepted for training (default: 3).
	MinRows int `json:"min_rows" yaml:"min_rows"`

	// UseText folds text tokens into the feature space for rows that
	// have extracted content.
	UseText bool `json:"use_text" yaml:"use_text"`

	// TextMinDocFreq drops text tokens seen in fewer training documents
	// (default: 2). Path and extension features are never filtered.
	TextMinDocFreq int `json:"text_min_doc_freq" yaml:"text_min_doc_freq"`

	// Logger for progress messages.
	Logger *slog.Logger `json:"-" yaml:"-"`
}

func (c *Config) defaults() {
	if c.TestFraction <= 0 || c.TestFraction >= 1 {
		c.TestFraction = 0.2
	}
	if c.MinRows <= 0 {
		c.MinRows = 3
	}
	if c.TextMinDocFreq <= 0 {
		c.TextMinDocFreq = 2
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Result is a fitted model with its evaluation metrics.
type Result struct {
	ModelID string   `json:"model_id"`
	Model   *Model   `json:"model"`
	Metrics *Metrics `json:"metrics"`
}

// Train splits rows, fits the classifier on the training portion and
// evaluates it on the held-out portion.
func Train(rows []dataset.Row, cfg Config) (*Result, error) {
	cfg.defaults()

	if len(rows) < cfg.MinRows {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrInsufficientData, len(rows), cfg.MinRows)
	}
	if classCount(rows) < 2 {
		return nil, ErrSingleClass
	}

	start := time.Now()
	trainRows, testRows, stratified := split(rows, cfg.Seed, cfg.TestFraction)

	// The single-class check applies to the full dataset. A tiny class can
	// still end up entirely held out; the fit then degenerates to the
	// remaining classes and the metrics show it.
	model := fit(trainRows, cfg)
	metrics := evaluate(model, testRows)
	metrics.Stratified = stratified
	metrics.TrainRows = len(trainRows)
	metrics.TestRows = len(testRows)

	cfg.Logger.Info("training complete",
		"rows", len(rows),
		"classes", len(model.Classes),
		"features", len(model.Vocab),
		"accuracy", metrics.Accuracy,
		"stratified", stratified,
		"duration", time.Since(start))

	return &Result{
		ModelID: uuid.NewString(),
		Model:   model,
		Metrics: metrics,
	}, nil
}

func classCount(rows []dataset.Row) int {
	seen := make(map[string]struct{})
	for _, r := range rows {
		seen[r.Label] = struct{}{}
	}
	return len(seen)
}
