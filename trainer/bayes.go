package trainer

import (
	"math"
	"sort"

	"github.com/hazyhaar/dlm/dataset"
)

// laplaceAlpha is the additive smoothing constant.
const laplaceAlpha = 1.0

// Model is a fitted multinomial naive Bayes classifier.
type Model struct {
	// Classes in sorted order; indices into the probability tables.
	Classes []string `json:"classes"`

	// Vocab maps a namespaced feature to its column index.
	Vocab map[string]int `json:"vocab"`

	// ClassLogPrior[c] is log P(class c).
	ClassLogPrior []float64 `json:"class_log_prior"`

	// FeatureLogProb[c][f] is log P(feature f | class c), smoothed.
	FeatureLogProb [][]float64 `json:"feature_log_prob"`

	// UseText records whether text features were part of training, so
	// prediction expands rows the same way.
	UseText bool `json:"use_text"`
}

// fit estimates priors and per-class feature likelihoods from the training
// rows. Classes and vocabulary are sorted, so the same input produces the
// same model.
func fit(rows []dataset.Row, cfg Config) *Model {
	vocab := buildVocab(rows, cfg)

	classSet := make(map[string]int)
	for _, r := range rows {
		classSet[r.Label]++
	}
	classes := make([]string, 0, len(classSet))
	for c := range classSet {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	classIdx := make(map[string]int, len(classes))
	for i, c := range classes {
		classIdx[c] = i
	}

	counts := make([][]float64, len(classes))
	totals := make([]float64, len(classes))
	for i := range counts {
		counts[i] = make([]float64, len(vocab))
	}
	for _, r := range rows {
		ci := classIdx[r.Label]
		for _, f := range rowFeatures(r, cfg.UseText) {
			fi, ok := vocab[f]
			if !ok {
				continue
			}
			counts[ci][fi]++
			totals[ci]++
		}
	}

	logPrior := make([]float64, len(classes))
	logProb := make([][]float64, len(classes))
	n := float64(len(rows))
	v := float64(len(vocab))
	for ci, c := range classes {
		logPrior[ci] = math.Log(float64(classSet[c]) / n)
		logProb[ci] = make([]float64, len(vocab))
		denom := totals[ci] + laplaceAlpha*v
		for fi := range logProb[ci] {
			logProb[ci][fi] = math.Log((counts[ci][fi] + laplaceAlpha) / denom)
		}
	}

	return &Model{
		Classes:        classes,
		Vocab:          vocab,
		ClassLogPrior:  logPrior,
		FeatureLogProb: logProb,
		UseText:        cfg.UseText,
	}
}

// Predict returns the most likely class for one row. Features outside the
// training vocabulary are ignored. Ties resolve to the first class in
// sorted order.
func (m *Model) Predict(r dataset.Row) string {
	best := 0
	bestScore := math.Inf(-1)
	for ci := range m.Classes {
		score := m.ClassLogPrior[ci]
		for _, f := range rowFeatures(r, m.UseText) {
			if fi, ok := m.Vocab[f]; ok {
				score += m.FeatureLogProb[ci][fi]
			}
		}
		if score > bestScore {
			bestScore = score
			best = ci
		}
	}
	return m.Classes[best]
}
