package trainer

import (
	"regexp"
	"sort"
	"strings"

	"github.com/hazyhaar/dlm/dataset"
)

// Feature namespaces keep a token like "report" in a path distinct from the
// same word in document text, so each carries its own weight.
const (
	nsPath = "path:"
	nsExt  = "ext:"
	nsText = "text:"
)

var textTokenRe = regexp.MustCompile(`[a-z0-9]+`)

// rowFeatures expands one row into namespaced feature tokens.
func rowFeatures(r dataset.Row, useText bool) []string {
	feats := make([]string, 0, len(r.PathTokens)+1)
	for _, tok := range r.PathTokens {
		feats = append(feats, nsPath+tok)
	}
	if r.Extension != "" {
		feats = append(feats, nsExt+r.Extension)
	}
	if useText && r.HasText {
		for _, tok := range textTokenRe.FindAllString(strings.ToLower(r.Text), -1) {
			feats = append(feats, nsText+tok)
		}
	}
	return feats
}

// buildVocab indexes the features of the training rows. Text features below
// the document-frequency floor are dropped; rare text tokens are noise that
// the model would memorize. The vocabulary is sorted so feature indices do
// not depend on map iteration order.
func buildVocab(rows []dataset.Row, cfg Config) map[string]int {
	docFreq := make(map[string]int)
	for _, r := range rows {
		seen := make(map[string]struct{})
		for _, f := range rowFeatures(r, cfg.UseText) {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			docFreq[f]++
		}
	}

	feats := make([]string, 0, len(docFreq))
	for f, df := range docFreq {
		if strings.HasPrefix(f, nsText) && df < cfg.TextMinDocFreq {
			continue
		}
		feats = append(feats, f)
	}
	sort.Strings(feats)

	vocab := make(map[string]int, len(feats))
	for i, f := range feats {
		vocab[f] = i
	}
	return vocab
}
