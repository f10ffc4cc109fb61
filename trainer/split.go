package trainer

import (
	"math/rand"
	"sort"

	"github.com/hazyhaar/dlm/dataset"
)

// split partitions rows into train and test sets. When every class has at
// least two rows the split is stratified so each class keeps its proportion
// on both sides; otherwise it falls back to a plain shuffle and the caller
// reports that through Metrics.Stratified.
func split(rows []dataset.Row, seed int64, testFraction float64) (train, test []dataset.Row, stratified bool) {
	rng := rand.New(rand.NewSource(seed))

	byClass := make(map[string][]int)
	for i, r := range rows {
		byClass[r.Label] = append(byClass[r.Label], i)
	}

	stratified = true
	for _, idxs := range byClass {
		if len(idxs) < 2 {
			stratified = false
			break
		}
	}

	var testIdx map[int]bool
	if stratified {
		testIdx = stratifiedTestSet(byClass, rng, testFraction)
	} else {
		testIdx = plainTestSet(len(rows), rng, testFraction)
	}

	for i, r := range rows {
		if testIdx[i] {
			test = append(test, r)
		} else {
			train = append(train, r)
		}
	}
	return train, test, stratified
}

// stratifiedTestSet draws a proportional held-out share from every class,
// always leaving at least one row of each class in training.
func stratifiedTestSet(byClass map[string][]int, rng *rand.Rand, frac float64) map[int]bool {
	// Map iteration order is random; class order must not be.
	classes := make([]string, 0, len(byClass))
	for c := range byClass {
		classes = append(classes, c)
	}
	sort.Strings(classes)

	testIdx := make(map[int]bool)
	for _, c := range classes {
		idxs := append([]int(nil), byClass[c]...)
		rng.Shuffle(len(idxs), func(i, j int) { idxs[i], idxs[j] = idxs[j], idxs[i] })

		n := int(float64(len(idxs)) * frac)
		if n < 1 {
			n = 1
		}
		if n >= len(idxs) {
			n = len(idxs) - 1
		}
		for _, i := range idxs[:n] {
			testIdx[i] = true
		}
	}
	return testIdx
}

// plainTestSet draws a uniform held-out share, keeping both sides non-empty.
func plainTestSet(total int, rng *rand.Rand, frac float64) map[int]bool {
	idxs := make([]int, total)
	for i := range idxs {
		idxs[i] = i
	}
	rng.Shuffle(len(idxs), func(i, j int) { idxs[i], idxs[j] = idxs[j], idxs[i] })

	n := int(float64(total) * frac)
	if n < 1 {
		n = 1
	}
	if n >= total {
		n = total - 1
	}

	testIdx := make(map[int]bool)
	for _, i := range idxs[:n] {
		testIdx[i] = true
	}
	return testIdx
}
