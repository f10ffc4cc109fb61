package trainer

import (
	"github.com/hazyhaar/dlm/dataset"
)

// ClassMetrics is per-class evaluation on the held-out set.
type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
	Support   int     `json:"support"`
}

// Metrics summarizes a training run.
type Metrics struct {
	Accuracy   float64                 `json:"accuracy"`
	Stratified bool                    `json:"stratified"`
	TrainRows  int                     `json:"train_rows"`
	TestRows   int                     `json:"test_rows"`
	PerClass   map[string]ClassMetrics `json:"per_class"`
	// Confusion[actual][predicted] counts held-out rows.
	Confusion map[string]map[string]int `json:"confusion"`
}

// evaluate scores the model on the held-out rows.
func evaluate(m *Model, test []dataset.Row) *Metrics {
	confusion := make(map[string]map[string]int)
	correct := 0
	for _, r := range test {
		pred := m.Predict(r)
		if confusion[r.Label] == nil {
			confusion[r.Label] = make(map[string]int)
		}
		confusion[r.Label][pred]++
		if pred == r.Label {
			correct++
		}
	}

	accuracy := 0.0
	if len(test) > 0 {
		accuracy = float64(correct) / float64(len(test))
	}

	perClass := make(map[string]ClassMetrics, len(m.Classes))
	for _, c := range m.Classes {
		var tp, fp, fn int
		for actual, preds := range confusion {
			for pred, n := range preds {
				switch {
				case actual == c && pred == c:
					tp += n
				case actual != c && pred == c:
					fp += n
				case actual == c && pred != c:
					fn += n
				}
			}
		}

		var precision, recall, f1 float64
		if tp+fp > 0 {
			precision = float64(tp) / float64(tp+fp)
		}
		if tp+fn > 0 {
			recall = float64(tp) / float64(tp+fn)
		}
		if precision+recall > 0 {
			f1 = 2 * precision * recall / (precision + recall)
		}
		perClass[c] = ClassMetrics{
			Precision: precision,
			Recall:    recall,
			F1:        f1,
			Support:   tp + fn,
		}
	}

	return &Metrics{
		Accuracy:  accuracy,
		PerClass:  perClass,
		Confusion: confusion,
	}
}
