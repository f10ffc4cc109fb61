package trainer

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hazyhaar/dlm/dataset"
)

func row(path, label, text string) dataset.Row {
	r := dataset.Row{
		Path:       path,
		Label:      label,
		Extension:  "pdf",
		PathTokens: dataset.PathTokens(path),
	}
	if text != "" {
		r.Text = text
		r.HasText = true
	}
	return r
}

// separableRows builds n rows per class whose path tokens fully determine
// the label.
func separableRows(n int) []dataset.Row {
	var rows []dataset.Row
	for i := 0; i < n; i++ {
		rows = append(rows,
			row(fmt.Sprintf("/finance/invoices/invoice_%d.pdf", i), "finance", ""),
			row(fmt.Sprintf("/hr/contracts/contract_%d.pdf", i), "hr", ""),
		)
	}
	return rows
}

func TestTrain_InsufficientData(t *testing.T) {
	rows := []dataset.Row{
		row("/a/x.pdf", "a", ""),
		row("/b/y.pdf", "b", ""),
	}
	_, err := Train(rows, Config{Seed: 42})
	require.ErrorIs(t, err, ErrInsufficientData)
}

func TestTrain_SingleClass(t *testing.T) {
	var rows []dataset.Row
	for i := 0; i < 10; i++ {
		rows = append(rows, row(fmt.Sprintf("/a/doc_%d.pdf", i), "only", ""))
	}
	_, err := Train(rows, Config{Seed: 42})
	require.ErrorIs(t, err, ErrSingleClass)
}

func TestTrain_SeparableData(t *testing.T) {
	res, err := Train(separableRows(10), Config{Seed: 42})
	require.NoError(t, err)

	assert.True(t, res.Metrics.Stratified)
	assert.Equal(t, 1.0, res.Metrics.Accuracy, "path tokens fully determine the label")
	assert.NotEmpty(t, res.ModelID)
	assert.Equal(t, []string{"finance", "hr"}, res.Model.Classes)

	for _, c := range res.Model.Classes {
		pc := res.Metrics.PerClass[c]
		assert.Equal(t, 1.0, pc.Precision, "class %s", c)
		assert.Equal(t, 1.0, pc.Recall, "class %s", c)
		assert.Greater(t, pc.Support, 0, "class %s", c)
	}
}

func TestTrain_Deterministic(t *testing.T) {
	// WHAT: Same dataset and seed produce identical results.
	rows := separableRows(8)

	a, err := Train(rows, Config{Seed: 42})
	require.NoError(t, err)
	b, err := Train(rows, Config{Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, a.Metrics.Accuracy, b.Metrics.Accuracy)
	assert.Equal(t, a.Metrics.TrainRows, b.Metrics.TrainRows)
	assert.Equal(t, a.Metrics.Confusion, b.Metrics.Confusion)
	assert.Equal(t, a.Model.Classes, b.Model.Classes)
	assert.Equal(t, a.Model.Vocab, b.Model.Vocab)
	assert.Equal(t, a.Model.FeatureLogProb, b.Model.FeatureLogProb)
}

func TestTrain_StratifiedFallback(t *testing.T) {
	// A singleton class cannot be split proportionally; the run still
	// succeeds but reports the plain shuffle.
	rows := separableRows(5)
	rows = append(rows, row("/legal/nda.pdf", "legal", ""))

	res, err := Train(rows, Config{Seed: 42})
	require.NoError(t, err)
	assert.False(t, res.Metrics.Stratified)
}

func TestTrain_StratifiedKeepsAllClasses(t *testing.T) {
	// Every class must appear in the training split even at small sizes.
	rows := []dataset.Row{
		row("/finance/a.pdf", "finance", ""),
		row("/finance/b.pdf", "finance", ""),
		row("/hr/a.pdf", "hr", ""),
		row("/hr/b.pdf", "hr", ""),
	}
	for seed := int64(0); seed < 20; seed++ {
		res, err := Train(rows, Config{Seed: seed})
		require.NoError(t, err, "seed %d", seed)
		assert.Len(t, res.Model.Classes, 2, "seed %d", seed)
	}
}

func TestTrain_TextFeatures(t *testing.T) {
	// Paths carry no signal here; only text distinguishes the classes.
	var rows []dataset.Row
	for i := 0; i < 10; i++ {
		rows = append(rows,
			row(fmt.Sprintf("/docs/file_%d.pdf", i*2), "finance",
				"invoice payment total amount due balance"),
			row(fmt.Sprintf("/docs/file_%d.pdf", i*2+1), "hr",
				"employee vacation leave policy benefits"),
		)
	}

	res, err := Train(rows, Config{Seed: 42, UseText: true})
	require.NoError(t, err)
	assert.Equal(t, 1.0, res.Metrics.Accuracy)

	// The vocabulary must carry namespaced text features.
	_, ok := res.Model.Vocab["text:invoice"]
	assert.True(t, ok, "expected text features in vocab")
}

func TestTrain_TextIgnoredByDefault(t *testing.T) {
	rows := separableRows(5)
	res, err := Train(rows, Config{Seed: 42})
	require.NoError(t, err)
	for f := range res.Model.Vocab {
		assert.NotContains(t, f, "text:", "text features must be off by default")
	}
}

func TestModel_PredictUnknownFeatures(t *testing.T) {
	// Rows made only of unseen tokens fall back to the prior.
	res, err := Train(separableRows(10), Config{Seed: 42})
	require.NoError(t, err)

	pred := res.Model.Predict(row("/completely/unrelated/thing.pdf", "", ""))
	assert.Contains(t, res.Model.Classes, pred)
}
