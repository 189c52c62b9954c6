package pipeline

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/theirongolddev/spendvibe/internal/model"
	"github.com/theirongolddev/spendvibe/internal/textfeat"
)

// minSamples is the smallest batch the clusterer accepts.
const minSamples = 3

// Base numeric columns, in schema order.
var baseColumns = []string{"amount", "hour", "is_weekend", "time_diff_hours"}

// FeatureSchema is the ordered column layout of a FeatureMatrix.
type FeatureSchema struct {
	Columns   []string
	Parents   []string
	Periods   []model.TimePeriod
	TextTerms []string
}

// FeatureMatrix holds one row per transaction, in transaction order.
type FeatureMatrix struct {
	Schema FeatureSchema
	Rows   [][]float64
}

// Encode builds the feature matrix for txns. A failing text weighter only
// drops the text columns; it is logged and never fails the batch.
func Encode(txns []model.Transaction, weighter textfeat.TextWeighter, textDims int, log zerolog.Logger) (*FeatureMatrix, error) {
	if len(txns) < minSamples {
		return nil, fmt.Errorf("%w: need at least %d transactions, got %d", ErrInsufficientSamples, minSamples, len(txns))
	}

	parentSet := make(map[string]struct{})
	periodSeen := make(map[model.TimePeriod]bool)
	for _, t := range txns {
		parentSet[t.ParentName] = struct{}{}
		periodSeen[t.Period] = true
	}

	schema := FeatureSchema{}
	for name := range parentSet {
		schema.Parents = append(schema.Parents, name)
	}
	sort.Strings(schema.Parents)
	for _, p := range model.AllPeriods {
		if periodSeen[p] {
			schema.Periods = append(schema.Periods, p)
		}
	}

	var text textfeat.Signature
	if weighter != nil && textDims > 0 {
		sig, err := weighText(weighter, txns, textDims)
		if err != nil {
			log.Warn().Err(err).Msg("text features unavailable, continuing without them")
		} else {
			text = sig
			schema.TextTerms = sig.Terms
		}
	}

	schema.Columns = append(schema.Columns, baseColumns...)
	for _, name := range schema.Parents {
		schema.Columns = append(schema.Columns, "parent="+name)
	}
	for _, p := range schema.Periods {
		schema.Columns = append(schema.Columns, "period="+p.String())
	}
	for i := range schema.TextTerms {
		schema.Columns = append(schema.Columns, fmt.Sprintf("text_%d", i))
	}

	parentCol := make(map[string]int, len(schema.Parents))
	for i, name := range schema.Parents {
		parentCol[name] = len(baseColumns) + i
	}
	periodCol := make(map[model.TimePeriod]int, len(schema.Periods))
	for i, p := range schema.Periods {
		periodCol[p] = len(baseColumns) + len(schema.Parents) + i
	}
	textStart := len(baseColumns) + len(schema.Parents) + len(schema.Periods)

	rows := make([][]float64, len(txns))
	for i, t := range txns {
		row := make([]float64, len(schema.Columns))
		row[0] = t.Amount
		row[1] = float64(t.Hour)
		if t.IsWeekend {
			row[2] = 1
		}
		row[3] = t.TimeDiffHours
		row[parentCol[t.ParentName]] = 1
		row[periodCol[t.Period]] = 1
		if len(schema.TextTerms) > 0 {
			copy(row[textStart:], text.Rows[i])
		}
		rows[i] = row
	}

	log.Debug().
		Int("rows", len(rows)).
		Int("columns", len(schema.Columns)).
		Int("text_terms", len(schema.TextTerms)).
		Msg("encoded features")

	return &FeatureMatrix{Schema: schema, Rows: rows}, nil
}

func weighText(w textfeat.TextWeighter, txns []model.Transaction, dims int) (sig textfeat.Signature, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("text weighter panic: %v", r)
		}
	}()

	docs := make([]string, len(txns))
	for i, t := range txns {
		docs[i] = t.Description + " " + t.CategoryName
	}

	sig, err = w.FitTransform(docs, dims)
	if err != nil {
		return textfeat.Signature{}, fmt.Errorf("weighting descriptions: %w", err)
	}
	if len(sig.Rows) != len(txns) {
		return textfeat.Signature{}, fmt.Errorf("text weighter returned %d rows for %d documents", len(sig.Rows), len(txns))
	}
	for _, row := range sig.Rows {
		if len(row) != len(sig.Terms) {
			return textfeat.Signature{}, fmt.Errorf("text weighter returned ragged rows")
		}
	}
	return sig, nil
}
