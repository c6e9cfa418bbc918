// Package rank sums feature vectors into scores, orders candidates and
// renders the ranked tables.
package rank

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/cognicore/clarifier/pkg/clarifier/features"
	"github.com/cognicore/clarifier/pkg/clarifier/internalerr"
)

// TextWidth is the padded width of the candidate column.
const TextWidth = 50

// Row is one ranked candidate with its feature breakdown.
type Row struct {
	Text     string
	Features features.Vector
	Score    float64
}

// QueryScore is the sum of the seven query features.
//
// score = pattern + distance + occurrence + frequency + inclusion + semantic + entity
func QueryScore(v features.Vector) float64 {
	return v.Pattern + v.Distance + v.Occurrence + v.Frequency + v.Inclusion + v.Semantic + v.Entity
}

// ItemScore adds the list-title feature to the query sum and subtracts the
// inhibition penalty.
//
// score = list + QueryScore(v) - inhibition
func ItemScore(v features.Vector) float64 {
	return v.List + QueryScore(v) - v.Inhibition
}

// Query scores and sorts query candidates.
func Query(cands []string, vecs []features.Vector) ([]Row, error) {
	return build(cands, vecs, QueryScore)
}

// Items scores and sorts item candidates.
func Items(cands []string, vecs []features.Vector) ([]Row, error) {
	return build(cands, vecs, ItemScore)
}

// build pairs candidates with vectors and sorts descending by score.
// Equal scores keep candidate order.
func build(cands []string, vecs []features.Vector, score func(features.Vector) float64) ([]Row, error) {
	if len(cands) != len(vecs) {
		return nil, fmt.Errorf("%w: %d candidates, %d feature vectors", internalerr.ErrInvalidInput, len(cands), len(vecs))
	}
	rows := make([]Row, len(cands))
	for i, c := range cands {
		rows[i] = Row{Text: c, Features: vecs[i], Score: score(vecs[i])}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Score > rows[j].Score
	})
	return rows, nil
}

// WriteQuery renders query rows, one per line:
//
//	text<TAB>pattern distance occurrence frequency inclusion | semantic | entity
//
// with every field tab-separated and a trailing tab.
func WriteQuery(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	for _, r := range rows {
		v := r.Features
		fmt.Fprintf(bw, "%-*s\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t|\t%.4f\t|\t%.4f\t\n",
			TextWidth, r.Text,
			v.Pattern, v.Distance, v.Occurrence, v.Frequency, v.Inclusion,
			v.Semantic,
			v.Entity)
	}
	return bw.Flush()
}

// WriteItems renders item rows, one per line:
//
//	text<TAB>list | pattern distance occurrence frequency inclusion | semantic | entity | -inhibition
//
// with every field tab-separated and a trailing tab.
func WriteItems(w io.Writer, rows []Row) error {
	bw := bufio.NewWriter(w)
	for _, r := range rows {
		v := r.Features
		fmt.Fprintf(bw, "%-*s\t%.4f\t|\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t|\t%.4f\t|\t%.4f\t|\t%.4f\t\n",
			TextWidth, r.Text,
			v.List,
			v.Pattern, v.Distance, v.Occurrence, v.Frequency, v.Inclusion,
			v.Semantic,
			v.Entity,
			-v.Inhibition)
	}
	return bw.Flush()
}
