// Package reconcile selects a winning value from multiple extraction attempts
// for the same field by confidence-weighted voting. Reconciliation is
// commutative over its input set and free of side effects.
package reconcile

import (
	"sort"

	"github.com/fundsight/pedocs/internal/model"
)

// methodWeights grade the baseline reliability of each extraction method.
var methodWeights = map[model.ExtractionMethod]float64{
	model.MethodManual:     1.0,
	model.MethodTable:      0.9,
	model.MethodRegex:      0.8,
	model.MethodComposite:  0.8,
	model.MethodPositional: 0.7,
	model.MethodLLM:        0.7,
}

const defaultMethodWeight = 0.5

// MethodWeight returns the reliability weight for an extraction method.
func MethodWeight(m model.ExtractionMethod) float64 {
	if w, ok := methodWeights[m]; ok {
		return w
	}
	return defaultMethodWeight
}

// WeightedConfidence combines several results for one field into a single
// confidence using method-reliability weights.
func WeightedConfidence(results []model.ExtractionResult) float64 {
	if len(results) == 0 {
		return 0
	}
	var sum, weights float64
	for _, r := range results {
		w := MethodWeight(r.Method)
		sum += r.Confidence * w
		weights += w
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}

// Reconcile groups candidate results by normalized value, scores each group
// by (Σ confidence / n) × (group size / n), and returns the winning group's
// max-confidence member with its confidence replaced by the group score and
// the rejected groups recorded as alternatives.
//
// An empty input returns nil; a singleton is returned unchanged.
func Reconcile(results []model.ExtractionResult) *model.ExtractionResult {
	if len(results) == 0 {
		return nil
	}
	if len(results) == 1 {
		r := results[0]
		return &r
	}

	groups := make(map[string][]model.ExtractionResult)
	var order []string
	for _, r := range results {
		key := r.Value.Key()
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	n := float64(len(results))
	bestScore := -1.0
	var bestKey string
	for _, key := range order {
		group := groups[key]
		var confSum float64
		for _, r := range group {
			confSum += r.Confidence
		}
		score := (confSum / n) * (float64(len(group)) / n)
		if score > bestScore {
			bestScore = score
			bestKey = key
		}
	}

	winnerGroup := groups[bestKey]
	winner := winnerGroup[0]
	for _, r := range winnerGroup[1:] {
		if r.Confidence > winner.Confidence {
			winner = r
		}
	}
	winner.Confidence = bestScore

	var alts []model.Alternative
	for _, key := range order {
		if key == bestKey {
			continue
		}
		group := groups[key]
		methods := make([]model.ExtractionMethod, 0, len(group))
		for _, r := range group {
			methods = append(methods, r.Method)
		}
		sort.Slice(methods, func(i, j int) bool { return methods[i] < methods[j] })
		alts = append(alts, model.Alternative{Value: key, Count: len(group), Methods: methods})
	}
	winner.Alternatives = alts

	return &winner
}
