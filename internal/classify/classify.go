// Package classify assigns a document-type label and confidence from filename
// heuristics and content anchor phrases, blended 40/60.
package classify

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/fundsight/pedocs/internal/model"
)

const (
	contentSampleLen = 5000
	filenameWeight   = 0.4
	contentWeight    = 0.6
	// Below this combined score the classifier refuses to guess and falls
	// back to quarterly_report at fixed confidence.
	fallbackThreshold  = 0.3
	fallbackConfidence = 0.3
)

// filenameKeywords maps each document type to filename tokens. The first
// matching keyword wins for that type.
var filenameKeywords = map[model.DocType][]string{
	model.DocTypeQuarterlyReport:    {"quarterly", "q1", "q2", "q3", "q4", "report"},
	model.DocTypeAnnualReport:       {"annual", "year-end", "yearend"},
	model.DocTypeCapitalAccount:     {"cas", "capital_account", "capital account", "statement"},
	model.DocTypeCapitalCallNotice:  {"call", "drawdown", "contribution notice"},
	model.DocTypeDistributionNotice: {"dist", "distribution"},
	model.DocTypeSubscription:       {"subscription", "sub_agreement"},
	model.DocTypeLPA:                {"lpa", "partnership_agreement", "partnership agreement"},
	model.DocTypePPM:                {"ppm", "placement", "memorandum"},
}

const filenameScore = 0.8

// anchor is one compiled content anchor phrase.
type anchor struct {
	re *regexp.Regexp
}

// pairBoost adds score when two phrases co-occur in the sample.
type pairBoost struct {
	first, second string
	boost         float64
}

// Classifier scores documents against anchor phrases. Construct with New and
// inject; it holds no mutable state.
type Classifier struct {
	anchors map[model.DocType][]anchor
	boosts  map[model.DocType][]pairBoost
}

// New builds a Classifier with the built-in anchor set.
func New() *Classifier {
	mk := func(patterns ...string) []anchor {
		out := make([]anchor, 0, len(patterns))
		for _, p := range patterns {
			out = append(out, anchor{re: regexp.MustCompile(p)})
		}
		return out
	}
	return &Classifier{
		anchors: map[model.DocType][]anchor{
			model.DocTypeQuarterlyReport: mk(
				`quarterly\s+report`, `q[1-4]\s+20\d{2}`, `three\s+months\s+ended`,
			),
			model.DocTypeAnnualReport: mk(
				`annual\s+report`, `year\s+ended`, `fiscal\s+year\s+20\d{2}`,
			),
			model.DocTypeCapitalAccount: mk(
				`capital\s+account`, `partner.?s?\s+capital`, `capital\s+balance`, `beginning\s+balance`,
			),
			model.DocTypeCapitalCallNotice: mk(
				`capital\s+call`, `call\s+notice`, `contribution\s+notice`, `amount\s+due`,
			),
			model.DocTypeDistributionNotice: mk(
				`distribution\s+notice`, `proceeds\s+distribution`, `distribution\s+payment`,
			),
			model.DocTypeLPA: mk(
				`limited\s+partnership\s+agreement`, `partnership\s+agreement`, `amended\s+and\s+restated`,
			),
			model.DocTypePPM: mk(
				`private\s+placement`, `offering\s+memorandum`, `confidential\s+memorandum`,
			),
			model.DocTypeSubscription: mk(
				`subscription\s+agreement`, `subscription\s+document`, `investor\s+subscription`,
			),
		},
		boosts: map[model.DocType][]pairBoost{
			model.DocTypeCapitalAccount: {
				{first: "capital account", second: "beginning balance", boost: 0.3},
			},
			model.DocTypeCapitalCallNotice: {
				{first: "capital call", second: "due date", boost: 0.3},
			},
			model.DocTypeDistributionNotice: {
				{first: "distribution", second: "payment date", boost: 0.2},
			},
		},
	}
}

// Classify returns the best-scoring document type for a filename and content
// sample. When nothing scores above the fallback threshold, it returns
// quarterly_report at the fixed fallback confidence rather than an arbitrary
// low-confidence label.
func (c *Classifier) Classify(filename, content string) (model.DocType, float64) {
	sample := content
	if len(sample) > contentSampleLen {
		sample = sample[:contentSampleLen]
	}
	sampleLower := strings.ToLower(sample)
	filenameLower := strings.ToLower(filename)

	best := model.DocTypeOther
	bestScore := 0.0
	for dt := range c.anchors {
		score := filenameWeight*c.filenameScore(dt, filenameLower) +
			contentWeight*c.contentScore(dt, sampleLower)
		if score > bestScore {
			best, bestScore = dt, score
		}
	}

	if bestScore < fallbackThreshold {
		zap.L().Debug("classify: below threshold, using fallback",
			zap.String("filename", filename),
			zap.Float64("best_score", bestScore),
		)
		return model.DocTypeQuarterlyReport, fallbackConfidence
	}

	if bestScore > 1.0 {
		bestScore = 1.0
	}
	return best, bestScore
}

func (c *Classifier) filenameScore(dt model.DocType, filenameLower string) float64 {
	for _, kw := range filenameKeywords[dt] {
		if strings.Contains(filenameLower, kw) {
			return filenameScore
		}
	}
	return 0
}

func (c *Classifier) contentScore(dt model.DocType, sampleLower string) float64 {
	matches := 0
	for _, a := range c.anchors[dt] {
		matches += len(a.re.FindAllStringIndex(sampleLower, -1))
	}
	if matches == 0 {
		return c.boostScore(dt, sampleLower)
	}
	score := 0.3 + 0.2*float64(matches)
	if score > 0.9 {
		score = 0.9
	}
	return score + c.boostScore(dt, sampleLower)
}

func (c *Classifier) boostScore(dt model.DocType, sampleLower string) float64 {
	var boost float64
	for _, pb := range c.boosts[dt] {
		if strings.Contains(sampleLower, pb.first) && strings.Contains(sampleLower, pb.second) {
			boost += pb.boost
		}
	}
	return boost
}
