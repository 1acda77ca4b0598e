package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	jsonrepair "github.com/RealAlexandreAI/json-repair"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/fundsight/pedocs/internal/fieldlib"
	"github.com/fundsight/pedocs/internal/model"
	"github.com/fundsight/pedocs/internal/normalize"
	"github.com/fundsight/pedocs/internal/resilience"
	"github.com/fundsight/pedocs/pkg/anthropic"
)

const llmSystemPrompt = `You are a private-equity fund accounting analyst extracting structured data from fund documents (capital account statements, quarterly reports, capital call and distribution notices, legal agreements). Return a valid JSON object mapping the requested field names to their values. Use null for fields not present in the document. Amounts must be plain numbers without currency symbols or thousands separators; dates must be YYYY-MM-DD; percentages must be plain numbers as quoted (e.g. 2.0 for "2.0%").`

const llmUserPromptFmt = `Extract the following fields from this document.

Fields:
%s

Document text:
%s
%s
Return only a JSON object with exactly these field names as keys.`

// maxLLMTextLen bounds the document text sent per call.
const maxLLMTextLen = 12000

// optionalBonus is the confidence bonus for each share of optional fields found.
const optionalBonus = 0.1

// LLMExtractor asks the language model for all of a document's fields in one
// call. A timeout or malformed response yields zero extraction results, never
// a pipeline failure.
type LLMExtractor struct {
	client    anthropic.Client
	model     string
	maxTokens int64
	timeout   time.Duration
	retry     resilience.RetryConfig
}

// NewLLMExtractor builds an LLM extractor. A nil client disables it.
func NewLLMExtractor(client anthropic.Client, modelID string, maxTokens int64, timeout time.Duration) *LLMExtractor {
	if maxTokens <= 0 {
		maxTokens = 2048
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &LLMExtractor{
		client:    client,
		model:     modelID,
		maxTokens: maxTokens,
		timeout:   timeout,
		retry:     resilience.DefaultRetryConfig(),
	}
}

// ExtractFields requests every field in defs and returns one result per field
// the model answered. The shared confidence is the fraction of required
// fields returned non-null plus a bonus for optional fields found, capped at 1.
func (e *LLMExtractor) ExtractFields(ctx context.Context, doc model.ParsedDocument, defs []fieldlib.FieldDef) ([]model.ExtractionResult, anthropic.TokenUsage, error) {
	if e == nil || e.client == nil {
		return nil, anthropic.TokenUsage{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	req := anthropic.MessageRequest{
		Model:     e.model,
		MaxTokens: e.maxTokens,
		System:    llmSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildUserPrompt(doc, defs)},
		},
	}

	var resp *anthropic.MessageResponse
	err := resilience.Do(ctx, e.retry, func(ctx context.Context) error {
		var callErr error
		resp, callErr = e.client.CreateMessage(ctx, req)
		return callErr
	})
	if err != nil {
		return nil, anthropic.TokenUsage{}, eris.Wrap(err, "extract: llm call")
	}

	raw, err := decodeLLMObject(resp.Text())
	if err != nil {
		zap.L().Warn("extract: unparsable llm response", zap.Error(err))
		return nil, resp.Usage, nil
	}

	var requiredTotal, requiredFound, optionalTotal, optionalFound int
	type hit struct {
		def   *fieldlib.FieldDef
		value model.Value
	}
	var hits []hit
	for i := range defs {
		def := &defs[i]
		if def.Required {
			requiredTotal++
		} else {
			optionalTotal++
		}
		v, present := raw[def.Canonical]
		if !present || v == nil {
			continue
		}
		value, ok := llmValue(v, def.Type)
		if !ok {
			continue
		}
		if def.Required {
			requiredFound++
		} else {
			optionalFound++
		}
		hits = append(hits, hit{def: def, value: value})
	}

	confidence := llmConfidence(requiredFound, requiredTotal, optionalFound, optionalTotal)

	results := make([]model.ExtractionResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, model.ExtractionResult{
			FieldName:  h.def.Canonical,
			Value:      h.value,
			Method:     model.MethodLLM,
			Confidence: confidence,
		})
	}
	return results, resp.Usage, nil
}

func llmConfidence(requiredFound, requiredTotal, optionalFound, optionalTotal int) float64 {
	var conf float64
	if requiredTotal > 0 {
		conf = float64(requiredFound) / float64(requiredTotal)
	} else {
		conf = 0.6
	}
	if optionalTotal > 0 {
		conf += optionalBonus * float64(optionalFound) / float64(optionalTotal)
	}
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}

func buildUserPrompt(doc model.ParsedDocument, defs []fieldlib.FieldDef) string {
	var fields strings.Builder
	for _, def := range defs {
		req := "optional"
		if def.Required {
			req = "required"
		}
		fmt.Fprintf(&fields, "- %s (%s, %s)\n", def.Canonical, def.Type, req)
	}

	text := doc.Text
	if len(text) > maxLLMTextLen {
		text = text[:maxLLMTextLen]
	}

	return fmt.Sprintf(llmUserPromptFmt, fields.String(), text, renderTables(doc.Tables))
}

// renderTables flattens tables into pipe-delimited blocks for the prompt.
func renderTables(tables []model.Table) string {
	if len(tables) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nDocument tables:\n")
	for i, t := range tables {
		fmt.Fprintf(&b, "--- table %d ---\n%s\n", i+1, strings.Join(t.Headers, " | "))
		for _, row := range t.Rows {
			b.WriteString(strings.Join(row, " | "))
			b.WriteString("\n")
		}
	}
	return b.String()
}

// decodeLLMObject parses the model's output into a generic object, repairing
// common JSON defects (markdown fences, trailing commas, single quotes) first.
func decodeLLMObject(text string) (map[string]any, error) {
	repaired, err := jsonrepair.RepairJSON(text)
	if err != nil {
		return nil, eris.Wrap(err, "extract: repair llm json")
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(repaired), &obj); err != nil {
		return nil, eris.Wrap(err, "extract: unmarshal llm json")
	}
	return obj, nil
}

// llmValue converts a decoded JSON value into a typed Value for the field.
func llmValue(v any, ft model.FieldType) (model.Value, bool) {
	switch val := v.(type) {
	case float64:
		switch ft {
		case model.TypeDecimal:
			return model.DecimalValue(val), true
		case model.TypePercentage:
			return model.PercentValue(val / 100), true
		case model.TypeInteger:
			return model.IntegerValue(int64(val)), true
		default:
			return model.Value{}, false
		}
	case string:
		return normalize.Normalize(val, ft)
	default:
		return model.Value{}, false
	}
}
