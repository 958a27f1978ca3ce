package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"datagent/domain/chart"
	"datagent/domain/core"
	"datagent/domain/datareadiness/ingestion"
	"datagent/internal"
	"datagent/ports"

	"github.com/tidwall/gjson"
)

// SampleRows is the number of leading rows shown to the model
const SampleRows = 5

const systemPrompt = "You are an expert data analyst. Output exactly what the user asks for."

const analysisPrompt = `Analyze the following data and answer the question.

Question: %s

Available columns: %s
Sample data: %s

Provide a detailed analysis including:
1. Direct answer to the question
2. Supporting data points
3. Any relevant trends or patterns
4. Suggested visualizations if applicable

Format your response as a JSON object with these keys:
- answer: Your main analysis and answer
- metrics: Key numerical findings
- visualization_suggestions: Array of {"type", "columns", "title"} objects using the available column names.
  Supported types: line, bar, scatter, pie, histogram, box, heatmap`

var codeFence = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")

// Analysis is the model's structured answer
type Analysis struct {
	Answer                   string             `json:"answer"`
	Metrics                  json.RawMessage    `json:"metrics"`
	VisualizationSuggestions []chart.Suggestion `json:"visualization_suggestions"`
}

// Agent answers natural language questions about a cleaned table
type Agent struct {
	client ports.LLMClient
	logger *slog.Logger
}

// NewAgent creates a query agent
func NewAgent(client ports.LLMClient, logger *slog.Logger) *Agent {
	return &Agent{client: client, logger: internal.LoggerOr(logger)}
}

// Analyze prompts the model with the table's columns and a row sample. A reply
// that is not the requested JSON object becomes the answer verbatim.
func (a *Agent) Analyze(ctx context.Context, table *ingestion.CleanedTable, query string) (*Analysis, error) {
	sample, err := json.Marshal(table.Head(SampleRows))
	if err != nil {
		return nil, fmt.Errorf("marshal sample: %w", err)
	}

	prompt := fmt.Sprintf(analysisPrompt, query, strings.Join(table.ColumnNames(), ", "), sample)
	resp, err := a.client.ChatCompletion(ctx, []ports.Message{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: prompt},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrAgentFailed, err)
	}
	if resp.Usage != nil {
		a.logger.Debug("llm usage",
			slog.String("model", resp.Usage.Model),
			slog.Int("prompt_tokens", resp.Usage.PromptTokens),
			slog.Int("completion_tokens", resp.Usage.CompletionTokens))
	}

	return ParseAnalysis(resp.Content), nil
}

// ParseAnalysis decodes a model reply, tolerating a surrounding code fence.
// Fields are read leniently: a suggestion whose columns arrive as a single string
// is kept, and suggestions without a type are skipped.
func ParseAnalysis(content string) *Analysis {
	body := strings.TrimSpace(content)
	if m := codeFence.FindStringSubmatch(body); m != nil {
		body = m[1]
	}

	fallback := &Analysis{Answer: content, Metrics: json.RawMessage(`{}`)}
	if !gjson.Valid(body) {
		return fallback
	}
	doc := gjson.Parse(body)
	if !doc.IsObject() {
		return fallback
	}
	answer := doc.Get("answer")
	if !answer.Exists() || answer.Type == gjson.Null || answer.String() == "" {
		return fallback
	}

	out := &Analysis{Answer: answer.String(), Metrics: json.RawMessage(`{}`)}
	if metrics := doc.Get("metrics"); metrics.Exists() && metrics.Type != gjson.Null {
		out.Metrics = json.RawMessage(metrics.Raw)
	}
	doc.Get("visualization_suggestions").ForEach(func(_, item gjson.Result) bool {
		if s, ok := parseSuggestion(item); ok {
			out.VisualizationSuggestions = append(out.VisualizationSuggestions, s)
		}
		return true
	})
	return out
}

func parseSuggestion(item gjson.Result) (chart.Suggestion, bool) {
	if !item.IsObject() {
		return chart.Suggestion{}, false
	}
	kind := strings.ToLower(strings.TrimSpace(item.Get("type").String()))
	if kind == "" {
		return chart.Suggestion{}, false
	}
	s := chart.Suggestion{Type: chart.Type(kind), Title: item.Get("title").String()}
	cols := item.Get("columns")
	if cols.IsArray() {
		for _, c := range cols.Array() {
			s.Columns = append(s.Columns, c.String())
		}
	} else if cols.Type == gjson.String && cols.String() != "" {
		s.Columns = []string{cols.String()}
	}
	return s, true
}

// RelevantColumns returns the columns whose name contains any query term
func RelevantColumns(table *ingestion.CleanedTable, query string) []string {
	terms := strings.Fields(strings.ToLower(query))
	out := []string{}
	for _, name := range table.ColumnNames() {
		lower := strings.ToLower(name)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				out = append(out, name)
				break
			}
		}
	}
	return out
}
