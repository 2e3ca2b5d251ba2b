// Package analysis turns cleaned site text into a report by running one
// prompt template through a language-model provider.
package analysis

import (
	"context"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/site-analyzer/internal/apperr"
	"github.com/sells-group/site-analyzer/internal/llm"
	"github.com/sells-group/site-analyzer/internal/model"
	"github.com/sells-group/site-analyzer/internal/prompt"
)

// DefaultMaxChars is the truncation budget applied to site text.
const DefaultMaxChars = 6000

// Result is the outcome of one analysis. Exactly one of Report and
// Structured is set, according to Format.
type Result struct {
	Action     string                `json:"action"`
	Format     model.OutputFormat    `json:"format"`
	Report     *model.ReportResult   `json:"report,omitempty"`
	Structured *model.AnalysisResult `json:"structured,omitempty"`
}

// Payload is the body returned to API callers: {summary} for Markdown
// actions, the structured object otherwise.
func (r *Result) Payload() any {
	if r.Structured != nil {
		return r.Structured
	}
	return r.Report
}

// Markdown renders the result for display.
func (r *Result) Markdown() (string, error) {
	if r.Structured != nil {
		return RenderReport(r.Action, r.Structured)
	}
	if r.Report == nil {
		return "", nil
	}
	return r.Report.Summary, nil
}

// Analyzer runs analysis actions against a Completer.
type Analyzer struct {
	completer llm.Completer
	prompts   *prompt.Registry
	maxChars  int
}

// New creates an Analyzer. A non-positive maxChars uses DefaultMaxChars.
func New(completer llm.Completer, prompts *prompt.Registry, maxChars int) *Analyzer {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Analyzer{completer: completer, prompts: prompts, maxChars: maxChars}
}

// Actions lists the analysis actions in table order.
func (a *Analyzer) Actions() []string {
	return a.prompts.Names()
}

// Has reports whether action is a known analysis action.
func (a *Analyzer) Has(action string) bool {
	_, ok := a.prompts.Get(action)
	return ok
}

// Run executes one action over content. It validates before calling the
// provider and makes exactly one provider call.
func (a *Analyzer) Run(ctx context.Context, action, content string) (*Result, error) {
	tmpl, ok := a.prompts.Get(action)
	if !ok {
		return nil, apperr.UnknownAction()
	}
	if strings.TrimSpace(content) == "" {
		return nil, apperr.MissingField("markdown")
	}

	truncated := Truncate(content, a.maxChars)
	user, err := tmpl.Render(truncated)
	if err != nil {
		return nil, err
	}

	log := zap.L().With(
		zap.String("action", action),
		zap.String("provider", a.completer.Name()),
	)
	start := time.Now()

	text, err := a.completer.Complete(ctx, llm.Request{
		Action: action,
		System: tmpl.System,
		User:   user,
		JSON:   tmpl.Output == model.OutputJSON,
	})
	if err != nil {
		log.Warn("analysis: provider call failed", zap.Error(err))
		return nil, eris.Wrapf(err, "analysis: %s", action)
	}

	log.Info("analysis: completed",
		zap.Int("input_chars", len([]rune(content))),
		zap.Int("prompt_chars", len([]rune(truncated))),
		zap.Duration("elapsed", time.Since(start)),
	)

	res := &Result{Action: action, Format: tmpl.Output}
	if tmpl.Output == model.OutputJSON {
		structured, err := ParseStructured(a.completer.Name(), text)
		if err != nil {
			return nil, err
		}
		res.Structured = structured
		return res, nil
	}
	res.Report = &model.ReportResult{Summary: text}
	return res, nil
}

// Truncate returns the longest prefix of s with at most max characters.
func Truncate(s string, max int) string {
	if max <= 0 {
		return ""
	}
	n := 0
	for i := range s {
		if n == max {
			return s[:i]
		}
		n++
	}
	return s
}
