package analysis

import (
	"encoding/json"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/site-analyzer/internal/apperr"
	"github.com/sells-group/site-analyzer/internal/model"
)

// structuredReply mirrors model.AnalysisResult with pointers so that absent
// fields can be told apart from empty ones.
type structuredReply struct {
	Summary   *string   `json:"summary"`
	KeyPoints *[]string `json:"keyPoints"`
	Entities  *[]string `json:"entities"`
	Sentiment *string   `json:"sentiment"`
}

// ParseStructured decodes a model reply into an AnalysisResult. The reply
// may be wrapped in a ```json fence or surrounded by prose. All four fields
// are required and sentiment must normalise to a known label.
func ParseStructured(provider, raw string) (*model.AnalysisResult, error) {
	body := extractJSON(raw)
	if body == "" {
		return nil, apperr.MalformedResponse(provider, eris.New("reply contains no JSON object"))
	}

	var reply structuredReply
	if err := json.Unmarshal([]byte(body), &reply); err != nil {
		return nil, apperr.MalformedResponse(provider, err)
	}

	var missing []string
	if reply.Summary == nil {
		missing = append(missing, "summary")
	}
	if reply.KeyPoints == nil {
		missing = append(missing, "keyPoints")
	}
	if reply.Entities == nil {
		missing = append(missing, "entities")
	}
	if reply.Sentiment == nil {
		missing = append(missing, "sentiment")
	}
	if len(missing) > 0 {
		return nil, apperr.MalformedResponse(provider, eris.Errorf("missing %s", strings.Join(missing, ", ")))
	}

	sentiment, ok := model.ParseSentiment(*reply.Sentiment)
	if !ok {
		return nil, apperr.MalformedResponse(provider, eris.Errorf("unknown sentiment %q", *reply.Sentiment))
	}

	return &model.AnalysisResult{
		Summary:   strings.TrimSpace(*reply.Summary),
		KeyPoints: *reply.KeyPoints,
		Entities:  *reply.Entities,
		Sentiment: sentiment,
	}, nil
}

// extractJSON strips a Markdown code fence if present, then returns the
// span from the first '{' to the last '}'.
func extractJSON(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		if nl := strings.IndexByte(s, '\n'); nl >= 0 {
			s = s[nl+1:]
		} else {
			s = strings.TrimPrefix(s, "```")
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end < start {
		return ""
	}
	return s[start : end+1]
}
