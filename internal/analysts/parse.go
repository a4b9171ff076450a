package analysts

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/dyike/QuorumGo/internal/models"
)

// Models rarely return bare JSON; the object is usually surrounded by prose
// or a markdown fence. Grab the widest brace-delimited span and try that.
var jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)

type rawPosition struct {
	Analysis       string   `json:"analysis"`
	Recommendation string   `json:"recommendation"`
	Confidence     float64  `json:"confidence"`
	Reasoning      string   `json:"reasoning"`
	KeyPoints      []string `json:"key_points"`
	Risks          []string `json:"risks"`
}

type rawUpdate struct {
	Recommendation     string   `json:"recommendation"`
	Confidence         float64  `json:"confidence"`
	Rebuttals          []string `json:"rebuttals"`
	SupportingEvidence []string `json:"supporting_evidence"`
	Concessions        []string `json:"concessions"`
}

// ParsePosition extracts a structured position from raw model output. Output
// that cannot be parsed degrades to the neutral default (HOLD at 0.5) so a
// malformed reply never takes the analyst out of the round.
func ParsePosition(analystID, role, text string, logger *zap.Logger) *models.AgentPosition {
	if logger == nil {
		logger = zap.NewNop()
	}

	var raw rawPosition
	if !decodeJSONObject(text, &raw) {
		logger.Warn("unparseable analyst output, using neutral default")
		return &models.AgentPosition{
			AnalystID:      analystID,
			Role:           role,
			Recommendation: models.Hold,
			Confidence:     0.5,
			Reasoning:      "Unable to parse structured response",
			KeyPoints:      []string{},
			Risks:          []string{},
		}
	}

	return &models.AgentPosition{
		AnalystID:      analystID,
		Role:           role,
		Recommendation: normalizeRecommendation(raw.Recommendation, logger),
		Confidence:     clampConfidence(raw.Confidence),
		Reasoning:      firstNonEmpty(raw.Reasoning, raw.Analysis),
		KeyPoints:      emptyIfNil(raw.KeyPoints),
		Risks:          emptyIfNil(raw.Risks),
	}
}

// ParseUpdate extracts a debate update from raw model output, with the same
// neutral fallback as ParsePosition.
func ParseUpdate(text string, logger *zap.Logger) *models.PartialUpdate {
	if logger == nil {
		logger = zap.NewNop()
	}

	var raw rawUpdate
	if !decodeJSONObject(text, &raw) {
		logger.Warn("unparseable debate output, using neutral default")
		return &models.PartialUpdate{
			Recommendation:     models.Hold,
			Confidence:         0.5,
			Rebuttals:          []string{},
			SupportingEvidence: []string{},
			Concessions:        []string{},
		}
	}

	return &models.PartialUpdate{
		Recommendation:     normalizeRecommendation(raw.Recommendation, logger),
		Confidence:         clampConfidence(raw.Confidence),
		Rebuttals:          emptyIfNil(raw.Rebuttals),
		SupportingEvidence: emptyIfNil(raw.SupportingEvidence),
		Concessions:        emptyIfNil(raw.Concessions),
	}
}

func decodeJSONObject(text string, out any) bool {
	match := jsonObjectPattern.FindString(text)
	if match == "" {
		return false
	}
	return json.Unmarshal([]byte(match), out) == nil
}

func normalizeRecommendation(raw string, logger *zap.Logger) models.Recommendation {
	rec := models.Recommendation(strings.ToUpper(strings.TrimSpace(raw)))
	if !rec.Valid() {
		logger.Warn("unknown recommendation class", zap.String("raw", raw))
		return models.Hold
	}
	return rec
}

func clampConfidence(c float64) float64 {
	if c < 0 {
		return 0
	}
	if c > 1 {
		return 1
	}
	return c
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func emptyIfNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
