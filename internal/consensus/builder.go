package consensus

import (
	"sort"

	"go.uber.org/zap"

	"github.com/dyike/QuorumGo/internal/models"
)

// Builder collapses a final position set into one decision. The aggregation
// method is selectable per call; the per-analyst weight map is fixed at
// construction (uniform 1/n when an analyst has no entry).
type Builder struct {
	weights map[string]float64
	logger  *zap.Logger
}

func NewBuilder(weights map[string]float64, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		weights: weights,
		logger:  logger.With(zap.String("component", "consensus")),
	}
}

// Level returns the fraction of analysts agreeing with the modal
// recommendation. Every aggregation method reports this same value.
func Level(positions map[string]models.AgentPosition) float64 {
	if len(positions) == 0 {
		return 0
	}
	counts := breakdown(positions)
	most := 0
	for _, n := range counts {
		if n > most {
			most = n
		}
	}
	return float64(most) / float64(len(positions))
}

// Build aggregates the positions with the requested method. An unknown
// method falls back to weighted; an empty position set yields the documented
// HOLD/0/0 defaults and never errors.
func (b *Builder) Build(positions map[string]models.AgentPosition, method models.ConsensusMethod) *models.ConsensusResult {
	if len(positions) == 0 {
		return emptyResult(method)
	}

	var result *models.ConsensusResult
	switch method {
	case models.MethodWeighted:
		result = b.buildWeighted(positions)
	case models.MethodMajority:
		result = b.buildMajority(positions)
	case models.MethodConfidence:
		result = b.buildConfidence(positions)
	default:
		b.logger.Warn("unknown consensus method, using weighted", zap.String("method", string(method)))
		result = b.buildWeighted(positions)
	}

	result.Breakdown = breakdown(positions)
	result.ConsensusLevel = Level(positions)
	result.TotalAnalysts = len(positions)
	b.aggregate(positions, result)

	b.logger.Info("consensus built",
		zap.String("method", string(result.Method)),
		zap.String("recommendation", string(result.Recommendation)),
		zap.Float64("confidence", result.Confidence),
		zap.Float64("consensus_level", result.ConsensusLevel),
	)
	return result
}

// buildWeighted scores each class with weight(analyst) x confidence(analyst)
// and normalizes the scores to sum to 1. Reported confidence is the
// weight-normalized average confidence across all positions, winners and
// dissenters alike.
func (b *Builder) buildWeighted(positions map[string]models.AgentPosition) *models.ConsensusResult {
	ids := sortedIDs(positions)
	n := len(ids)

	scores := zeroScores()
	totalWeight := 0.0
	weightedConfidence := 0.0

	for _, id := range ids {
		p := positions[id]
		weight := b.weightFor(id, n)
		totalWeight += weight
		scores[p.Recommendation] += weight * p.Confidence
		weightedConfidence += weight * p.Confidence
	}

	// Normalize scores into a distribution over the four classes. When every
	// confidence is zero there is no mass to distribute, so fall back to the
	// analysts' weight shares.
	totalScore := 0.0
	for _, s := range scores {
		totalScore += s
	}
	if totalScore > 0 {
		for rec := range scores {
			scores[rec] /= totalScore
		}
	} else if totalWeight > 0 {
		for _, id := range ids {
			scores[positions[id].Recommendation] += b.weightFor(id, n) / totalWeight
		}
	}
	if totalWeight > 0 {
		weightedConfidence /= totalWeight
	}

	return &models.ConsensusResult{
		Recommendation: argmax(scores),
		Confidence:     weightedConfidence,
		WeightedScores: scores,
		Method:         models.MethodWeighted,
	}
}

// buildMajority picks the most frequent recommendation. Ties go to the class
// whose first voter comes earliest in sorted analyst-ID order, which keeps
// the method reproducible under concurrent collection.
func (b *Builder) buildMajority(positions map[string]models.AgentPosition) *models.ConsensusResult {
	ids := sortedIDs(positions)

	counts := make(map[models.Recommendation]int, 4)
	firstSeen := make(map[models.Recommendation]int, 4)
	for i, id := range ids {
		rec := positions[id].Recommendation
		if _, ok := firstSeen[rec]; !ok {
			firstSeen[rec] = i
		}
		counts[rec]++
	}

	var winner models.Recommendation
	bestCount, bestSeen := -1, len(ids)
	for rec, count := range counts {
		if count > bestCount || (count == bestCount && firstSeen[rec] < bestSeen) {
			winner, bestCount, bestSeen = rec, count, firstSeen[rec]
		}
	}

	// Mean confidence of the winning side only.
	sum, agreeing := 0.0, 0
	for _, id := range ids {
		if positions[id].Recommendation == winner {
			sum += positions[id].Confidence
			agreeing++
		}
	}

	scores := zeroScores()
	for rec, count := range counts {
		scores[rec] = float64(count)
	}

	return &models.ConsensusResult{
		Recommendation: winner,
		Confidence:     sum / float64(agreeing),
		WeightedScores: scores,
		Method:         models.MethodMajority,
	}
}

// buildConfidence lets each analyst vote with weight confidence/total
// confidence, falling back to uniform weights when total confidence is zero.
func (b *Builder) buildConfidence(positions map[string]models.AgentPosition) *models.ConsensusResult {
	ids := sortedIDs(positions)
	n := len(ids)

	totalConfidence := 0.0
	for _, id := range ids {
		totalConfidence += positions[id].Confidence
	}

	scores := zeroScores()
	if totalConfidence == 0 {
		for _, id := range ids {
			scores[positions[id].Recommendation] += 1.0 / float64(n)
		}
	} else {
		for _, id := range ids {
			p := positions[id]
			scores[p.Recommendation] += p.Confidence / totalConfidence
		}
	}

	return &models.ConsensusResult{
		Recommendation: argmax(scores),
		Confidence:     totalConfidence / float64(n),
		WeightedScores: scores,
		Method:         models.MethodConfidence,
	}
}

// aggregate collects supporting material across positions in sorted
// analyst-ID order, each item prefixed with the reporting analyst's role.
func (b *Builder) aggregate(positions map[string]models.AgentPosition, result *models.ConsensusResult) {
	result.KeyPoints = []string{}
	result.Risks = []string{}
	result.Reasoning = []string{}
	for _, id := range sortedIDs(positions) {
		p := positions[id]
		for _, point := range p.KeyPoints {
			result.KeyPoints = append(result.KeyPoints, "["+p.Role+"] "+point)
		}
		for _, risk := range p.Risks {
			result.Risks = append(result.Risks, "["+p.Role+"] "+risk)
		}
		if p.Reasoning != "" {
			result.Reasoning = append(result.Reasoning, "**"+p.Role+":** "+p.Reasoning)
		}
	}
}

func (b *Builder) weightFor(analystID string, n int) float64 {
	if w, ok := b.weights[analystID]; ok {
		return w
	}
	return 1.0 / float64(n)
}

func emptyResult(method models.ConsensusMethod) *models.ConsensusResult {
	return &models.ConsensusResult{
		Recommendation: models.Hold,
		Confidence:     0,
		ConsensusLevel: 0,
		Breakdown:      map[models.Recommendation]int{},
		WeightedScores: zeroScores(),
		Method:         method,
		KeyPoints:      []string{},
		Risks:          []string{},
		Reasoning:      []string{},
	}
}

func breakdown(positions map[string]models.AgentPosition) map[models.Recommendation]int {
	counts := make(map[models.Recommendation]int, 4)
	for _, rec := range models.Recommendations {
		counts[rec] = 0
	}
	for _, p := range positions {
		counts[p.Recommendation]++
	}
	return counts
}

func zeroScores() map[models.Recommendation]float64 {
	scores := make(map[models.Recommendation]float64, 4)
	for _, rec := range models.Recommendations {
		scores[rec] = 0
	}
	return scores
}

// argmax walks the classes in canonical order so equal scores always resolve
// the same way.
func argmax(scores map[models.Recommendation]float64) models.Recommendation {
	winner := models.Recommendations[0]
	best := scores[winner]
	for _, rec := range models.Recommendations[1:] {
		if scores[rec] > best {
			winner, best = rec, scores[rec]
		}
	}
	return winner
}

func sortedIDs(positions map[string]models.AgentPosition) []string {
	ids := make([]string, 0, len(positions))
	for id := range positions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
