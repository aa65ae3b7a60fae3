package result

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"smartrecruiter/internal/model"
)

// The backend's payload shape varies across revisions: sometimes flat,
// sometimes nested under an envelope key, sometimes array-wrapped, with
// inconsistent field casing. Normalize applies a documented precedence
// instead of guessing one true shape:
//
//  1. Array-wrapped payloads take their first element.
//  2. Envelope keys are unwrapped in order: data, result, cv, analysis —
//     repeatedly, up to a fixed depth, stopping as soon as the object carries
//     a recognizable analysis field.
//  3. The first matching key wins for each attribute: score from matchScore /
//     match_score / score / resumeScore / cvScore, recommendations from
//     jobRecommendation(s) / job_recommendations / recommendations, tips from
//     improvementTips / improvement_tips / tips / suggestions.
//  4. Scores at or below 1 are fractions and are scaled to percent; "85%"
//     strings are parsed; results are clamped to 0–100.
//
// Input matching none of the above yields a zero score and empty lists,
// never an error: the result page must always have something to render.
func Normalize(raw json.RawMessage) *model.AnalysisResult {
	out := model.EmptyAnalysisResult()

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return out
	}

	obj := unwrap(payload)
	if obj == nil {
		return out
	}

	out.MatchScore = extractScore(obj)
	out.JobRecommendations = extractRecommendations(obj)
	out.ImprovementTips = extractTips(obj)
	return out
}

var envelopeKeys = []string{"data", "result", "cv", "analysis"}

var scoreKeys = []string{"matchScore", "match_score", "score", "resumeScore", "cvScore"}

var recommendationKeys = []string{"jobRecommendation", "jobRecommendations", "job_recommendations", "recommendations"}

var tipKeys = []string{"improvementTips", "improvement_tips", "tips", "suggestions"}

// unwrap peels array wrappers and envelope layers until it reaches an object
// carrying analysis fields. Depth is bounded so pathological nesting cannot
// loop.
func unwrap(v any) map[string]any {
	for depth := 0; depth < 5; depth++ {
		if arr, ok := v.([]any); ok {
			if len(arr) == 0 {
				return nil
			}
			v = arr[0]
			continue
		}

		m, ok := v.(map[string]any)
		if !ok {
			return nil
		}
		if hasAnalysisField(m) {
			return m
		}

		unwrapped := false
		for _, key := range envelopeKeys {
			if inner, ok := m[key]; ok && inner != nil {
				v = inner
				unwrapped = true
				break
			}
		}
		if !unwrapped {
			return m
		}
	}
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

func hasAnalysisField(m map[string]any) bool {
	for _, key := range scoreKeys {
		if _, ok := m[key]; ok {
			return true
		}
	}
	for _, key := range recommendationKeys {
		if _, ok := m[key]; ok {
			return true
		}
	}
	for _, key := range tipKeys {
		if _, ok := m[key]; ok {
			return true
		}
	}
	return false
}

func extractScore(m map[string]any) int {
	for _, key := range scoreKeys {
		if v, ok := m[key]; ok {
			if score, ok := toPercent(v); ok {
				return score
			}
		}
	}
	return 0
}

// toPercent interprets a score value: fractions (<= 1) are scaled by 100,
// percent strings are parsed, everything is clamped to 0–100.
func toPercent(v any) (int, bool) {
	switch val := v.(type) {
	case float64:
		if val <= 1.0 {
			val *= 100
		}
		return clampScore(int(math.Round(val))), true
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		if f <= 1.0 && !strings.HasSuffix(strings.TrimSpace(val), "%") {
			f *= 100
		}
		return clampScore(int(math.Round(f))), true
	default:
		return 0, false
	}
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func extractRecommendations(m map[string]any) []model.JobRecommendation {
	items := listUnder(m, recommendationKeys)
	recs := make([]model.JobRecommendation, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			recs = append(recs, model.JobRecommendation{Title: v})
		case map[string]any:
			rec := model.JobRecommendation{
				Title:  firstString(v, "role", "title", "position"),
				Detail: firstString(v, "detail", "description", "reason"),
			}
			if rec.Detail == "" {
				if raw, ok := anyUnder(v, "matchScore", "match_score", "score"); ok {
					if pct, ok := toPercent(raw); ok {
						rec.Detail = fmt.Sprintf("%d%% match", pct)
					}
				}
			}
			if rec.Title == "" {
				rec.Title = "Position not specified"
			}
			recs = append(recs, rec)
		}
	}
	return recs
}

func extractTips(m map[string]any) []model.ImprovementTip {
	items := listUnder(m, tipKeys)
	tips := make([]model.ImprovementTip, 0, len(items))
	for _, item := range items {
		switch v := item.(type) {
		case string:
			tips = append(tips, model.ImprovementTip{Title: v})
		case map[string]any:
			tips = append(tips, model.ImprovementTip{
				Icon:    firstString(v, "icon"),
				Title:   firstString(v, "title"),
				Detail:  firstString(v, "detail", "description", "tip"),
				Example: firstString(v, "example"),
			})
		}
	}
	return tips
}

func listUnder(m map[string]any, keys []string) []any {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				return arr
			}
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func anyUnder(m map[string]any, keys ...string) (any, bool) {
	for _, key := range keys {
		if v, ok := m[key]; ok {
			return v, true
		}
	}
	return nil, false
}
