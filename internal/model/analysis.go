package model

// AnalysisResult is the normalized, renderable representation of a CV
// analysis produced by the backend. All fields default to zero/empty rather
// than being absent so the result page never dereferences a missing field.
type AnalysisResult struct {
	MatchScore         int                 `json:"match_score"`
	JobRecommendations []JobRecommendation `json:"job_recommendations"`
	ImprovementTips    []ImprovementTip    `json:"improvement_tips"`
}

// JobRecommendation is one suggested position for the analyzed CV.
type JobRecommendation struct {
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

// ImprovementTip is one actionable suggestion for improving the CV.
type ImprovementTip struct {
	Icon    string `json:"icon"`
	Title   string `json:"title"`
	Detail  string `json:"detail"`
	Example string `json:"example,omitempty"`
}

// EmptyAnalysisResult returns a result with non-nil, zero-valued fields.
func EmptyAnalysisResult() *AnalysisResult {
	return &AnalysisResult{
		JobRecommendations: []JobRecommendation{},
		ImprovementTips:    []ImprovementTip{},
	}
}
