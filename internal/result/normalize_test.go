package result

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smartrecruiter/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want func(t *testing.T, res *model.AnalysisResult)
	}{
		{
			name: "flat payload with fraction score",
			raw: `{
				"matchScore": 0.85,
				"jobRecommendation": [{"role": "Frontend Developer", "matchScore": 0.9}],
				"improvementTips": [{"icon": "star", "title": "Quantify impact", "detail": "Add numbers", "example": "Cut build time by 40%"}]
			}`,
			want: func(t *testing.T, res *model.AnalysisResult) {
				assert.Equal(t, 85, res.MatchScore)
				require.Len(t, res.JobRecommendations, 1)
				assert.Equal(t, "Frontend Developer", res.JobRecommendations[0].Title)
				assert.Equal(t, "90% match", res.JobRecommendations[0].Detail)
				require.Len(t, res.ImprovementTips, 1)
				assert.Equal(t, "Quantify impact", res.ImprovementTips[0].Title)
				assert.Equal(t, "Cut build time by 40%", res.ImprovementTips[0].Example)
			},
		},
		{
			name: "nested under data with snake_case fields",
			raw: `{"data": {
				"match_score": 72,
				"job_recommendations": [{"title": "QA Engineer", "description": "Strong testing background"}],
				"improvement_tips": [{"title": "Shorter summary", "description": "One paragraph"}]
			}}`,
			want: func(t *testing.T, res *model.AnalysisResult) {
				assert.Equal(t, 72, res.MatchScore)
				require.Len(t, res.JobRecommendations, 1)
				assert.Equal(t, "Strong testing background", res.JobRecommendations[0].Detail)
				require.Len(t, res.ImprovementTips, 1)
				assert.Equal(t, "One paragraph", res.ImprovementTips[0].Detail)
			},
		},
		{
			name: "array-wrapped result envelope",
			raw:  `[{"result": {"score": "85%", "recommendations": ["Backend Developer"], "tips": ["Add a skills section"]}}]`,
			want: func(t *testing.T, res *model.AnalysisResult) {
				assert.Equal(t, 85, res.MatchScore)
				require.Len(t, res.JobRecommendations, 1)
				assert.Equal(t, "Backend Developer", res.JobRecommendations[0].Title)
				require.Len(t, res.ImprovementTips, 1)
				assert.Equal(t, "Add a skills section", res.ImprovementTips[0].Title)
			},
		},
		{
			name: "doubly nested cv envelope",
			raw:  `{"data": {"cv": {"resumeScore": 0.6}}}`,
			want: func(t *testing.T, res *model.AnalysisResult) {
				assert.Equal(t, 60, res.MatchScore)
			},
		},
		{
			name: "data envelope wins over deeper analysis key",
			raw:  `{"data": {"matchScore": 0.4, "analysis": {"matchScore": 0.9}}}`,
			want: func(t *testing.T, res *model.AnalysisResult) {
				assert.Equal(t, 40, res.MatchScore)
			},
		},
		{
			name: "recommendation without title gets a placeholder",
			raw:  `{"jobRecommendation": [{"matchScore": 0.5}]}`,
			want: func(t *testing.T, res *model.AnalysisResult) {
				require.Len(t, res.JobRecommendations, 1)
				assert.Equal(t, "Position not specified", res.JobRecommendations[0].Title)
			},
		},
		{
			name: "unrecognized shape yields zero values not a panic",
			raw:  `{"somethingElse": {"entirely": true}}`,
			want: func(t *testing.T, res *model.AnalysisResult) {
				assert.Equal(t, 0, res.MatchScore)
				assert.NotNil(t, res.JobRecommendations)
				assert.Empty(t, res.JobRecommendations)
				assert.NotNil(t, res.ImprovementTips)
				assert.Empty(t, res.ImprovementTips)
			},
		},
		{
			name: "invalid json yields zero values",
			raw:  `{not json`,
			want: func(t *testing.T, res *model.AnalysisResult) {
				assert.Equal(t, 0, res.MatchScore)
				assert.Empty(t, res.JobRecommendations)
			},
		},
		{
			name: "scalar payload yields zero values",
			raw:  `"just a string"`,
			want: func(t *testing.T, res *model.AnalysisResult) {
				assert.Equal(t, 0, res.MatchScore)
			},
		},
		{
			name: "empty array yields zero values",
			raw:  `[]`,
			want: func(t *testing.T, res *model.AnalysisResult) {
				assert.Equal(t, 0, res.MatchScore)
			},
		},
		{
			name: "score above range is clamped",
			raw:  `{"matchScore": 250}`,
			want: func(t *testing.T, res *model.AnalysisResult) {
				assert.Equal(t, 100, res.MatchScore)
			},
		},
		{
			name: "negative score is clamped to zero",
			raw:  `{"matchScore": -3}`,
			want: func(t *testing.T, res *model.AnalysisResult) {
				assert.Equal(t, 0, res.MatchScore)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var res *model.AnalysisResult
			assert.NotPanics(t, func() {
				res = Normalize(json.RawMessage(tt.raw))
			})
			tt.want(t, res)
		})
	}
}

func TestToPercent(t *testing.T) {
	tests := []struct {
		in     any
		want   int
		wantOK bool
	}{
		{0.85, 85, true},
		{float64(42), 42, true},
		{1.0, 100, true},
		{"85%", 85, true},
		{" 0.7 ", 70, true},
		{"0.7%", 1, true}, // explicit percent sign means the value already is one
		{"abc", 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := toPercent(tt.in)
		assert.Equal(t, tt.wantOK, ok)
		if tt.wantOK {
			assert.Equal(t, tt.want, got)
		}
	}
}
