package cmsmodel

type AnalysisType string

const (
	AnalysisGrammar       AnalysisType = "grammar"
	AnalysisReadability   AnalysisType = "readability"
	AnalysisSEO           AnalysisType = "seo"
	AnalysisComprehensive AnalysisType = "comprehensive"
)

type AnalysisIssue struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Severity string `json:"severity"` // minor, warning or error
	Position *int   `json:"position,omitempty"`
}

type AnalysisSuggestion struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"` // low, medium or high
	Position    *int   `json:"position,omitempty"`
}

type TextAnalysisResults struct {
	WordCount         int                  `json:"word_count"`
	SentenceCount     int                  `json:"sentence_count"`
	CharacterCount    int                  `json:"character_count"`
	FleschReadingEase float64              `json:"flesch_reading_ease"`
	FleschKincaid     float64              `json:"flesch_kincaid_grade"`
	ReadabilityLevel  string               `json:"readability_level"`
	GrammarIssues     int                  `json:"grammar_issues"`
	GrammarScore      float64              `json:"grammar_score"`
	SEOScore          float64              `json:"seo_score"`
	OverallScore      float64              `json:"overall_score"`
	Summary           []string             `json:"summary"`
	Issues            []AnalysisIssue      `json:"issues,omitempty"`
	Suggestions       []AnalysisSuggestion `json:"suggestions,omitempty"`
}

// TextAnalysis is a stored analysis run.
type TextAnalysis struct {
	ID      string              `json:"id"`
	Results TextAnalysisResults `json:"results"`
}

type AnalysisRequest struct {
	TextContent  string       `json:"text_content"`
	AnalysisType AnalysisType `json:"analysis_type"`
	Language     string       `json:"language"`
}

type WritingSuggestion struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	SuggestionText  string  `json:"suggestion_text"`
	SuggestedText   string  `json:"suggested_text,omitempty"`
	ConfidenceScore float64 `json:"confidence_score"`
	Severity        string  `json:"severity"`
	Accepted        bool    `json:"-"`
	Dismissed       bool    `json:"-"`
}

type RealtimeCheckRequest struct {
	Text     string `json:"text"`
	Type     string `json:"type"`
	Language string `json:"language"`
}

type RealtimeCheck struct {
	Issues []AnalysisIssue `json:"issues"`
	Score  float64         `json:"score"`
	Level  string          `json:"level"`
}

// SafeRealtimeCheck is returned when a check is skipped or fails.
func SafeRealtimeCheck() RealtimeCheck {
	return RealtimeCheck{Issues: []AnalysisIssue{}, Score: 100, Level: "Unknown"}
}

type AppliedSuggestion struct {
	ModifiedText string `json:"modified_text"`
}
