package resources

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-cms-client/apiclient"
	"github.com/jrsteele09/go-cms-client/cmsmodel"
	apperrors "github.com/jrsteele09/go-cms-client/internal/errors"
	"github.com/jrsteele09/go-cms-client/notify"
)

const (
	minAnalysisLength = 10
	minRealtimeLength = 5
)

var ErrTextTooShort = fmt.Errorf("%w: text too short for analysis", apperrors.ErrValidation)

// ReadabilityRating grades a Flesch reading-ease score.
type ReadabilityRating struct {
	Level string
	Color string
	Score float64
}

// ReadabilityColor is green from 80, yellow from 60, orange from 30, else red.
func ReadabilityColor(score float64) string {
	switch {
	case score >= 80:
		return "green"
	case score >= 60:
		return "yellow"
	case score >= 30:
		return "orange"
	}
	return "red"
}

type ContentAnalysisOption func(*ContentAnalysis)

// WithNowTime sets the clock used to stamp analysis runs.
func WithNowTime(nowFunc func() time.Time) ContentAnalysisOption {
	return func(ca *ContentAnalysis) {
		ca.nowTime = nowFunc
	}
}

// ContentAnalysis runs writing-quality checks and keeps the latest results.
type ContentAnalysis struct {
	base
	nowTime func() time.Time

	mu           sync.RWMutex
	results      *cmsmodel.TextAnalysisResults
	suggestions  []cmsmodel.WritingSuggestion
	lastAnalysis time.Time
	analyzing    bool
}

func NewContentAnalysis(c *apiclient.Client, n notify.Notifier, options ...ContentAnalysisOption) *ContentAnalysis {
	ca := &ContentAnalysis{base: newBase(c, n), nowTime: time.Now}
	for _, opt := range options {
		opt(ca)
	}
	return ca
}

func (ca *ContentAnalysis) detail(err error, fallback string) string {
	var apiErr *apiclient.APIError
	if asAPIError(err, &apiErr) && apiErr.Message != apiclient.DefaultErrorMessage {
		return apiErr.Message
	}
	return fallback
}

// Analyze submits text for analysis. Text under 10 characters is rejected
// with a warning before any request. A comprehensive run also fetches
// writing suggestions.
func (ca *ContentAnalysis) Analyze(ctx context.Context, text string, kind cmsmodel.AnalysisType, language string) (*cmsmodel.TextAnalysisResults, error) {
	if len(strings.TrimSpace(text)) < minAnalysisLength {
		ca.notifier.Notify(notify.Warning("Text too short", "Please enter at least 10 characters for analysis"))
		return nil, ErrTextTooShort
	}
	if kind == "" {
		kind = cmsmodel.AnalysisComprehensive
	}
	if language == "" {
		language = "en"
	}

	ca.setAnalyzing(true)
	defer ca.setAnalyzing(false)

	req := cmsmodel.AnalysisRequest{TextContent: text, AnalysisType: kind, Language: language}
	analysis, err := quiet(ctx, post[cmsmodel.TextAnalysis](ca.client, "/content-analysis/text-analysis/analyze/", req))
	if err != nil {
		ca.notifier.Notify(notify.Notification{Title: "Analysis Failed", Text: ca.detail(err, "Unable to analyze text"), Level: notify.LevelError})
		return nil, err
	}

	results := analysis.Results
	ca.mu.Lock()
	ca.results = &results
	ca.lastAnalysis = ca.nowTime()
	ca.mu.Unlock()

	if kind == cmsmodel.AnalysisComprehensive && analysis.ID != "" {
		_, _ = ca.GenerateSuggestions(ctx, analysis.ID)
	}

	ca.notifier.Notify(notify.Success("Analysis Complete",
		fmt.Sprintf("Found %d issues, readability: %s", len(results.Issues), ca.Readability().Level)))
	return &results, nil
}

// RealtimeCheck is a light check made while typing. Short text and failures
// both yield the safe defaults.
func (ca *ContentAnalysis) RealtimeCheck(ctx context.Context, text, checkType, language string) cmsmodel.RealtimeCheck {
	if len(strings.TrimSpace(text)) < minRealtimeLength {
		return cmsmodel.SafeRealtimeCheck()
	}
	if checkType == "" {
		checkType = string(cmsmodel.AnalysisGrammar)
	}
	if language == "" {
		language = "en"
	}
	req := cmsmodel.RealtimeCheckRequest{Text: text, Type: checkType, Language: language}
	check, err := quiet(ctx, post[cmsmodel.RealtimeCheck](ca.client, "/content-analysis/realtime-check/", req))
	if err != nil {
		return cmsmodel.SafeRealtimeCheck()
	}
	return check
}

func (ca *ContentAnalysis) GenerateSuggestions(ctx context.Context, analysisID string) ([]cmsmodel.WritingSuggestion, error) {
	if analysisID == "" {
		return nil, nil
	}
	path := "/content-analysis/text-analysis/" + seg(analysisID) + "/suggestions/"
	suggestions, err := quiet(ctx, get[[]cmsmodel.WritingSuggestion](ca.client, path, nil))
	if err != nil {
		ca.notifier.Notify(notify.Warning("Suggestion Generation Failed", ca.detail(err, "Unable to generate suggestions")))
		return nil, err
	}
	for i := range suggestions {
		if suggestions[i].SuggestionText == "" {
			suggestions[i].SuggestionText = suggestions[i].SuggestedText
		}
	}
	ca.mu.Lock()
	ca.suggestions = suggestions
	ca.mu.Unlock()
	return suggestions, nil
}

// ApplySuggestion returns the rewritten text, or originalText if the call fails.
func (ca *ContentAnalysis) ApplySuggestion(ctx context.Context, suggestionID, originalText string) (string, error) {
	path := "/content-analysis/suggestions/" + seg(suggestionID) + "/apply/"
	applied, err := quiet(ctx, post[cmsmodel.AppliedSuggestion](ca.client, path, map[string]string{"original_text": originalText}))
	if err != nil {
		ca.notifier.Notify(notify.Notification{Title: "Apply Failed", Text: ca.detail(err, "Unable to apply suggestion"), Level: notify.LevelError})
		return originalText, err
	}
	ca.notifier.Notify(notify.Success("Suggestion Applied", "Writing suggestion has been applied to your text"))
	return applied.ModifiedText, nil
}

func (ca *ContentAnalysis) AcceptSuggestion(ctx context.Context, suggestionID string) bool {
	return ca.resolve(ctx, suggestionID, "accept", func(s *cmsmodel.WritingSuggestion) { s.Accepted = true })
}

func (ca *ContentAnalysis) DismissSuggestion(ctx context.Context, suggestionID string) bool {
	return ca.resolve(ctx, suggestionID, "dismiss", func(s *cmsmodel.WritingSuggestion) { s.Dismissed = true })
}

func (ca *ContentAnalysis) resolve(ctx context.Context, suggestionID, action string, mark func(*cmsmodel.WritingSuggestion)) bool {
	path := "/content-analysis/suggestions/" + seg(suggestionID) + "/" + action + "/"
	if _, err := quiet(ctx, post[Raw](ca.client, path, nil)); err != nil {
		return false
	}
	ca.mu.Lock()
	defer ca.mu.Unlock()
	for i := range ca.suggestions {
		if ca.suggestions[i].ID == suggestionID {
			mark(&ca.suggestions[i])
		}
	}
	return true
}

func (ca *ContentAnalysis) setAnalyzing(v bool) {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	ca.analyzing = v
}

func (ca *ContentAnalysis) Analyzing() bool {
	ca.mu.RLock()
	defer ca.mu.RUnlock()
	return ca.analyzing
}

func (ca *ContentAnalysis) Results() *cmsmodel.TextAnalysisResults {
	ca.mu.RLock()
	defer ca.mu.RUnlock()
	if ca.results == nil {
		return nil
	}
	r := *ca.results
	return &r
}

func (ca *ContentAnalysis) Suggestions() []cmsmodel.WritingSuggestion {
	ca.mu.RLock()
	defer ca.mu.RUnlock()
	return append([]cmsmodel.WritingSuggestion(nil), ca.suggestions...)
}

// LastAnalysis is zero until an analysis has completed.
func (ca *ContentAnalysis) LastAnalysis() time.Time {
	ca.mu.RLock()
	defer ca.mu.RUnlock()
	return ca.lastAnalysis
}

func (ca *ContentAnalysis) HasIssues() bool {
	ca.mu.RLock()
	defer ca.mu.RUnlock()
	return ca.results != nil && len(ca.results.Issues) > 0
}

// IssueCountBySeverity always reports minor, warning and error, even at zero.
func (ca *ContentAnalysis) IssueCountBySeverity() map[string]int {
	counts := map[string]int{"minor": 0, "warning": 0, "error": 0}
	ca.mu.RLock()
	defer ca.mu.RUnlock()
	if ca.results == nil {
		return counts
	}
	for _, issue := range ca.results.Issues {
		counts[issue.Severity]++
	}
	return counts
}

func (ca *ContentAnalysis) Readability() ReadabilityRating {
	ca.mu.RLock()
	defer ca.mu.RUnlock()
	if ca.results == nil {
		return ReadabilityRating{Level: "unknown", Color: "gray"}
	}
	score := ca.results.FleschReadingEase
	return ReadabilityRating{Level: ca.results.ReadabilityLevel, Color: ReadabilityColor(score), Score: score}
}

func (ca *ContentAnalysis) ClearResults() {
	ca.mu.Lock()
	defer ca.mu.Unlock()
	ca.results = nil
	ca.suggestions = nil
	ca.lastAnalysis = time.Time{}
}
