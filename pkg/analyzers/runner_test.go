package analyzers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mindfuljournal/analyzer/pkg/keywords"
	"github.com/mindfuljournal/analyzer/pkg/models"
)

type funcAnalyzer struct {
	name    string
	field   string
	analyze func(ctx context.Context, text string) (*models.AnalyzeResponse, error)
}

func (f *funcAnalyzer) Info() models.AnalyzerInfo {
	return models.AnalyzerInfo{Name: f.name, Field: f.field, Backend: "test"}
}

func (f *funcAnalyzer) Analyze(ctx context.Context, text string) (*models.AnalyzeResponse, error) {
	return f.analyze(ctx, text)
}

func summaryAnalyzer(summary string) *funcAnalyzer {
	return &funcAnalyzer{
		name:  SummarizerName,
		field: models.FieldSummary,
		analyze: func(context.Context, string) (*models.AnalyzeResponse, error) {
			return &models.AnalyzeResponse{Summary: &summary}, nil
		},
	}
}

func alertAnalyzer(alert bool) *funcAnalyzer {
	return &funcAnalyzer{
		name:  RiskName,
		field: models.FieldAlert,
		analyze: func(context.Context, string) (*models.AnalyzeResponse, error) {
			return &models.AnalyzeResponse{Alert: &alert}, nil
		},
	}
}

func failingAnalyzer(name, field string, err error) *funcAnalyzer {
	return &funcAnalyzer{
		name:  name,
		field: field,
		analyze: func(context.Context, string) (*models.AnalyzeResponse, error) {
			return nil, NewAnalyzerError(name, err)
		},
	}
}

// blockingAnalyzer ignores its context until release is closed.
func blockingAnalyzer(name, field string, release <-chan struct{}) *funcAnalyzer {
	return &funcAnalyzer{
		name:  name,
		field: field,
		analyze: func(context.Context, string) (*models.AnalyzeResponse, error) {
			<-release
			emotion := "joy"
			return &models.AnalyzeResponse{Emotion: &emotion}, nil
		},
	}
}

func TestRunMergesFields(t *testing.T) {
	analyzers := []models.Analyzer{
		summaryAnalyzer("A short day."),
		alertAnalyzer(false),
		NewKeywordExtractor(keywords.DefaultOptions()),
	}

	result := Run(context.Background(), analyzers, "Quiet morning", time.Second)

	assert.Equal(t, 3, result.Total)
	assert.Zero(t, result.Failed)
	assert.False(t, result.AllFailed())
	resp := result.Response
	require.NotNil(t, resp.Summary)
	require.NotNil(t, resp.Alert)
	require.NotNil(t, resp.Keywords)
	assert.Equal(t, "A short day.", *resp.Summary)
	assert.False(t, *resp.Alert)
	assert.Equal(t, []string{"quiet morning", "quiet", "morning"}, *resp.Keywords)
	assert.Nil(t, resp.Emotion)
	assert.Nil(t, resp.Errors)
}

func TestRunReportsPartialFailure(t *testing.T) {
	analyzers := []models.Analyzer{
		summaryAnalyzer("A short day."),
		failingAnalyzer(EmotionName, models.FieldEmotion, fmt.Errorf("%w: 503", models.ErrModelUnavailable)),
	}

	result := Run(context.Background(), analyzers, "text", 0)

	assert.Equal(t, 1, result.Failed)
	assert.False(t, result.AllFailed())
	assert.Equal(t, "A short day.", *result.Response.Summary)
	require.Contains(t, result.Response.Errors, models.FieldEmotion)
	assert.Equal(t, models.CodeModelUnavailable, result.Response.Errors[models.FieldEmotion].Code)
}

func TestRunAllFailed(t *testing.T) {
	analyzers := []models.Analyzer{
		failingAnalyzer(SummarizerName, models.FieldSummary, models.ErrModelUnavailable),
		failingAnalyzer(EmotionName, models.FieldEmotion, errors.New("boom")),
	}

	result := Run(context.Background(), analyzers, "text", time.Second)

	assert.True(t, result.AllFailed())
	assert.False(t, result.AllTimedOut())
	assert.Len(t, result.Response.Errors, 2)
	assert.Equal(t, models.CodeInternal, result.Response.Errors[models.FieldEmotion].Code)
}

func TestRunTimesOutSlowAnalyzers(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	analyzers := []models.Analyzer{
		summaryAnalyzer("A short day."),
		blockingAnalyzer(EmotionName, models.FieldEmotion, release),
	}

	start := time.Now()
	result := Run(context.Background(), analyzers, "text", 50*time.Millisecond)

	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 1, result.TimedOut)
	assert.False(t, result.AllTimedOut())
	assert.NotNil(t, result.Response.Summary)
	assert.Nil(t, result.Response.Emotion)
	require.Contains(t, result.Response.Errors, models.FieldEmotion)
	assert.Equal(t, models.CodeTimeout, result.Response.Errors[models.FieldEmotion].Code)
}

func TestRunAllTimedOut(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	analyzers := []models.Analyzer{
		blockingAnalyzer(SummarizerName, models.FieldSummary, release),
		blockingAnalyzer(EmotionName, models.FieldEmotion, release),
	}

	result := Run(context.Background(), analyzers, "text", 20*time.Millisecond)

	assert.True(t, result.AllFailed())
	assert.True(t, result.AllTimedOut())
}

func TestRunContextAwareAnalyzerTimeout(t *testing.T) {
	slow := &funcAnalyzer{
		name:  EmotionName,
		field: models.FieldEmotion,
		analyze: func(ctx context.Context, _ string) (*models.AnalyzeResponse, error) {
			<-ctx.Done()
			return nil, NewAnalyzerError(EmotionName, ctx.Err())
		},
	}

	result := Run(context.Background(), []models.Analyzer{slow}, "text", 20*time.Millisecond)

	assert.True(t, result.AllTimedOut())
	assert.Equal(t, models.CodeTimeout, result.Response.Errors[models.FieldEmotion].Code)
}

func TestRunCanceledIsNotTimeout(t *testing.T) {
	release := make(chan struct{})
	defer close(release)

	analyzers := []models.Analyzer{
		summaryAnalyzer("A short day."),
		blockingAnalyzer(EmotionName, models.FieldEmotion, release),
	}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	result := Run(ctx, analyzers, "text", time.Minute)

	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, result.TimedOut)
	require.Contains(t, result.Response.Errors, models.FieldEmotion)
	assert.Equal(t, models.CodeCanceled, result.Response.Errors[models.FieldEmotion].Code)
}
