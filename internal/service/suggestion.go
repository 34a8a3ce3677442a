package service

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/JonnyWalker81/pulse/backend/internal/analytics"
	"github.com/JonnyWalker81/pulse/backend/internal/models"
	"github.com/JonnyWalker81/pulse/backend/pkg/completion"
)

// SuggestionProvider produces tips from a stats snapshot.
type SuggestionProvider interface {
	Suggest(ctx context.Context, in analytics.TipInput) ([]models.Tip, error)
	Source() models.SuggestionSource
}

// Completer is satisfied by *completion.Client.
type Completer interface {
	Complete(ctx context.Context, req completion.Request) (string, error)
}

type ruleProvider struct{}

// NewRuleProvider returns the threshold-based provider.
func NewRuleProvider() SuggestionProvider {
	return ruleProvider{}
}

func (ruleProvider) Suggest(_ context.Context, in analytics.TipInput) ([]models.Tip, error) {
	return analytics.RuleTips(in), nil
}

func (ruleProvider) Source() models.SuggestionSource {
	return models.SuggestionSourceRules
}

const coachSystemPrompt = "You are a supportive wellness coach providing personalized, actionable micro-suggestions. " +
	"Keep responses brief (1-2 sentences), specific, and encouraging. Format as a JSON array of strings."

// AIConfig selects the chat model.
type AIConfig struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

type aiProvider struct {
	client Completer
	cfg    AIConfig
}

// NewAIProvider returns a provider backed by a chat completion model.
func NewAIProvider(client Completer, cfg AIConfig) SuggestionProvider {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = 0.7
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 300
	}
	return &aiProvider{client: client, cfg: cfg}
}

func (p *aiProvider) Source() models.SuggestionSource {
	return models.SuggestionSourceAI
}

func (p *aiProvider) Suggest(ctx context.Context, in analytics.TipInput) ([]models.Tip, error) {
	content, err := p.client.Complete(ctx, completion.Request{
		Model: p.cfg.Model,
		Messages: []completion.Message{
			{Role: "system", Content: coachSystemPrompt},
			{Role: "user", Content: buildSuggestionPrompt(in)},
		},
		Temperature: p.cfg.Temperature,
		MaxTokens:   p.cfg.MaxTokens,
	})
	if err != nil {
		return nil, err
	}

	var texts []string
	if err := json.Unmarshal([]byte(stripCodeFence(content)), &texts); err != nil {
		return nil, fmt.Errorf("model did not return a JSON array of strings: %w", err)
	}

	tips := make([]models.Tip, 0, len(texts))
	for _, t := range texts {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		tips = append(tips, models.Tip{Category: models.TipCategoryGeneral, Text: t})
	}
	if len(tips) == 0 {
		return nil, fmt.Errorf("model returned no suggestions")
	}
	return tips, nil
}

func buildSuggestionPrompt(in analytics.TipInput) string {
	stepGoal, waterGoal, sleepGoal := in.Preferences.Goals()
	stats := in.Stats
	avgSteps := in.AvgStepsPerDay()

	trend := "improving"
	if stats.Trend.MoodDelta < 0 {
		trend = "declining"
	}
	focus := in.Preferences.FocusArea
	if focus == "" {
		focus = "overall wellness"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "User wellness data (%d days):\n", in.Window)
	fmt.Fprintf(&b, "- Average mood: %g/5 (trend: %s)\n", stats.Averages.Mood, trend)
	fmt.Fprintf(&b, "- Average sleep: %gh (goal: %gh, %d%%)\n", stats.Averages.Sleep, sleepGoal, percent(stats.Averages.Sleep, sleepGoal))
	fmt.Fprintf(&b, "- Average steps: %d (goal: %d, %d%%)\n", avgSteps, stepGoal, percent(float64(avgSteps), float64(stepGoal)))
	fmt.Fprintf(&b, "- Average water: %gL (goal: %gL, %d%%)\n", stats.Averages.Water, waterGoal, percent(stats.Averages.Water, waterGoal))
	fmt.Fprintf(&b, "- Current streak: %d days\n", stats.Streak.Current)
	fmt.Fprintf(&b, "- Focus area: %s\n\n", focus)
	b.WriteString("Provide 3-4 personalized, actionable micro-suggestions (1-2 sentences each) to improve the user's weakest areas. Return as JSON array of strings.")
	return b.String()
}

func percent(v, goal float64) int {
	if goal <= 0 {
		return 0
	}
	return int(math.Round(v / goal * 100))
}

// stripCodeFence removes a ```json fence some models wrap around their answer.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
