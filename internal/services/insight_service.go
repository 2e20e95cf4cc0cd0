package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/insights"
)

// InsightStatus distinguishes the three non-error outcomes of an insight
// read: a real result, a preference-disabled feature, and not enough history.
type InsightStatus string

const (
	StatusOK               InsightStatus = "ok"
	StatusDisabled         InsightStatus = "disabled"
	StatusInsufficientData InsightStatus = "insufficient_data"
)

type (
	ForecastResult struct {
		Status   InsightStatus      `json:"status"`
		Forecast *insights.Forecast `json:"forecast,omitempty"`
	}

	PersonalityResult struct {
		Status      InsightStatus         `json:"status"`
		Personality *insights.Personality `json:"personality,omitempty"`
	}

	SuggestionsResult struct {
		Status      InsightStatus         `json:"status"`
		Suggestions []insights.Suggestion `json:"suggestions,omitempty"`
	}

	MoodResult struct {
		Status InsightStatus          `json:"status"`
		Moods  *insights.MoodInsights `json:"moods,omitempty"`
	}

	ChallengesResult struct {
		Status     InsightStatus        `json:"status"`
		Challenges []insights.Challenge `json:"challenges,omitempty"`
	}
)

const (
	forecastWindowDays    = 30
	personalityWindowDays = 90
	insightCacheSize      = 256
)

// InsightService fetches the ledger windows, gates each insight on the
// user's preference toggles and runs the pure rule engine. Stable insight
// reads are cached briefly; challenges are never cached, their randomness is
// the point.
type InsightService struct {
	ledger  LedgerStore
	budgets BudgetStore
	bills   BillStore
	prefs   PreferenceStore

	challenges *insights.ChallengeGenerator
	now        func() time.Time

	forecastCache    *cache.TTL[ForecastResult]
	personalityCache *cache.TTL[PersonalityResult]
	moodCache        *cache.TTL[MoodResult]
}

func NewInsightService(ledger LedgerStore, budgets BudgetStore, bills BillStore, prefs PreferenceStore, cacheTTL time.Duration) *InsightService {
	return &InsightService{
		ledger:           ledger,
		budgets:          budgets,
		bills:            bills,
		prefs:            prefs,
		challenges:       insights.NewChallengeGenerator(time.Now().UnixNano()),
		now:              time.Now,
		forecastCache:    cache.New[ForecastResult](insightCacheSize, cacheTTL),
		personalityCache: cache.New[PersonalityResult](insightCacheSize, cacheTTL),
		moodCache:        cache.New[MoodResult](insightCacheSize, cacheTTL),
	}
}

// GetForecast projects current-month spending from the 30-day window.
func (s *InsightService) GetForecast(ctx context.Context, userID string) (ForecastResult, error) {
	enabled, err := s.featureEnabled(ctx, userID, func(p core.Preferences) bool { return p.Forecast })
	if err != nil {
		return ForecastResult{}, err
	}
	if !enabled {
		return ForecastResult{Status: StatusDisabled}, nil
	}
	if cached, ok := s.forecastCache.Get(userID); ok {
		return cached, nil
	}

	now := s.now()
	budget, window, err := s.budgetAndWindow(ctx, userID, forecastWindowDays, now)
	if err != nil {
		return ForecastResult{}, err
	}

	result := ForecastResult{Status: StatusInsufficientData}
	if f, ok := insights.BuildForecast(budget, window, now); ok {
		result = ForecastResult{Status: StatusOK, Forecast: f}
	}
	s.forecastCache.Set(userID, result)
	return result, nil
}

// GetPersonality classifies the 90-day spending pattern.
func (s *InsightService) GetPersonality(ctx context.Context, userID string) (PersonalityResult, error) {
	enabled, err := s.featureEnabled(ctx, userID, func(p core.Preferences) bool { return p.Personality })
	if err != nil {
		return PersonalityResult{}, err
	}
	if !enabled {
		return PersonalityResult{Status: StatusDisabled}, nil
	}
	if cached, ok := s.personalityCache.Get(userID); ok {
		return cached, nil
	}

	p, ok, err := s.classify(ctx, userID)
	if err != nil {
		return PersonalityResult{}, err
	}
	result := PersonalityResult{Status: StatusInsufficientData}
	if ok {
		result = PersonalityResult{Status: StatusOK, Personality: p}
	}
	s.personalityCache.Set(userID, result)
	return result, nil
}

// GetSuggestions runs the full suggestion rule list over the 30-day window,
// current budget, personality and pending bills.
func (s *InsightService) GetSuggestions(ctx context.Context, userID string) (SuggestionsResult, error) {
	enabled, err := s.featureEnabled(ctx, userID, func(p core.Preferences) bool { return p.Suggestions })
	if err != nil {
		return SuggestionsResult{}, err
	}
	if !enabled {
		return SuggestionsResult{Status: StatusDisabled}, nil
	}

	now := s.now()
	budget, window, err := s.budgetAndWindow(ctx, userID, forecastWindowDays, now)
	if err != nil {
		return SuggestionsResult{}, err
	}

	var personality insights.PersonalityType
	if p, ok, err := s.classify(ctx, userID); err != nil {
		return SuggestionsResult{}, err
	} else if ok {
		personality = p.Type
	}

	pending, err := s.bills.ListBills(ctx, userID, BillFilter{Status: core.BillPending})
	if err != nil {
		return SuggestionsResult{}, fmt.Errorf("list pending bills: %w", err)
	}

	sugs := insights.BuildSuggestions(insights.SuggestionInput{
		Last30:      window,
		Budget:      budget,
		Personality: personality,
		Bills:       pending,
		Now:         now,
	})
	return SuggestionsResult{Status: StatusOK, Suggestions: sugs}, nil
}

// GetMoodInsights summarizes mood-tagged spending over the 90-day window.
func (s *InsightService) GetMoodInsights(ctx context.Context, userID string) (MoodResult, error) {
	enabled, err := s.featureEnabled(ctx, userID, func(p core.Preferences) bool { return true })
	if err != nil {
		return MoodResult{}, err
	}
	if !enabled {
		return MoodResult{Status: StatusDisabled}, nil
	}
	if cached, ok := s.moodCache.Get(userID); ok {
		return cached, nil
	}

	window, err := s.expenseWindow(ctx, userID, personalityWindowDays, s.now(), true)
	if err != nil {
		return MoodResult{}, err
	}

	result := MoodResult{Status: StatusInsufficientData}
	if m, ok := insights.BuildMoodInsights(window); ok {
		result = MoodResult{Status: StatusOK, Moods: m}
	}
	s.moodCache.Set(userID, result)
	return result, nil
}

// GetChallenges builds savings challenges from the 30-day top categories.
// Results intentionally vary between calls and are never cached.
func (s *InsightService) GetChallenges(ctx context.Context, userID string) (ChallengesResult, error) {
	enabled, err := s.featureEnabled(ctx, userID, func(p core.Preferences) bool { return p.Challenges })
	if err != nil {
		return ChallengesResult{}, err
	}
	if !enabled {
		return ChallengesResult{Status: StatusDisabled}, nil
	}

	window, err := s.expenseWindow(ctx, userID, forecastWindowDays, s.now(), false)
	if err != nil {
		return ChallengesResult{}, err
	}
	return ChallengesResult{Status: StatusOK, Challenges: s.challenges.Build(window)}, nil
}

// featureEnabled loads preferences and combines the master AI switch with a
// per-feature flag.
func (s *InsightService) featureEnabled(ctx context.Context, userID string, flag func(core.Preferences) bool) (bool, error) {
	prefs, err := s.prefs.GetPreferences(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("get preferences: %w", err)
	}
	return prefs.EnableAI && flag(prefs), nil
}

// classify runs the personality decision list with the no-budget usage
// default of 100.
func (s *InsightService) classify(ctx context.Context, userID string) (*insights.Personality, bool, error) {
	now := s.now()
	window, err := s.expenseWindow(ctx, userID, personalityWindowDays, now, false)
	if err != nil {
		return nil, false, err
	}

	usage := 100.0
	budget, err := s.budgets.GetBudget(ctx, userID, core.MonthOf(now))
	switch {
	case err == nil && budget.Limit.Cents > 0:
		usage = budget.UsagePercent()
	case err != nil && !errors.Is(err, core.ErrNotFound):
		slog.WarnContext(ctx, "Budget read failed during classification, assuming full usage",
			"user_id", userID, "error", err)
	}

	p, ok := insights.ClassifyPersonality(window, usage)
	return p, ok, nil
}

func (s *InsightService) expenseWindow(ctx context.Context, userID string, days int, now time.Time, moodOnly bool) ([]core.Transaction, error) {
	txs, err := s.ledger.ListTransactions(ctx, userID, TransactionFilter{
		Type:     core.Expense,
		From:     now.AddDate(0, 0, -days),
		To:       now,
		MoodOnly: moodOnly,
	})
	if err != nil {
		return nil, fmt.Errorf("load %d-day expense window: %w", days, err)
	}
	return txs, nil
}

// budgetAndWindow loads the current-month aggregate (nil when unset) plus the
// trailing expense window.
func (s *InsightService) budgetAndWindow(ctx context.Context, userID string, days int, now time.Time) (*core.Budget, []core.Transaction, error) {
	window, err := s.expenseWindow(ctx, userID, days, now, false)
	if err != nil {
		return nil, nil, err
	}

	var budget *core.Budget
	b, err := s.budgets.GetBudget(ctx, userID, core.MonthOf(now))
	switch {
	case err == nil:
		budget = &b
	case !errors.Is(err, core.ErrNotFound):
		return nil, nil, fmt.Errorf("get budget: %w", err)
	}
	return budget, window, nil
}
