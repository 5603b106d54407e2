// Package difficulty turns competitive signals of a keyword's result page
// into a bounded 0..100 score with human-readable reasoning.
package difficulty

import (
	"context"
	"fmt"
	"strings"

	"github.com/sw33tLie/kwscope/pkg/normalize"
	"github.com/sw33tLie/kwscope/pkg/suggest"
)

const (
	Neutral  = 50
	baseline = 30

	brandWeight   = 8
	brandCap      = 40
	featureCap    = 30
	questionShift = -5
)

// FeatureWeights is the upward pressure of each rich result feature.
var FeatureWeights = map[string]int{
	"knowledge_panel":  10,
	"shopping":         8,
	"featured_snippet": 7,
	"video":            6,
	"local_pack":       6,
	"news":             5,
	"people_also_ask":  4,
	"images":           3,
}

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

// Scorer is safe for concurrent use.
type Scorer struct {
	source SignalSource
	brands *BrandMatcher
	log    Logger
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithBrands replaces the brand list.
func WithBrands(labels []string) Option {
	return func(s *Scorer) { s.brands = NewBrandMatcher(labels) }
}

// WithLogger sets the logger.
func WithLogger(l Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.log = l
		}
	}
}

// New builds a Scorer reading signals from source. A nil source always
// yields the neutral score.
func New(source SignalSource, opts ...Option) *Scorer {
	s := &Scorer{source: source, brands: NewBrandMatcher(DefaultBrands), log: nopLogger{}}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Score rates how hard keyword is to rank for. The only error is an
// invalid keyword; a failed signal fetch degrades to the neutral score.
func (s *Scorer) Score(ctx context.Context, keyword, language, country string) (suggest.DifficultyScore, error) {
	keyword, err := suggest.NormalizeKeyword(keyword)
	if err != nil {
		return suggest.DifficultyScore{}, err
	}

	var serp *SERP
	if s.source != nil {
		serp, err = s.source.Fetch(ctx, keyword, language, country)
		if err != nil {
			s.log.Warnf("signal fetch for %q failed: %v", keyword, err)
			serp = nil
		}
	}
	return s.Evaluate(keyword, language, serp), nil
}

// NeutralScore is the score given when no competitive signals are available.
func NeutralScore(keyword string) suggest.DifficultyScore {
	return suggest.DifficultyScore{
		Value: Neutral,
		Reasoning: []string{
			fmt.Sprintf("Insufficient competitive data for %q; defaulting to a neutral %d.", keyword, Neutral),
		},
		Signals: suggest.Signals{RichFeatures: []string{}, EstimatedCompetition: bucket(Neutral)},
	}
}

// Evaluate scores keyword against an already fetched snapshot. language
// selects the question markers.
func (s *Scorer) Evaluate(keyword, language string, serp *SERP) suggest.DifficultyScore {
	if serp.Empty() {
		return NeutralScore(keyword)
	}

	value := baseline
	reasoning := []string{fmt.Sprintf("Baseline difficulty is %d.", baseline)}

	brands := s.brands.Brands(serp.ResultURLs)
	if n := len(brands); n > 0 {
		delta := min(n*brandWeight, brandCap)
		value += delta
		reasoning = append(reasoning, fmt.Sprintf("%d recognized large brand(s) in the top %d results (%s): +%d.",
			n, len(serp.ResultURLs), strings.Join(brands, ", "), delta))
	} else {
		reasoning = append(reasoning, fmt.Sprintf("No recognized large brands in the top %d results.", len(serp.ResultURLs)))
	}

	features := make([]string, 0, len(serp.Features))
	weight := 0
	for _, f := range serp.Features {
		if w, ok := FeatureWeights[f]; ok {
			features = append(features, f)
			weight += w
		}
	}
	if weight > 0 {
		delta := min(weight, featureCap)
		value += delta
		reasoning = append(reasoning, fmt.Sprintf("Rich result features present (%s): +%d.", strings.Join(features, ", "), delta))
	} else {
		reasoning = append(reasoning, "No rich result features on the page.")
	}

	words := len(strings.Fields(normalize.Key(keyword)))
	delta, why := lengthAdjustment(words)
	value += delta
	reasoning = append(reasoning, fmt.Sprintf("%s: %+d.", why, delta))

	if normalize.IsQuestion(keyword, language) {
		value += questionShift
		reasoning = append(reasoning, fmt.Sprintf("Question phrasing draws less commercial competition: %+d.", questionShift))
	}

	value = clamp(value)
	reasoning = append(reasoning, fmt.Sprintf("Final score %d (%s competition).", value, bucket(value)))
	return suggest.DifficultyScore{
		Value:     value,
		Reasoning: reasoning,
		Signals: suggest.Signals{
			BrandPresence:        len(brands) > 0,
			RichFeatures:         features,
			EstimatedCompetition: bucket(value),
		},
	}
}

func lengthAdjustment(words int) (int, string) {
	switch {
	case words <= 1:
		return 15, "Single-word keyword is broad and heavily contested"
	case words == 2:
		return 5, "Two-word keyword is still fairly broad"
	case words == 3:
		return 0, "Three-word keyword has average specificity"
	case words == 4:
		return -5, "Four-word keyword is fairly specific"
	default:
		return -10, fmt.Sprintf("Long-tail keyword of %d words is highly specific", words)
	}
}

func clamp(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func bucket(v int) suggest.Competition {
	switch {
	case v < 34:
		return suggest.CompetitionLow
	case v < 67:
		return suggest.CompetitionMedium
	default:
		return suggest.CompetitionHigh
	}
}
