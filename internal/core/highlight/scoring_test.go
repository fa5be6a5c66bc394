package highlight

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestHeuristicScorer(t *testing.T) {
	tests := []struct {
		name string
		f    Features
		want float64
	}{
		{"no evidence", Features{}, 0},
		{
			name: "head noun only",
			f:    Features{OverlapRatio: 0.5, WeightCoverage: 0.5, MatchedTokens: 1, HasHeadNoun: true},
			want: 0.225 + 0.125 + 0.07 + 0.18,
		},
		{
			name: "bonuses add up",
			f:    Features{OverlapRatio: 0.25, MatchedTokens: 1, SynonymHit: true, FuzzyHit: true, UniqueHead: true},
			want: 0.1125 + 0.07 + 0.15,
		},
		{
			name: "capped at one",
			f: Features{
				OverlapRatio: 1, WeightCoverage: 1, MatchedTokens: 3,
				HasHeadNoun: true, PhraseHit: true, UniqueHead: true,
			},
			want: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HeuristicScorer{}.Score(tt.f)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLearnedScorer(t *testing.T) {
	s := LearnedScorer{}
	base := s.Score(Features{})
	if want := 1 / (1 + math.Exp(0.5)); math.Abs(base-want) > epsilon {
		t.Errorf("Score(zero) = %v, want sigmoid(-0.5) = %v", base, want)
	}

	weak := s.Score(Features{OverlapRatio: 0.2, WeightCoverage: 0.2, MatchedTokens: 1, TokenCount: 5})
	strong := s.Score(Features{OverlapRatio: 1, WeightCoverage: 1, MatchedTokens: 1, TokenCount: 1, HasHeadNoun: true})
	if !(strong > weak) {
		t.Errorf("full coverage should outscore partial coverage: strong=%v weak=%v", strong, weak)
	}

	short := s.Score(Features{OverlapRatio: 0.5, TokenCount: 2})
	long := s.Score(Features{OverlapRatio: 0.5, TokenCount: 8})
	if !(short > long) {
		t.Errorf("token count should be penalized: short=%v long=%v", short, long)
	}
}

func TestOptionsScorerSelection(t *testing.T) {
	custom := constScorer(0.9)
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"default", DefaultOptions(), "heuristic"},
		{"learned", Options{MinConfidence: 0.35, UseLearnedModel: true}, "learned"},
		{"injected wins", Options{UseLearnedModel: true, Scorer: custom}, "const"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.opts.scorer().Name(); got != tt.want {
				t.Errorf("scorer() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAdaptiveThreshold(t *testing.T) {
	tests := []struct {
		name string
		min  float64
		f    Features
		want float64
	}{
		{"short ingredient", 0.35, Features{TokenCount: 1}, 0.20},
		{"seasoning", 0.35, Features{TokenCount: 2, Seasoning: true}, 0.175},
		{"medium ingredient", 0.35, Features{TokenCount: 4}, 0.30},
		{"medium with phrase", 0.35, Features{TokenCount: 4, PhraseHit: true}, 0.25},
		{"long ingredient", 0.35, Features{TokenCount: 8}, 0.35},
		{"strict short", 0.6, Features{TokenCount: 2}, 0.45},
		{"lenient short never raised", 0.1, Features{TokenCount: 2}, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := adaptiveThreshold(tt.min, tt.f)
			if math.Abs(got-tt.want) > epsilon {
				t.Errorf("adaptiveThreshold(%v) = %v, want %v", tt.min, got, tt.want)
			}
		})
	}
}

func TestAdaptiveThresholdMonotonic(t *testing.T) {
	shapes := []Features{
		{TokenCount: 1},
		{TokenCount: 2, Seasoning: true},
		{TokenCount: 3, PhraseHit: true},
		{TokenCount: 5},
		{TokenCount: 9, PhraseHit: true},
	}
	for _, f := range shapes {
		prev := math.Inf(-1)
		for m := 0.0; m <= 1.0; m += 0.05 {
			got := adaptiveThreshold(m, f)
			if got < prev-epsilon {
				t.Fatalf("threshold decreased for %+v at min=%v: %v < %v", f, m, got, prev)
			}
			prev = got
		}
	}
}

type constScorer float64

func (constScorer) Name() string             { return "const" }
func (c constScorer) Score(Features) float64 { return float64(c) }
