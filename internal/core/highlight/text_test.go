package highlight

import (
	"reflect"
	"testing"
)

func TestCleanIngredientText(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"glued quantity and prep word", "400g Maris Piper potatoes, peeled", "maris piper potatoes"},
		{"vulgar fraction and parenthetical", "1 ½ cups plain flour (sifted)", "plain flour"},
		{"lone vulgar fraction", "¾ cup sugar", "sugar"},
		{"range", "2-3 cloves garlic, minced", "cloves garlic"},
		{"word range", "2 to 3 carrots", "carrots"},
		{"stop words", "Salt and pepper to taste", "salt pepper"},
		{"unit alias", "2 tbsp olive oil", "olive oil"},
		{"descriptor words", "Freshly ground black pepper", "black pepper"},
		{"decimal quantity", "1.5 kg beef brisket", "beef brisket"},
		{"pure filler", "2 tbsp, to taste", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanIngredientText(tt.raw); got != tt.want {
				t.Errorf("CleanIngredientText(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeStepText(t *testing.T) {
	got := NormalizeStepText("  Heat 2 tbsp of the oil;  then ADD onions! ")
	want := "heat 2 tbsp of the oil then add onions"
	if got != want {
		t.Errorf("NormalizeStepText = %q, want %q", got, want)
	}
}

func TestSingularize(t *testing.T) {
	tests := map[string]string{
		"berries":  "berry",
		"leaves":   "leaf",
		"tomatoes": "tomato",
		"onions":   "onion",
		"eggs":     "egg",
		"peas":     "pea",
		"grass":    "grass",
		"gas":      "ga",
		"figs":     "fig",
		"oil":      "oil",
		"butter":   "butter",
	}
	for in, want := range tests {
		if got := Singularize(in); got != want {
			t.Errorf("Singularize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestTokenize(t *testing.T) {
	got := Tokenize("a cherry tomatoes x basil leaves")
	want := []string{"cherry", "tomato", "basil", "leaf"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tokenize = %v, want %v", got, want)
	}
	if got := Tokenize(""); len(got) != 0 {
		t.Errorf("Tokenize(\"\") = %v, want empty", got)
	}
}

func TestHeadNoun(t *testing.T) {
	tests := []struct {
		tokens []string
		want   string
	}{
		{[]string{"red", "onion"}, "onion"},
		{[]string{"onion", "chopped"}, "onion"},
		{[]string{"chicken", "cut", "into", "chunks"}, "chicken"},
		{[]string{"fresh", "chopped"}, "chopped"},
		{nil, ""},
	}
	for _, tt := range tests {
		if got := HeadNoun(tt.tokens); got != tt.want {
			t.Errorf("HeadNoun(%v) = %q, want %q", tt.tokens, got, tt.want)
		}
	}
}

func TestBuildPhrases(t *testing.T) {
	got := BuildPhrases([]string{"red", "wine", "vinegar"})
	want := []string{"red wine", "wine vinegar", "red wine vinegar"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("BuildPhrases = %v, want %v", got, want)
	}
	if got := BuildPhrases([]string{"salt"}); len(got) != 0 {
		t.Errorf("single token should yield no phrases, got %v", got)
	}
}

func TestContainsWord(t *testing.T) {
	tests := []struct {
		text, phrase string
		want         bool
	}{
		{"add the red onion now", "red onion", true},
		{"red onion", "red onion", true},
		{"add the red onions", "red onion", false},
		{"add the bored onion", "red onion", false},
		{"anything", "", false},
	}
	for _, tt := range tests {
		if got := containsWord(tt.text, tt.phrase); got != tt.want {
			t.Errorf("containsWord(%q, %q) = %v, want %v", tt.text, tt.phrase, got, tt.want)
		}
	}
}

func TestSynonyms(t *testing.T) {
	tests := []struct {
		token string
		want  string
	}{
		{"onion", "shallot"},
		{"shallot", "onion"},
		{"courgett", "zucchini"},
		{"zucchini", "courgett"},
		{"prawn", "shrimp"},
	}
	for _, tt := range tests {
		found := false
		for _, v := range Synonyms(tt.token) {
			if v == tt.want {
				found = true
			}
			if v == tt.token {
				t.Errorf("Synonyms(%q) contains the token itself", tt.token)
			}
		}
		if !found {
			t.Errorf("Synonyms(%q) = %v, missing %q", tt.token, Synonyms(tt.token), tt.want)
		}
	}
	if got := Synonyms("pepper"); len(got) != 0 {
		t.Errorf("seasoning token should have no synonyms, got %v", got)
	}
}

func TestFuzzyMatch(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"tomato", "tomatoe", true},
		{"chilli", "chili", true},
		{"flour", "floor", true},
		{"rice", "ice", true},
		{"fig", "fog", true},
		{"oil", "boil", true},
		{"carrot", "rest", false},
		{"butter", "buttermilk", false},
		{"pepper", "peppercorn", false},
		{"onion", "minute", false},
	}
	for _, tt := range tests {
		if got := fuzzyMatch(tt.a, tt.b, 0); got != tt.want {
			t.Errorf("fuzzyMatch(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := fuzzyMatch(tt.b, tt.a, 0); got != tt.want {
			t.Errorf("fuzzyMatch(%q, %q) = %v, want %v (symmetry)", tt.b, tt.a, got, tt.want)
		}
	}
}

func TestFuzzyMatchStrict(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"rice", "ice", false},
		{"fig", "fog", false},
		{"oil", "boil", false},
		{"flour", "floor", true},
		{"tomato", "tomatoe", true},
	}
	for _, tt := range tests {
		c := newFuzzyCache(true)
		if got := c.match(tt.a, tt.b); got != tt.want {
			t.Errorf("strict match(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
		if got := newFuzzyCache(false).match(tt.a, tt.b); !got {
			t.Errorf("default match(%q, %q) = false, want true", tt.a, tt.b)
		}
	}
}

func TestWithinOneEdit(t *testing.T) {
	tests := []struct {
		longer, shorter string
		want            bool
	}{
		{"abcd", "abcd", true},
		{"abcd", "abce", true},
		{"abcde", "abde", true},
		{"abcde", "abcd", true},
		{"abcd", "abdc", false},
		{"abcdef", "abcd", false},
	}
	for _, tt := range tests {
		if got := withinOneEdit(tt.longer, tt.shorter); got != tt.want {
			t.Errorf("withinOneEdit(%q, %q) = %v, want %v", tt.longer, tt.shorter, got, tt.want)
		}
	}
}

func TestFuzzyCacheMemoizes(t *testing.T) {
	c := newFuzzyCache(false)
	if !c.match("flour", "floor") {
		t.Fatal("expected flour ~ floor")
	}
	if len(c.memo) != 1 {
		t.Fatalf("cache size = %d, want 1", len(c.memo))
	}
	c.match("flour", "floor")
	if len(c.memo) != 1 {
		t.Errorf("repeated pair should reuse cached entry, size = %d", len(c.memo))
	}
}
