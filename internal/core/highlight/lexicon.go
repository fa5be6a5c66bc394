package highlight

import (
	"regexp"
	"sort"
	"strings"
)

// 靜態詞表：程式啟動時建立一次，之後只讀，可被任意 goroutine 共用

// unitAliases 計量單位別名
var unitAliases = []string{
	"teaspoon", "teaspoons", "tsp", "tsps", "t",
	"tablespoon", "tablespoons", "tbsp", "tbsps", "tbs", "tbl",
	"cup", "cups", "c",
	"ounce", "ounces", "oz", "fl",
	"pound", "pounds", "lb", "lbs",
	"gram", "grams", "g", "gr",
	"kilogram", "kilograms", "kg", "kgs",
	"milligram", "milligrams", "mg",
	"milliliter", "milliliters", "millilitre", "millilitres", "ml",
	"centiliter", "centilitre", "cl",
	"deciliter", "decilitre", "dl",
	"liter", "liters", "litre", "litres", "l",
	"pint", "pints", "pt", "quart", "quarts", "qt", "gallon", "gallons", "gal",
	"pinch", "pinches", "dash", "dashes", "drop", "drops",
	"handful", "handfuls", "bunch", "bunches", "sprig", "sprigs",
	"can", "cans", "tin", "tins", "jar", "jars", "packet", "packets", "package", "packages", "pkg",
	"bag", "bags", "box", "boxes", "bottle", "bottles", "carton", "cartons",
	"stick", "sticks", "knob", "knobs", "piece", "pieces", "slice", "slices",
	"cm", "mm", "inch", "inches", "in",
	"x",
}

// prepWords 處理方式與描述詞（不構成食材身分）
var prepWords = []string{
	"chopped", "finely", "roughly", "coarsely", "thinly", "thickly", "diced", "minced",
	"sliced", "grated", "shredded", "peeled", "deseeded", "seeded", "cored", "trimmed",
	"halved", "quartered", "crushed", "ground", "freshly", "fresh", "dried", "frozen",
	"thawed", "defrosted", "softened", "melted", "room", "temperature", "cold", "warm",
	"hot", "boiling", "cooked", "uncooked", "raw", "rinsed", "drained", "washed",
	"beaten", "whisked", "lightly", "large", "medium", "small", "extra", "big",
	"heaped", "level", "rounded", "packed", "loosely", "firmly", "sifted", "toasted",
	"roasted", "torn", "cubed", "cut", "into", "chunks", "wedges", "strips",
	"pieces", "bite", "sized", "size", "optional", "divided", "plus", "more",
	"needed", "serve", "serving", "garnish", "taste", "about", "approximately", "approx",
	"roughly", "generous", "good", "quality", "ripe", "whole", "skinless", "boneless",
	"pitted", "stoned", "julienned", "zested", "juiced", "squeezed", "spiralized", "mashed",
	"separated", "pinched", "sprinkle",
}

// stopWords 英文停用詞
var stopWords = []string{
	"and", "or", "the", "of", "a", "an", "to", "for", "with", "without", "in", "on",
	"at", "by", "from", "as", "some", "any", "your", "each", "per", "if", "then",
	"such", "other", "few", "little", "bit", "few", "very", "well", "also", "etc",
	"is", "it", "its", "be", "are", "use", "using", "you", "can", "will", "until",
}

// prepositions 擷取主名詞時額外忽略的介系詞
var prepositions = []string{"into", "onto", "over", "under", "through", "like", "than"}

// genericSections 無意義的通用分組標題
var genericSections = []string{
	"ingredients", "ingredient", "shopping list", "instructions", "instruction",
	"directions", "direction", "method", "steps", "step", "preparation", "recipe",
}

// seasoningTokens 調味料主詞
var seasoningTokens = []string{"salt", "pepper"}

// seasoningModifiers 與調味料並列時不改變其調味料性質的修飾詞
var seasoningModifiers = []string{
	"black", "white", "sea", "kosher", "table", "flaky", "flake", "cracked", "rock", "fine",
	"coarse", "peppercorn", "maldon",
}

// synonymGroups 雙向料理同義詞群組（單字詞條）
var synonymGroups = [][]string{
	{"onion", "shallot", "scallion"},
	{"cilantro", "coriander"},
	{"zucchini", "courgette"},
	{"eggplant", "aubergine"},
	{"shrimp", "prawn"},
	{"arugula", "rocket"},
	{"garbanzo", "chickpea"},
	{"cornstarch", "cornflour"},
	{"stock", "broth", "bouillon"},
	{"beet", "beetroot"},
	{"rutabaga", "swede"},
	{"chile", "chili", "chilli"},
	{"yogurt", "yoghurt"},
	{"molasses", "treacle"},
	{"parmesan", "parmigiano"},
	{"sultana", "raisin"},
	{"bacon", "pancetta", "lardon"},
	{"confectioners", "icing", "powdered"},
	{"caster", "superfine"},
	{"pasta", "spaghetti", "penne", "linguine", "fusilli", "rigatoni", "macaroni"},
	{"mince", "hamburger"},
}

var (
	prepSet        map[string]bool
	stopSet        map[string]bool
	headIgnoreSet  map[string]bool
	genericSet     map[string]bool
	seasoningSet   map[string]bool
	seasoningMods  map[string]bool
	synonymIndex   map[string][]string
	unitPattern    *regexp.Regexp
	prepPattern    *regexp.Regexp
	stopPattern    *regexp.Regexp
	unitWordLookup map[string]bool
)

func init() {
	prepSet = toSet(prepWords)
	stopSet = toSet(stopWords)
	genericSet = toSet(genericSections)
	seasoningSet = toSet(seasoningTokens)
	seasoningMods = toSet(seasoningModifiers)

	headIgnoreSet = make(map[string]bool, len(prepSet)+len(stopSet)+len(prepositions))
	for _, set := range []map[string]bool{prepSet, stopSet, toSet(prepositions)} {
		for w := range set {
			headIgnoreSet[w] = true
		}
	}

	unitPattern = wordPattern(unitAliases)
	prepPattern = wordPattern(prepWords)
	stopPattern = wordPattern(stopWords)

	// 標題偵測只看明確的單位詞，排除單字母縮寫
	unitWordLookup = make(map[string]bool, len(unitAliases))
	for _, u := range unitAliases {
		if len(u) > 1 {
			unitWordLookup[u] = true
		}
	}

	synonymIndex = buildSynonymIndex(synonymGroups)
}

func toSet(words []string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// wordPattern 建立整字比對的正則，長詞優先
func wordPattern(words []string) *regexp.Regexp {
	uniq := make([]string, 0, len(words))
	seen := make(map[string]bool, len(words))
	for _, w := range words {
		if seen[w] {
			continue
		}
		seen[w] = true
		uniq = append(uniq, regexp.QuoteMeta(w))
	}
	sort.SliceStable(uniq, func(i, j int) bool { return len(uniq[i]) > len(uniq[j]) })
	return regexp.MustCompile(`\b(?:` + strings.Join(uniq, "|") + `)\b`)
}

// buildSynonymIndex 建立雙向同義詞索引
// 詞條先經過與 token 相同的單數化
func buildSynonymIndex(groups [][]string) map[string][]string {
	index := make(map[string][]string)
	add := func(key, variant string) {
		if key == variant {
			return
		}
		for _, existing := range index[key] {
			if existing == variant {
				return
			}
		}
		index[key] = append(index[key], variant)
	}

	for _, group := range groups {
		var variants []string
		for _, entry := range group {
			variants = append(variants, surfaceForms(entry)...)
		}
		for _, key := range variants {
			for _, variant := range variants {
				add(key, variant)
			}
		}
	}
	return index
}

// surfaceForms 詞條單數形與其複數經單數化後的形式
// 例如 courgette 與 courgettes→courgett 都要能查到
func surfaceForms(entry string) []string {
	forms := []string{Singularize(entry)}
	if !strings.HasSuffix(entry, "s") {
		if plural := Singularize(entry + "s"); plural != forms[0] {
			forms = append(forms, plural)
		}
	}
	return forms
}

// Synonyms 返回 token 的同義詞變體（不含自身）
func Synonyms(token string) []string {
	return synonymIndex[token]
}

// IsSeasoningToken 檢查是否為調味料 token
func IsSeasoningToken(token string) bool {
	return seasoningSet[token]
}

// IsGenericSection 檢查是否為通用分組標題
func IsGenericSection(label string) bool {
	return genericSet[strings.ToLower(strings.TrimSpace(label))]
}
