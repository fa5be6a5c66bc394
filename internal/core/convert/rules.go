package convert

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"recipe-highlighter/internal/core/highlight"
)

// metricUnit 換算後的公制單位
type metricUnit string

const (
	milliliters metricUnit = "ml"
	grams       metricUnit = "g"
)

// large 超過 1000 時改用的單位
func (u metricUnit) large() metricUnit {
	if u == grams {
		return "kg"
	}
	return "l"
}

// rule 美制單位到公制的換算係數
type rule struct {
	factor float64
	metric metricUnit
}

var rules = map[string]rule{
	"cup":    {240, milliliters},
	"tbsp":   {15, milliliters},
	"tsp":    {5, milliliters},
	"fl oz":  {30, milliliters},
	"pint":   {473, milliliters},
	"quart":  {946, milliliters},
	"gallon": {3785, milliliters},
	"oz":     {28, grams},
	"lb":     {454, grams},
}

var unitAliases = map[string]string{
	"cup": "cup", "cups": "cup", "c": "cup",
	"tablespoon": "tbsp", "tablespoons": "tbsp", "tbsp": "tbsp", "tbsps": "tbsp", "tbs": "tbsp", "tbl": "tbsp",
	"teaspoon": "tsp", "teaspoons": "tsp", "tsp": "tsp", "tsps": "tsp",
	"fl oz": "fl oz", "fl. oz": "fl oz", "fluid ounce": "fl oz", "fluid ounces": "fl oz", "floz": "fl oz",
	"pint": "pint", "pints": "pint", "pt": "pint",
	"quart": "quart", "quarts": "quart", "qt": "quart",
	"gallon": "gallon", "gallons": "gallon", "gal": "gallon",
	"ounce": "oz", "ounces": "oz", "oz": "oz",
	"pound": "lb", "pounds": "lb", "lb": "lb", "lbs": "lb",
}

var metricWords = map[string]bool{
	"g": true, "gr": true, "gram": true, "grams": true,
	"kg": true, "kilogram": true, "kilograms": true, "mg": true,
	"ml": true, "milliliter": true, "milliliters": true, "millilitre": true, "millilitres": true,
	"l": true, "liter": true, "liters": true, "litre": true, "litres": true,
	"cl": true, "dl": true,
}

const number = `\d+\s+\d+/\d+|\d+/\d+|\d+(?:\.\d+)?`

var quantityRe = regexp.MustCompile(`^(` + number + `)(?:\s*(?:-|–|to)\s*(` + number + `))?`)

// unitKind 行首數量之後的單位類型
type unitKind int

const (
	unitNone   unitKind = iota // 只有數字
	unitRule                   // 換算表內的美制單位
	unitMetric                 // 已是公制
	unitOther                  // 計數單位或未知單位，交給 Provider
)

// quantity 行首數量；High 為範圍上限，非範圍時為 0
type quantity struct {
	Low  float64
	High float64
}

type parsedLine struct {
	qty  quantity
	unit string
	kind unitKind
}

// parseLine 解析行首的數量與單位；沒有數量時 ok 為 false
func parseLine(line string) (parsedLine, bool) {
	s := strings.Join(strings.Fields(strings.ToLower(highlight.FoldFractions(line))), " ")
	m := quantityRe.FindStringSubmatch(s)
	if m == nil {
		return parsedLine{}, false
	}
	low, ok := parseNumber(m[1])
	if !ok || low <= 0 {
		return parsedLine{}, false
	}

	p := parsedLine{qty: quantity{Low: low}}
	if m[2] != "" {
		if high, ok := parseNumber(m[2]); ok && high > low {
			p.qty.High = high
		}
	}
	p.unit, p.kind = matchUnit(strings.Fields(s[len(m[0]):]))
	return p, true
}

func matchUnit(words []string) (string, unitKind) {
	if len(words) == 0 {
		return "", unitNone
	}
	first := trimWord(words[0])
	if len(words) > 1 {
		if unit, ok := unitAliases[first+" "+trimWord(words[1])]; ok {
			return unit, unitRule
		}
	}
	if unit, ok := unitAliases[first]; ok {
		return unit, unitRule
	}
	if metricWords[first] {
		return first, unitMetric
	}
	return first, unitOther
}

func trimWord(w string) string {
	return strings.TrimRight(w, ".,;:)")
}

// parseNumber 解析 "1"、"1.5"、"1/2"、"1 1/2"
func parseNumber(s string) (float64, bool) {
	whole, frac, hasWhole := strings.Cut(strings.TrimSpace(s), " ")
	if !hasWhole {
		frac, whole = whole, ""
	}

	var total float64
	if whole != "" {
		w, err := strconv.ParseFloat(whole, 64)
		if err != nil {
			return 0, false
		}
		total = w
	}
	if num, den, isFrac := strings.Cut(frac, "/"); isFrac {
		n, err1 := strconv.ParseFloat(num, 64)
		d, err2 := strconv.ParseFloat(den, 64)
		if err1 != nil || err2 != nil || d == 0 {
			return 0, false
		}
		return total + n/d, true
	}
	v, err := strconv.ParseFloat(frac, 64)
	if err != nil {
		return 0, false
	}
	return total + v, true
}

// formatMetric 依規則換算數量；範圍兩端共用同一單位
func formatMetric(q quantity, r rule) string {
	low := q.Low * r.factor
	high := q.High * r.factor

	unit, scale := r.metric, 1.0
	if math.Max(low, high) >= 1000 {
		unit, scale = r.metric.large(), 1000
	}

	s := formatNumber(low / scale)
	if q.High > 0 {
		s += "–" + formatNumber(high/scale)
	}
	return s + " " + string(unit)
}

func formatNumber(v float64) string {
	if v < 10 {
		s := strconv.FormatFloat(v, 'f', 1, 64)
		return strings.TrimSuffix(s, ".0")
	}
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}

func annotate(line, metric string) string {
	return line + " (≈" + metric + ")"
}
