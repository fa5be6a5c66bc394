package evaluation

// Counts 真陽性、假陽性、假陰性計數
type Counts struct {
	TP int `json:"tp"`
	FP int `json:"fp"`
	FN int `json:"fn"`
}

// Add 累加計數
func (c Counts) Add(o Counts) Counts {
	return Counts{TP: c.TP + o.TP, FP: c.FP + o.FP, FN: c.FN + o.FN}
}

// Metrics 精確率、召回率與 F1
type Metrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Score 由計數計算指標
// 分母為 0 時 precision/recall 視為 1；兩者皆為 0 時 F1 為 0
func (c Counts) Score() Metrics {
	p := ratio(c.TP, c.TP+c.FP)
	r := ratio(c.TP, c.TP+c.FN)
	return Metrics{Precision: p, Recall: r, F1: harmonicMean(p, r)}
}

func ratio(num, den int) float64 {
	if den == 0 {
		return 1
	}
	return float64(num) / float64(den)
}

func harmonicMean(p, r float64) float64 {
	if p+r == 0 {
		return 0
	}
	return 2 * p * r / (p + r)
}

// macroAverage 各食譜指標的算術平均；沒有資料時全為 0
func macroAverage(ms []Metrics) Metrics {
	if len(ms) == 0 {
		return Metrics{}
	}
	var sum Metrics
	for _, m := range ms {
		sum.Precision += m.Precision
		sum.Recall += m.Recall
		sum.F1 += m.F1
	}
	n := float64(len(ms))
	return Metrics{Precision: sum.Precision / n, Recall: sum.Recall / n, F1: sum.F1 / n}
}
