package evaluation

import (
	"sort"
	"strconv"
	"strings"
)

// StepResult 單一標註步驟的比對結果
type StepResult struct {
	StepID    string   `json:"stepId"`
	Expected  []string `json:"expected"`
	Predicted []string `json:"predicted"`
	Missed    []string `json:"missed,omitempty"` // 標註有、預測沒有
	Extra     []string `json:"extra,omitempty"`  // 預測有、標註沒有
	Counts
}

// compareStep 以集合差計算單一步驟的 TP/FP/FN，重複 ID 只算一次
func compareStep(stepID string, expected, predicted []string) StepResult {
	res := StepResult{
		StepID:    stepID,
		Expected:  nonNil(expected),
		Predicted: nonNil(predicted),
	}

	want := make(map[string]bool, len(expected))
	for _, id := range expected {
		want[id] = true
	}
	got := make(map[string]bool, len(predicted))
	for _, id := range predicted {
		if got[id] {
			continue
		}
		got[id] = true
		if want[id] {
			res.TP++
		} else {
			res.FP++
			res.Extra = append(res.Extra, id)
		}
	}
	seen := make(map[string]bool, len(expected))
	for _, id := range expected {
		if seen[id] {
			continue
		}
		seen[id] = true
		if !got[id] {
			res.FN++
			res.Missed = append(res.Missed, id)
		}
	}
	return res
}

// sortedStepIDs 依步驟編號排序（step-2 在 step-10 之前）
func sortedStepIDs(labels map[string][]string) []string {
	ids := make([]string, 0, len(labels))
	for id := range labels {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		ni, okI := stepNumber(ids[i])
		nj, okJ := stepNumber(ids[j])
		if okI && okJ && ni != nj {
			return ni < nj
		}
		if okI != okJ {
			return okI
		}
		return ids[i] < ids[j]
	})
	return ids
}

func stepNumber(id string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimPrefix(id, "step-"))
	if err != nil || !strings.HasPrefix(id, "step-") {
		return 0, false
	}
	return n, true
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
