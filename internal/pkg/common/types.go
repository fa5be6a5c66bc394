package common

import "encoding/json"

// IngredientGroup 食材分組
// 食材 ID 由位置決定："{groupIndex}-{itemIndex}"
type IngredientGroup struct {
	Section string   `json:"section,omitempty"` // 分組標題（可省略）
	Items   []string `json:"items"`             // 原始食材行

	blankSection bool // 原始 JSON 帶有空字串 section
}

type ingredientGroupJSON struct {
	Section *string  `json:"section,omitempty"`
	Items   []string `json:"items"`
}

// MarshalJSON 保留輸入中出現過的空 section
func (g IngredientGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(ingredientGroupJSON{
		Section: optionalSection(g.Section, g.blankSection),
		Items:   g.Items,
	})
}

// UnmarshalJSON 記錄 section 是否以空字串出現
func (g *IngredientGroup) UnmarshalJSON(data []byte) error {
	var raw ingredientGroupJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*g = IngredientGroup{Items: raw.Items}
	if raw.Section != nil {
		g.Section = *raw.Section
		g.blankSection = *raw.Section == ""
	}
	return nil
}

// InstructionGroup 步驟分組
// 步驟 ID 跨所有分組連續編號："step-0"、"step-1"...
type InstructionGroup struct {
	Section string   `json:"section,omitempty"` // 分組標題（可省略）
	Steps   []string `json:"steps"`             // 原始步驟句子

	blankSection bool
}

type instructionGroupJSON struct {
	Section *string  `json:"section,omitempty"`
	Steps   []string `json:"steps"`
}

// MarshalJSON 保留輸入中出現過的空 section
func (g InstructionGroup) MarshalJSON() ([]byte, error) {
	return json.Marshal(instructionGroupJSON{
		Section: optionalSection(g.Section, g.blankSection),
		Steps:   g.Steps,
	})
}

// UnmarshalJSON 記錄 section 是否以空字串出現
func (g *InstructionGroup) UnmarshalJSON(data []byte) error {
	var raw instructionGroupJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*g = InstructionGroup{Steps: raw.Steps}
	if raw.Section != nil {
		g.Section = *raw.Section
		g.blankSection = *raw.Section == ""
	}
	return nil
}

func optionalSection(section string, blank bool) *string {
	if section == "" && !blank {
		return nil
	}
	return &section
}

// Mapping 步驟 ID 對應到依信心排序的食材 ID 列表
type Mapping map[string][]string

// Dataset 標註資料集格式（標註工具與評估工具共用，需可完整往返）
// 選填欄位出現但為空時（"title": ""、"expectedMatches": {}）原樣保留
type Dataset struct {
	ID              string              `json:"id"`
	Title           *string             `json:"title,omitempty"`
	Ingredients     []IngredientGroup   `json:"ingredients"`
	Instructions    []InstructionGroup  `json:"instructions"`
	ExpectedMatches map[string][]string `json:"expectedMatches,omitempty"`
}

// MarshalJSON 空但非 nil 的 expectedMatches 輸出為 {}
func (d Dataset) MarshalJSON() ([]byte, error) {
	type plain Dataset
	out := struct {
		plain
		ExpectedMatches *map[string][]string `json:"expectedMatches,omitempty"`
	}{plain: plain(d)}
	if d.ExpectedMatches != nil {
		out.ExpectedMatches = &d.ExpectedMatches
	}
	return json.Marshal(out)
}

// TitleText 標題；未提供時為空字串
func (d *Dataset) TitleText() string {
	if d == nil || d.Title == nil {
		return ""
	}
	return *d.Title
}

// HasLabels 檢查資料集是否有標註
func (d *Dataset) HasLabels() bool {
	return d != nil && len(d.ExpectedMatches) > 0
}

// CountIngredients 計算食材行總數
func CountIngredients(groups []IngredientGroup) int {
	total := 0
	for _, g := range groups {
		total += len(g.Items)
	}
	return total
}

// CountSteps 計算步驟總數
func CountSteps(groups []InstructionGroup) int {
	total := 0
	for _, g := range groups {
		total += len(g.Steps)
	}
	return total
}
