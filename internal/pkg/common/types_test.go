package common

import (
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// assertRoundTrip 解析後再序列化，比較兩份 JSON 的結構是否一致
func assertRoundTrip(t *testing.T, in []byte) {
	t.Helper()
	var ds Dataset
	if err := ParseJSONBytes(in, &ds); err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := json.Marshal(ds)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var want, got interface{}
	if err := json.Unmarshal(in, &want); err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip changed the document\n in: %s\nout: %s", in, out)
	}
}

func TestDatasetRoundTrip(t *testing.T) {
	tests := map[string]string{
		"present but empty": `{"id":"r1","title":"","ingredients":[{"section":"","items":["1 egg"]}],` +
			`"instructions":[{"section":"","steps":["Fry the egg."]}],"expectedMatches":{}}`,
		"optional keys absent": `{"id":"r2","ingredients":[{"items":["1 egg"]}],"instructions":[{"steps":["Fry the egg."]}]}`,
		"labeled with empty step": `{"id":"r3","title":"Eggs","ingredients":[{"section":"Base","items":["1 egg"]}],` +
			`"instructions":[{"steps":["Fry the egg.","Serve."]}],"expectedMatches":{"step-0":["0-0"],"step-1":[]}}`,
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			assertRoundTrip(t, []byte(in))
		})
	}

	files, err := filepath.Glob(filepath.Join("..", "..", "core", "evaluation", "testdata", "datasets", "0[1-3]-*.json"))
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 3 {
		t.Fatalf("found %d dataset fixtures, want 3", len(files))
	}
	for _, path := range files {
		t.Run(filepath.Base(path), func(t *testing.T) {
			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatal(err)
			}
			assertRoundTrip(t, data)
		})
	}
}

func TestDatasetLabels(t *testing.T) {
	var unlabeled Dataset
	if err := ParseJSON(`{"id":"r","ingredients":[],"instructions":[],"expectedMatches":{}}`, &unlabeled); err != nil {
		t.Fatal(err)
	}
	if unlabeled.HasLabels() || unlabeled.ExpectedMatches == nil {
		t.Errorf("empty expectedMatches should parse as a non-nil map without labels: %#v", unlabeled.ExpectedMatches)
	}
	if unlabeled.TitleText() != "" {
		t.Errorf("TitleText() = %q, want empty", unlabeled.TitleText())
	}

	title := "Pancakes"
	labeled := Dataset{ID: "p", Title: &title, ExpectedMatches: map[string][]string{"step-0": {"0-0"}}}
	if !labeled.HasLabels() || labeled.TitleText() != "Pancakes" {
		t.Errorf("labeled dataset: HasLabels=%v TitleText=%q", labeled.HasLabels(), labeled.TitleText())
	}
}
