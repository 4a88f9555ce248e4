package template

import (
	"reflect"
	"testing"
)

func TestParseBody_ValidJSON(t *testing.T) {
	doc, ok := ParseBody([]byte(`{"a": 1, "b": {"c": "x"}}`))
	if !ok {
		t.Fatal("expected valid JSON")
	}
	m, ok := doc.(map[string]any)
	if !ok {
		t.Fatalf("expected map, got %T", doc)
	}
	if m["a"] != float64(1) {
		t.Errorf("expected a=1, got %v", m["a"])
	}
}

func TestParseBody_InvalidJSON(t *testing.T) {
	if _, ok := ParseBody([]byte("<html>not json</html>")); ok {
		t.Error("expected invalid JSON")
	}
}

func TestResolve_ExactMatch(t *testing.T) {
	doc := map[string]any{"a": map[string]any{"b": map[string]any{"c": float64(5)}}}

	val, ok := Resolve(doc, "a.b.c")
	if !ok {
		t.Fatal("expected resolution to succeed")
	}
	if val != float64(5) {
		t.Errorf("expected 5, got %v", val)
	}
}

func TestResolve_CaseInsensitiveFallback(t *testing.T) {
	doc := map[string]any{"a": map[string]any{"B": map[string]any{"c": float64(5)}}}

	val, ok := Resolve(doc, "a.b.c")
	if !ok {
		t.Fatal("expected case-insensitive fallback to succeed")
	}
	if val != float64(5) {
		t.Errorf("expected 5, got %v", val)
	}
}

func TestResolve_ExactWinsOverCaseInsensitive(t *testing.T) {
	doc := map[string]any{"Key": "upper", "key": "lower"}

	val, ok := Resolve(doc, "key")
	if !ok || val != "lower" {
		t.Errorf("expected exact match %q, got %v", "lower", val)
	}
}

func TestResolve_MissingSegment(t *testing.T) {
	doc := map[string]any{"a": map[string]any{"b": float64(1)}}

	if _, ok := Resolve(doc, "a.z"); ok {
		t.Error("expected resolution to fail")
	}
}

func TestResolve_NonMappingCursor(t *testing.T) {
	doc := map[string]any{"a": []any{float64(1), float64(2)}}

	if _, ok := Resolve(doc, "a.b"); ok {
		t.Error("expected failure when cursor is not a mapping")
	}
}

func TestResolve_PlainKey(t *testing.T) {
	doc := map[string]any{"origin": "1.2.3.4"}

	val, ok := Resolve(doc, "origin")
	if !ok || val != "1.2.3.4" {
		t.Errorf("expected 1.2.3.4, got %v", val)
	}
}

func TestResolve_TerminalContainer(t *testing.T) {
	inner := map[string]any{"x": float64(1)}
	doc := map[string]any{"data": inner}

	val, ok := Resolve(doc, "data")
	if !ok {
		t.Fatal("expected resolution to succeed")
	}
	if !reflect.DeepEqual(val, inner) {
		t.Errorf("expected nested container returned as-is, got %v", val)
	}
}

func TestExtract_MixedRules(t *testing.T) {
	doc, ok := ParseBody([]byte(`{"a": {"B": {"c": 5}}, "origin": "1.2.3.4"}`))
	if !ok {
		t.Fatal("expected valid JSON")
	}

	got := Extract(doc, map[string]string{
		"x":  "a.b.c",
		"ip": "origin",
		"y":  "a.z",
	})

	if got["x"] != float64(5) {
		t.Errorf("expected x=5, got %v", got["x"])
	}
	if got["ip"] != "1.2.3.4" {
		t.Errorf("expected ip=1.2.3.4, got %v", got["ip"])
	}
	if _, present := got["y"]; present {
		t.Error("unresolved rule must contribute nothing")
	}
}

func TestExtract_JSONPathRule(t *testing.T) {
	doc, ok := ParseBody([]byte(`{"items": [{"id": 7}, {"id": 8}]}`))
	if !ok {
		t.Fatal("expected valid JSON")
	}

	got := Extract(doc, map[string]string{"first": "$.items[0].id"})
	if got["first"] != float64(7) {
		t.Errorf("expected first=7, got %v", got["first"])
	}
}

func TestExtract_NullValueSkipped(t *testing.T) {
	doc, _ := ParseBody([]byte(`{"a": null}`))

	got := Extract(doc, map[string]string{"x": "a"})
	if _, present := got["x"]; present {
		t.Error("null value must not be extracted")
	}
}

func TestExtract_NonMappingDocument(t *testing.T) {
	doc, _ := ParseBody([]byte(`[1, 2, 3]`))

	got := Extract(doc, map[string]string{"x": "a"})
	if len(got) != 0 {
		t.Errorf("expected no extraction from array document, got %v", got)
	}
}

func TestExtract_EmptyRules(t *testing.T) {
	if got := Extract(map[string]any{"a": 1}, nil); got != nil {
		t.Errorf("expected nil for empty rules, got %v", got)
	}
}
