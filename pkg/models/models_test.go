package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestWebResultSet_PreservesCategoryOrder(t *testing.T) {
	set := NewWebResultSet()
	set.Add("general", WebResult{Title: "a"})
	set.Add("tools", WebResult{Title: "b"})
	set.Add("ecosystem", WebResult{Title: "c"})
	set.Add("general", WebResult{Title: "d"}) // existing category keeps its slot

	got := set.Categories()
	want := []string{"general", "tools", "ecosystem"}
	if len(got) != len(want) {
		t.Fatalf("expected %d categories, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("category %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if len(set.Get("general")) != 2 {
		t.Errorf("expected 2 general results, got %d", len(set.Get("general")))
	}
	if set.Len() != 4 {
		t.Errorf("expected total 4 results, got %d", set.Len())
	}
}

func TestWebResultSet_JSONRoundTrip(t *testing.T) {
	set := NewWebResultSet()
	set.Add("zeta", WebResult{Title: "z", URL: "https://z.example", Score: 0.9})
	set.Add("alpha", WebResult{Title: "a", URL: "https://a.example", Score: 0.5})

	data, err := json.Marshal(set)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	// zeta was inserted first and must serialize first, even though maps
	// would sort alpha ahead of it.
	if zi, ai := strings.Index(string(data), `"zeta"`), strings.Index(string(data), `"alpha"`); zi < 0 || ai < 0 || zi > ai {
		t.Errorf("categories serialized out of insertion order: %s", data)
	}

	var decoded WebResultSet
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	cats := decoded.Categories()
	if len(cats) != 2 || cats[0] != "zeta" || cats[1] != "alpha" {
		t.Errorf("round-trip lost order: %v", cats)
	}
	if got := decoded.Get("zeta")[0].Title; got != "z" {
		t.Errorf("expected title z, got %q", got)
	}
}

func TestResult_MarshalActiveArm(t *testing.T) {
	success := Success(&Taxonomy{EcosystemName: "agentic AI", Overview: "o"})
	data, err := json.Marshal(success)
	if err != nil {
		t.Fatalf("marshal success failed: %v", err)
	}
	if !strings.Contains(string(data), `"ecosystem_name":"agentic AI"`) {
		t.Errorf("success result should serialize the taxonomy: %s", data)
	}
	if strings.Contains(string(data), `"error"`) {
		t.Errorf("success result must not contain an error key: %s", data)
	}

	failure := Failed(&ErrorResult{Message: "Failed to parse taxonomy", RawResponse: "not json at all"})
	data, err = json.Marshal(failure)
	if err != nil {
		t.Fatalf("marshal failure failed: %v", err)
	}
	want := `{"error":"Failed to parse taxonomy","raw_response":"not json at all"}`
	if string(data) != want {
		t.Errorf("expected %s, got %s", want, data)
	}
}

func TestResult_OK(t *testing.T) {
	if !Success(&Taxonomy{}).OK() {
		t.Error("success result should report OK")
	}
	if Failed(&ErrorResult{Message: "x"}).OK() {
		t.Error("failure result should not report OK")
	}
	if (Result{}).OK() {
		t.Error("zero result should not report OK")
	}
}
