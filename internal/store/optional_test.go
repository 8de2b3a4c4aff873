package store

import (
	"encoding/json"
	"testing"
)

func TestOptional_ThreeWayDistinction(t *testing.T) {
	type payload struct {
		Content Optional[string] `json:"content"`
	}

	var absent payload
	if err := json.Unmarshal([]byte(`{}`), &absent); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if absent.Content.Set {
		t.Fatal("expected absent key to leave Set false")
	}

	var null payload
	if err := json.Unmarshal([]byte(`{"content": null}`), &null); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !null.Content.Set || null.Content.Value != nil {
		t.Fatalf("expected explicit null to set with nil value, got %+v", null.Content)
	}

	var present payload
	if err := json.Unmarshal([]byte(`{"content": "hello"}`), &present); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !present.Content.Set || present.Content.Value == nil || *present.Content.Value != "hello" {
		t.Fatalf("expected present value, got %+v", present.Content)
	}
}
