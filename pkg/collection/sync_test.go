package collection

import "testing"

func TestMergePatch(t *testing.T) {
	cur := item{ID: "2", Status: "pending", Note: "call back"}
	merged, err := MergePatch(cur, Patch{"status": "resolved", "note": nil})
	if err != nil {
		t.Fatalf("MergePatch: %v", err)
	}
	if merged.ID != "2" || merged.Status != "resolved" || merged.Note != "" {
		t.Errorf("unexpected merge result %+v", merged)
	}
	if cur.Status != "pending" {
		t.Error("MergePatch must not modify its input")
	}
}

func TestMergePatchTypeMismatch(t *testing.T) {
	if _, err := MergePatch(item{ID: "1"}, Patch{"status": 5}); err == nil {
		t.Error("expected error for number into string field")
	}
}

func TestPatchKeysSorted(t *testing.T) {
	p := Patch{"b": 1, "a": 2}
	keys := p.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Errorf("unexpected keys %v", keys)
	}
	if p.String() != `{"a":2,"b":1}` {
		t.Errorf("unexpected string %s", p.String())
	}
}
