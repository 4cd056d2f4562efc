package registry

import (
	"reflect"
	"testing"

	"component-schema-service/internal/domain"
)

func testDefinitions() []domain.ComponentDefinition {
	return []domain.ComponentDefinition{
		{ID: "trust", Name: "Trust", Category: "trust"},
		{ID: "trust.providers", Name: "Trust Providers", Category: "trust", ManagesSchema: true},
		{ID: "trust.benefits.scan", Name: "Benefit Scanning", Category: "trust", ManagesSchema: true},
		{ID: "ledger.billing", Name: "Billing", Category: "ledger", ManagesSchema: true},
	}
}

func TestComponentRegistry_GetByID(t *testing.T) {
	r := NewComponentRegistry(testDefinitions())

	def := r.GetByID("trust.providers")
	if def == nil {
		t.Fatal("expected definition, got nil")
	}
	if def.Name != "Trust Providers" {
		t.Errorf("want Trust Providers, got %s", def.Name)
	}

	if r.GetByID("unknown.component") != nil {
		t.Error("expected nil for unknown ID")
	}
}

func TestComponentRegistry_GetByCategory(t *testing.T) {
	r := NewComponentRegistry(testDefinitions())

	trust := r.GetByCategory("trust")
	if len(trust) != 3 {
		t.Errorf("want 3 trust components, got %d", len(trust))
	}

	if got := r.GetByCategory("nonexistent"); len(got) != 0 {
		t.Errorf("want empty result, got %d", len(got))
	}
}

func TestComponentRegistry_GetAll_ReturnsCopy(t *testing.T) {
	r := NewComponentRegistry(testDefinitions())

	all := r.GetAll()
	if len(all) != 4 {
		t.Fatalf("want 4 definitions, got %d", len(all))
	}

	// 返されたスライスを書き換えてもレジストリには影響しない
	all[0].Name = "mutated"
	if r.GetByID("trust").Name != "Trust" {
		t.Error("GetAll did not return a copy")
	}
}

func TestParentID(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"a.b.c", "a.b"},
		{"a.b", "a"},
		{"a", ""},
		{"trust.benefits.scan", "trust.benefits"},
	}
	for _, tt := range tests {
		if got := ParentID(tt.id); got != tt.want {
			t.Errorf("ParentID(%q) = %q, want %q", tt.id, got, tt.want)
		}
	}
}

func TestAncestorIDs(t *testing.T) {
	got := AncestorIDs("a.b.c")
	want := []string{"a.b", "a"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AncestorIDs(a.b.c) = %v, want %v", got, want)
	}

	if got := AncestorIDs("a"); len(got) != 0 {
		t.Errorf("AncestorIDs(a) = %v, want empty", got)
	}

	// 祖先がレジストリに登録されている必要はない（純粋な文字列操作）
	got = AncestorIDs("x.y.z.w")
	want = []string{"x.y.z", "x.y", "x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("AncestorIDs(x.y.z.w) = %v, want %v", got, want)
	}
}
