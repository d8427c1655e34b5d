package resolve

import (
	"testing"

	"github.com/dofigen/dofigen-go/internal/descriptor"
)

func builderFrom(name string) descriptor.Stage {
	return descriptor.Stage{From: descriptor.FromContext{Kind: descriptor.FromBuilder, BuilderName: name}}
}

func TestTopologicalOrder_OrdersDependenciesFirst(t *testing.T) {
	builders := descriptor.Builders{
		{Name: "b", Stage: builderFrom("a")},
		{Name: "a", Stage: descriptor.Stage{From: descriptor.FromContext{Kind: descriptor.FromImage}}},
	}
	ordered, err := topologicalOrder(builders)
	if err != nil {
		t.Fatalf("topologicalOrder: %v", err)
	}
	if len(ordered) != 2 || ordered[0].Name != "a" || ordered[1].Name != "b" {
		t.Errorf("unexpected order: %+v", ordered)
	}
}

func TestTopologicalOrder_DetectsCycle(t *testing.T) {
	builders := descriptor.Builders{
		{Name: "a", Stage: builderFrom("b")},
		{Name: "b", Stage: builderFrom("a")},
	}
	_, err := topologicalOrder(builders)
	if err == nil {
		t.Fatal("expected a cycle error")
	}
}

func TestValidateReferences_RejectsForwardReference(t *testing.T) {
	d := descriptor.Descriptor{
		Builders: descriptor.Builders{
			{Name: "a", Stage: builderFrom("b")},
			{Name: "b", Stage: descriptor.Stage{From: descriptor.FromContext{Kind: descriptor.FromImage}}},
		},
	}
	if err := validateReferences(d); err == nil {
		t.Fatal("expected an UnknownReference error for a forward reference")
	}
}

func TestValidateReferences_AllowsBackwardReference(t *testing.T) {
	d := descriptor.Descriptor{
		Builders: descriptor.Builders{
			{Name: "a", Stage: descriptor.Stage{From: descriptor.FromContext{Kind: descriptor.FromImage}}},
			{Name: "b", Stage: builderFrom("a")},
		},
		Stage: builderFrom("b"),
	}
	if err := validateReferences(d); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidateNames_RejectsDuplicates(t *testing.T) {
	builders := descriptor.Builders{
		{Name: "a", Stage: descriptor.Stage{}},
		{Name: "a", Stage: descriptor.Stage{}},
	}
	if err := validateNames(builders); err == nil {
		t.Fatal("expected a duplicate-name error")
	}
}

func TestValidateNames_RejectsInvalidCharacters(t *testing.T) {
	builders := descriptor.Builders{{Name: "1bad", Stage: descriptor.Stage{}}}
	if err := validateNames(builders); err == nil {
		t.Fatal("expected an invalid-name error")
	}
}
