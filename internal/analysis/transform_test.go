package analysis

import (
	"errors"
	"math"
	"testing"

	"phenoscreen/domain/core"
)

func TestApplyTransform_Log2PlusOne(t *testing.T) {
	got, err := ApplyTransform("log2(x+1)", []float64{0, 1, 3, 1023})
	if err != nil {
		t.Fatalf("ApplyTransform failed: %v", err)
	}
	want := []float64{0, 1, 2, 10}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-12 {
			t.Errorf("got[%d] = %g, want %g", i, got[i], want[i])
		}
	}
}

func TestApplyTransform_DoesNotAliasInput(t *testing.T) {
	in := []float64{1, 3}
	out, err := ApplyTransform("log2(x+1)", in)
	if err != nil {
		t.Fatalf("ApplyTransform failed: %v", err)
	}
	out[0] = 99
	if in[0] != 1 {
		t.Error("transform must return a fresh slice")
	}
}

func TestApplyTransform_Unsupported(t *testing.T) {
	_, err := ApplyTransform("sqrt", []float64{1})
	if !errors.Is(err, core.ErrUnsupportedTransform) {
		t.Fatalf("expected ErrUnsupportedTransform, got %v", err)
	}
}

func TestSupportedTransforms(t *testing.T) {
	names := SupportedTransforms()
	if len(names) == 0 {
		t.Fatal("no transforms registered")
	}
	found := false
	for _, n := range names {
		if n == "log2(x+1)" {
			found = true
		}
	}
	if !found {
		t.Errorf("log2(x+1) missing from %v", names)
	}
}

func TestLogRelativeAbundance_SumsToOne(t *testing.T) {
	transformed, err := ApplyTransform("log2(x+1)", []float64{10, 200, 3000, 0})
	if err != nil {
		t.Fatalf("ApplyTransform failed: %v", err)
	}
	abund := LogRelativeAbundance(transformed)

	total := 0.0
	for _, a := range abund {
		total += math.Exp2(a)
	}
	if math.Abs(total-1) > 1e-12 {
		t.Errorf("linear abundances sum to %g, want 1", total)
	}
}

func TestLogRelativeAbundance_DepthInvariantRatios(t *testing.T) {
	// Doubling every count shifts all abundances by the same amount, so
	// pairwise differences (log ratios) are depth independent.
	shallow := LogRelativeAbundance([]float64{4, 6, 8})
	deep := LogRelativeAbundance([]float64{5, 7, 9}) // +1 in log2 space = doubled

	for i := 1; i < len(shallow); i++ {
		dShallow := shallow[i] - shallow[0]
		dDeep := deep[i] - deep[0]
		if math.Abs(dShallow-dDeep) > 1e-12 {
			t.Errorf("ratio %d drifted with depth: %g vs %g", i, dShallow, dDeep)
		}
	}
}
