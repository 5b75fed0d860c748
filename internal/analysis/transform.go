package analysis

import (
	"math"
	"sort"

	"phenoscreen/domain/core"
)

// TransformFunc is an element-wise, deterministic count transform
type TransformFunc func(float64) float64

// transforms maps transform identifiers to implementations. All entries
// must be monotonic so that score signs survive the transform.
var transforms = map[string]TransformFunc{
	"log2(x+1)": func(x float64) float64 { return math.Log2(x + 1) },
}

// ApplyTransform applies the named transform to every value, returning a
// fresh slice. Unknown identifiers fail with ErrUnsupportedTransform.
func ApplyTransform(name string, values []float64) ([]float64, error) {
	fn, ok := transforms[name]
	if !ok {
		return nil, core.NewUnsupportedTransformError(name)
	}
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = fn(v)
	}
	return out, nil
}

// SupportedTransforms lists the registered transform identifiers
func SupportedTransforms() []string {
	names := make([]string, 0, len(transforms))
	for name := range transforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
