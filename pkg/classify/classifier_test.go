package classify

import (
	"math/rand"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/cluso-bindstat/pkg/algorithms"
	"github.com/dd0wney/cluso-bindstat/pkg/binding"
	"github.com/dd0wney/cluso-bindstat/pkg/errs"
	"github.com/dd0wney/cluso-bindstat/pkg/moltype"
)

func classifyAll(t *testing.T, c *Classifier, edges []binding.Edge) []Result {
	t.Helper()
	g := algorithms.Build(edges)
	var out []Result
	for _, comp := range algorithms.ConnectedComponents(g).Components {
		res, err := c.Classify(comp, g)
		require.NoError(t, err)
		if res.OK {
			out = append(out, res)
		}
	}
	return out
}

func TestClassString(t *testing.T) {
	tests := []struct {
		class Class
		want  string
	}{
		{Free, "Free"},
		{SingletonA, "SingletonA"},
		{SingletonB, "SingletonB"},
		{SingletonAB, "SingletonAB"},
		{Mer(2), "2mer"},
		{Mer(17), "17mer"},
	}
	for _, tt := range tests {
		if got := tt.class.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.class), got, tt.want)
		}
		back, err := ParseClass(tt.want)
		if err != nil || back != tt.class {
			t.Errorf("ParseClass(%q) = %v, %v", tt.want, back, err)
		}
	}

	if Mer(2).Column() != 4 || Mer(5).MerSize() != 5 {
		t.Errorf("unexpected mer column layout: %d %d", Mer(2).Column(), Mer(5).MerSize())
	}
	for _, bad := range []string{"1mer", "+2mer", "-3mer", " 2mer", "mer", "2mers"} {
		if _, err := ParseClass(bad); err == nil {
			t.Errorf("ParseClass(%q) should fail", bad)
		}
	}
}

// TestClassifySingletonAB covers the line (1,1,2,2),(1,2,3,4); with receptor id 1
func TestClassifySingletonAB(t *testing.T) {
	types, err := moltype.New([]int{1, 2}, 4)
	require.NoError(t, err)

	edges, err := binding.NewParser(binding.FormatFlat).Parse("(1,1,2,2),(1,2,3,4);")
	require.NoError(t, err)

	results := classifyAll(t, New(types).WithSites(1, 2), edges)
	require.Len(t, results, 1)
	assert.Equal(t, SingletonAB, results[0].Class)
	assert.Equal(t, 1, results[0].Receptors)
}

// TestClassifyDuplicateSiteIsSingleSite checks two edges on the same site never count as both sites
func TestClassifyDuplicateSiteIsSingleSite(t *testing.T) {
	types, err := moltype.ReceptorsThenLigands(10, 20)
	require.NoError(t, err)

	edges := []binding.Edge{
		{Mol1: 3, Site1: 0, Mol2: 11, Site2: 2},
		{Mol1: 3, Site1: 0, Mol2: 12, Site2: 5},
	}
	results := classifyAll(t, New(types), edges)
	require.Len(t, results, 1)
	assert.Equal(t, SingletonA, results[0].Class)
}

func TestClassifySingletonFromReverseEdges(t *testing.T) {
	types, _ := moltype.ReceptorsThenLigands(10, 20)

	// receptor 3 never appears as a first endpoint
	edges := []binding.Edge{
		{Mol1: 11, Site1: 0, Mol2: 3, Site2: 1},
	}
	results := classifyAll(t, New(types), edges)
	require.Len(t, results, 1)
	assert.Equal(t, SingletonB, results[0].Class)
}

func TestClassifyMerAndLigandOnly(t *testing.T) {
	types, _ := moltype.ReceptorsThenLigands(10, 20)

	edges := binding.Symmetrize([]binding.Edge{
		{Mol1: 0, Site1: 0, Mol2: 10, Site2: 0},
		{Mol1: 1, Site1: 1, Mol2: 10, Site2: 1},
		{Mol1: 2, Site1: 0, Mol2: 10, Site2: 2},
		{Mol1: 14, Site1: 0, Mol2: 15, Site2: 0},
	})
	g := algorithms.Build(edges)
	result := algorithms.ConnectedComponents(g)
	require.Len(t, result.Components, 2)

	merRes, err := New(types).Classify(result.Components[0], g)
	require.NoError(t, err)
	assert.True(t, merRes.OK)
	assert.Equal(t, Mer(3), merRes.Class)
	assert.Equal(t, 3, merRes.Receptors)

	ligRes, err := New(types).Classify(result.Components[1], g)
	require.NoError(t, err)
	assert.False(t, ligRes.OK)
}

func TestClassifyErrors(t *testing.T) {
	types, _ := moltype.ReceptorsThenLigands(10, 20)

	t.Run("id outside ranges", func(t *testing.T) {
		g := algorithms.Build([]binding.Edge{{Mol1: 3, Site1: 0, Mol2: 25, Site2: 0}})
		comp := algorithms.ConnectedComponents(g).Components[0]
		_, err := New(types).Classify(comp, g)
		assert.True(t, errs.IsInvariant(err), "got %v", err)
	})

	t.Run("neither site bound", func(t *testing.T) {
		g := algorithms.Build([]binding.Edge{{Mol1: 3, Site1: 7, Mol2: 12, Site2: 0}})
		comp := algorithms.ConnectedComponents(g).Components[0]
		_, err := New(types).Classify(comp, g)
		assert.True(t, errs.IsInvariant(err), "got %v", err)
	})
}

// TestClassifyOrderIndependence shuffles the edges of random single-receptor
// and multi-receptor aggregates and checks the classes never change.
func TestClassifyOrderIndependence(t *testing.T) {
	types, _ := moltype.ReceptorsThenLigands(5, 15)
	c := New(types)

	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("classes are invariant to edge order", prop.ForAll(
		func(seed int64, n int) bool {
			rng := rand.New(rand.NewSource(seed))
			edges := make([]binding.Edge, 0, n)
			for i := 0; i < n; i++ {
				edges = append(edges, binding.Edge{
					Mol1:  rng.Intn(5),
					Site1: rng.Intn(2),
					Mol2:  5 + rng.Intn(10),
					Site2: rng.Intn(4),
				})
			}
			edges = binding.Symmetrize(edges)

			want := histogramOf(t, c, edges)
			rng.Shuffle(len(edges), func(i, j int) { edges[i], edges[j] = edges[j], edges[i] })
			got := histogramOf(t, c, edges)

			if len(want) != len(got) {
				return false
			}
			for k, v := range want {
				if got[k] != v {
					return false
				}
			}
			return true
		},
		gen.Int64(),
		gen.IntRange(1, 30),
	))

	properties.TestingRun(t)
}

func histogramOf(t *testing.T, c *Classifier, edges []binding.Edge) map[Class]int {
	counts := make(map[Class]int)
	for _, res := range classifyAll(t, c, edges) {
		counts[res.Class] += res.Receptors
	}
	return counts
}
