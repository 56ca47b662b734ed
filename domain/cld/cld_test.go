package cld

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"gosigtest/domain/core"
	"gosigtest/domain/siggraph"
	"gosigtest/domain/system"
	"gosigtest/internal/testkit"
)

func TestNumToLetters(t *testing.T) {
	tests := []struct {
		in   int
		want string
	}{
		{0, "a"},
		{1, "b"},
		{25, "z"},
		{26, "aa"},
		{27, "ab"},
		{51, "az"},
		{52, "ba"},
		{701, "zz"},
		{702, "aaa"},
		{-1, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NumToLetters(tt.in), "NumToLetters(%d)", tt.in)
	}
}

func TestNumToLetters_Bijective(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		a := rapid.IntRange(0, 1_000_000).Draw(rt, "a")
		b := rapid.IntRange(0, 1_000_000).Draw(rt, "b")
		la, lb := NumToLetters(a), NumToLetters(b)

		if (a == b) != (la == lb) {
			rt.Fatalf("NumToLetters(%d)=%q NumToLetters(%d)=%q", a, la, b, lb)
		}
		if a < b && len(la) > len(lb) {
			rt.Fatalf("length not monotone: %d→%q, %d→%q", a, la, b, lb)
		}
		if LettersToNum(la) != a {
			rt.Fatalf("LettersToNum(%q) = %d, want %d", la, LettersToNum(la), a)
		}
	})
}

func TestLettersToNum_Invalid(t *testing.T) {
	assert.Equal(t, -1, LettersToNum(""))
	assert.Equal(t, -1, LettersToNum("aB"))
	assert.Equal(t, 26, LettersToNum("aa"))
}

func TestBuild_ThreeSystems(t *testing.T) {
	m := testkit.MatrixFromPValues(
		[]float64{0.70, 0.80, 0.90},
		[][]float64{{0.20, 0.01}, {0.30}, {}},
	)
	eq, err := siggraph.BuildEquivalenceGraph(m, siggraph.DefaultThreshold)
	require.NoError(t, err)

	l := Build(eq)
	assert.Equal(t, [][]int{{0, 1}, {1, 2}}, l.Cliques)
	assert.Equal(t, [][]string{{"a"}, {"a", "b"}, {"b"}}, l.Letters)
	assert.Equal(t, "ab", l.Code(1))
	assert.True(t, l.ShareLetter(0, 1))
	assert.False(t, l.ShareLetter(0, 2))
}

func TestBuild_Degenerate(t *testing.T) {
	none, err := siggraph.NewGraph(3, nil)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"b"}, {"c"}}, Build(none).Letters)

	all, err := siggraph.NewGraph(3, [][2]int{{0, 1}, {0, 2}, {1, 2}})
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a"}, {"a"}, {"a"}}, Build(all).Letters)

	empty, err := siggraph.NewGraph(0, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, Build(empty).Systems())
}

func TestBuild_SharedLetterIffEquivalent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		n := rapid.IntRange(1, 10).Draw(rt, "n")
		var edges [][2]int
		for u := 0; u < n; u++ {
			for v := u + 1; v < n; v++ {
				if rapid.Bool().Draw(rt, "edge") {
					edges = append(edges, [2]int{u, v})
				}
			}
		}
		g, err := siggraph.NewGraph(n, edges)
		require.NoError(rt, err)
		l := Build(g)

		for i := 0; i < n; i++ {
			if len(l.Letters[i]) == 0 {
				rt.Fatalf("system %d has no letter", i)
			}
			for j := i + 1; j < n; j++ {
				if l.ShareLetter(i, j) != g.HasEdge(i, j) {
					rt.Fatalf("systems %d and %d: share=%v edge=%v", i, j, l.ShareLetter(i, j), g.HasEdge(i, j))
				}
			}
		}
	})
}

func TestNearBest_Scenario(t *testing.T) {
	scores := []float64{0.70, 0.95, 0.94, 0.50}
	g, err := siggraph.NewGraph(4, [][2]int{{1, 2}})
	require.NoError(t, err)

	best, expanded, err := NearBest(scores, g, DefaultMargin)
	require.NoError(t, err)
	assert.Equal(t, []int{1}, best)
	assert.Equal(t, []int{1, 2}, expanded)
}

func TestNearBest_SingleHop(t *testing.T) {
	// 0 is best, 1 is its neighbour, 2 only neighbours 1
	scores := []float64{0.9, 0.5, 0.4}
	g, err := siggraph.NewGraph(3, [][2]int{{0, 1}, {1, 2}})
	require.NoError(t, err)

	best, expanded, err := NearBest(scores, g, DefaultMargin)
	require.NoError(t, err)
	assert.Equal(t, []int{0}, best)
	assert.Equal(t, []int{0, 1}, expanded)
}

func TestNearBest_Ties(t *testing.T) {
	g, err := siggraph.NewGraph(3, nil)
	require.NoError(t, err)
	best, expanded, err := NearBest([]float64{0.8, 0.8, 0.1}, g, DefaultMargin)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1}, best)
	assert.Equal(t, best, expanded)
}

func TestNearBest_Errors(t *testing.T) {
	g, err := siggraph.NewGraph(2, nil)
	require.NoError(t, err)

	_, _, err = NearBest(nil, g, DefaultMargin)
	assert.ErrorIs(t, err, core.ErrInvalidSize)
	_, _, err = NearBest([]float64{0.1, 0.2, 0.3}, g, DefaultMargin)
	assert.ErrorIs(t, err, core.ErrLengthMismatch)
	_, _, err = NearBest([]float64{0.1, 0.2}, g, 0)
	assert.Error(t, err)
}

func TestIntersectHighlights(t *testing.T) {
	crf := func(corpus string) system.Descriptor {
		return system.Descriptor{Path: []string{"crf"}, Nick: "crf-" + corpus, Gold: corpus + ".key", TestCorpus: corpus}
	}
	svm := func(corpus string) system.Descriptor {
		return system.Descriptor{Path: []string{"svm"}, Nick: "svm-" + corpus, Gold: corpus + ".key", TestCorpus: corpus}
	}
	bert := system.Descriptor{Path: []string{"bert"}, Nick: "bert", Opts: map[string]string{"layers": "12"}}

	counts := IntersectHighlights([][]system.Descriptor{
		{crf("semcor"), svm("semcor")},
		{crf("senseval2"), bert},
		{crf("senseval3"), svm("senseval3"), crf("senseval3")},
	})

	require.Len(t, counts, 3)
	assert.Equal(t, []string{"crf"}, counts[0].System.Path)
	assert.Equal(t, 3, counts[0].Count)
	assert.Empty(t, counts[0].System.Gold)
	assert.Empty(t, counts[0].System.TestCorpus)
	assert.Equal(t, []string{"svm"}, counts[1].System.Path)
	assert.Equal(t, 2, counts[1].Count)
	assert.Equal(t, []string{"bert"}, counts[2].System.Path)
	assert.Equal(t, 1, counts[2].Count)

	assert.Empty(t, IntersectHighlights(nil))
}
