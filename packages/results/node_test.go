package results

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sample builds root -> test -> {step1 -> [a1, a2], step2 -> [a3]}.
func sample() *Node {
	root := New("tests")
	test := root.Add("login")
	s1 := test.Add("step1")
	s1.Add("status_code == 200")
	s1.Add("equals(token, abc)")
	test.Add("step2").Add("contains(name, bob)")
	return root
}

func TestNodeLen(t *testing.T) {
	assert.Equal(t, 1, New("x").Len())
	assert.Equal(t, 7, sample().Len())
}

func TestNodeStartsNotRun(t *testing.T) {
	sample().Walk(func(_ int, n *Node) {
		assert.Equal(t, NotRun, n.State, n.Name)
	})
}

func TestNodeAt(t *testing.T) {
	root := sample()

	n, err := root.At([]int{0, 1, 0})
	require.NoError(t, err)
	assert.Equal(t, "contains(name, bob)", n.Name)

	n, err = root.At(nil)
	require.NoError(t, err)
	assert.Same(t, root, n)

	for _, path := range [][]int{{1}, {0, 2}, {0, 0, 5}, {-1}, {0, 1, 0, 0}} {
		_, err := root.At(path)
		assert.ErrorIs(t, err, ErrInvalidPath, "%v", path)
	}
}

func TestNodeUpdate(t *testing.T) {
	root := sample()

	require.NoError(t, root.Update([]int{0, 0, 1}, Failed("body 'token' got 'x', want 'abc'"), 5*time.Millisecond))

	n := root.Find("tests", "login", "step1", "equals(token, abc)")
	require.NotNil(t, n)
	assert.True(t, n.State.IsFailed())
	assert.Equal(t, "body 'token' got 'x', want 'abc'", n.State.Reason)
	assert.Equal(t, 5*time.Millisecond, n.Duration)

	assert.ErrorIs(t, root.Update([]int{3}, Passed, 0), ErrInvalidPath)
}

func TestNodeComplete(t *testing.T) {
	t.Run("all passed", func(t *testing.T) {
		root := sample()
		require.NoError(t, root.Update([]int{0, 0, 0}, Passed, 0))
		require.NoError(t, root.Update([]int{0, 0, 1}, Passed, 0))
		require.NoError(t, root.Update([]int{0, 1, 0}, Passed, 0))
		require.NoError(t, root.Complete(nil, time.Second))

		assert.Equal(t, Passed, root.State)
		assert.Equal(t, Passed, root.Children[0].State)
		assert.Equal(t, Passed, root.Children[0].Children[1].State)
		assert.Equal(t, time.Second, root.Duration)
		assert.False(t, root.Failed())
	})

	t.Run("failed leaf propagates", func(t *testing.T) {
		root := sample()
		require.NoError(t, root.Update([]int{0, 0, 0}, Passed, 0))
		require.NoError(t, root.Update([]int{0, 0, 1}, Failed("nope"), 0))
		require.NoError(t, root.Update([]int{0, 1, 0}, Passed, 0))

		require.NoError(t, root.Complete([]int{0, 0}, 0))
		assert.Equal(t, Failed(DependentFailure), root.Children[0].Children[0].State)
		assert.Equal(t, NotRun, root.Children[0].State)

		require.NoError(t, root.Complete(nil, 0))
		assert.Equal(t, Failed(DependentFailure), root.Children[0].State)
		assert.Equal(t, Passed, root.Children[0].Children[1].State)
		assert.Equal(t, Failed(DependentFailure), root.State)
		assert.True(t, root.Failed())
	})

	t.Run("leaf is untouched", func(t *testing.T) {
		root := sample()
		require.NoError(t, root.Update([]int{0, 0, 0}, Failed("x"), 0))
		require.NoError(t, root.Complete([]int{0, 0, 0}, 0))
		assert.Equal(t, Failed("x"), root.Children[0].Children[0].Children[0].State)
	})
}

func TestNodeFind(t *testing.T) {
	root := New("r")
	first := root.Add("dup")
	root.Add("dup")

	assert.Same(t, first, root.Find("r", "dup"))
	assert.Same(t, root, root.Find("r"))
	assert.Nil(t, root.Find("other"))
	assert.Nil(t, root.Find("r", "missing"))
	assert.Nil(t, root.Find())
}

func TestNodeLeaves(t *testing.T) {
	root := sample()
	require.NoError(t, root.Update([]int{0, 0, 0}, Passed, 0))
	require.NoError(t, root.Update([]int{0, 0, 1}, Failed("x"), 0))

	counts := root.Leaves()
	assert.Equal(t, 1, counts[KindPassed])
	assert.Equal(t, 1, counts[KindFailed])
	assert.Equal(t, 1, counts[KindNotRun])
}

func TestStateGlyph(t *testing.T) {
	assert.Equal(t, "⏸", NotRun.Glyph())
	assert.Equal(t, "🏃", Running.Glyph())
	assert.Equal(t, "✅", Passed.Glyph())
	assert.Equal(t, "❌", Failed("x").Glyph())
}
