package xcomposite

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ReduceTestSuite struct {
	suite.Suite
}

func (suite *ReduceTestSuite) TestMin() {
	suite.Run("ReturnsSmallest", func() {
		r, err := Min.Reduce([]any{3, 1, 2})
		suite.Nil(err)
		suite.Equal(1, r)
	})

	suite.Run("PreservesOriginalValue", func() {
		r, err := Min.Reduce([]any{2.5, int8(7)})
		suite.Nil(err)
		suite.Equal(2.5, r)
	})

	suite.Run("RequiresResults", func() {
		_, err := Min.Reduce(nil)
		suite.True(errors.Is(err, ErrNoResults))
	})

	suite.Run("RejectsNonNumeric", func() {
		_, err := Min.Reduce([]any{1, "two"})
		var reduction *ReductionError
		suite.True(errors.As(err, &reduction))
		suite.Equal("min", reduction.Policy())
	})
}

func (suite *ReduceTestSuite) TestMax() {
	r, err := Max.Reduce([]any{3, 1, 2})
	suite.Nil(err)
	suite.Equal(3, r)

	_, err = Max.Reduce([]any{})
	suite.True(errors.Is(err, ErrNoResults))
}

func (suite *ReduceTestSuite) TestSum() {
	suite.Run("Ints", func() {
		r, err := Sum.Reduce([]any{1, 2, 3})
		suite.Nil(err)
		suite.Equal(6, r)
	})

	suite.Run("MixedPromotesToFloat", func() {
		r, err := Sum.Reduce([]any{1, 2.5})
		suite.Nil(err)
		suite.Equal(3.5, r)
	})

	suite.Run("EmptyIsZero", func() {
		r, err := Sum.Reduce(nil)
		suite.Nil(err)
		suite.Equal(0, r)
	})
}

func (suite *ReduceTestSuite) TestAverage() {
	suite.Run("Mean", func() {
		r, err := Average.Reduce([]any{0, 10})
		suite.Nil(err)
		suite.Equal(5.0, r)
	})

	suite.Run("ZeroSumIsZeroNotError", func() {
		r, err := Average.Reduce([]any{0, 0})
		suite.Nil(err)
		suite.Equal(0, r)
	})

	suite.Run("EmptyIsNoValue", func() {
		r, err := Average.Reduce(nil)
		suite.Nil(err)
		suite.Nil(r)
	})
}

func (suite *ReduceTestSuite) TestRange() {
	r, err := Range.Reduce([]any{4, 9, 6})
	suite.Nil(err)
	suite.Equal(5.0, r)

	r, err = Range.Reduce([]any{7})
	suite.Nil(err)
	suite.Equal(0.0, r)

	_, err = Range.Reduce(nil)
	suite.True(errors.Is(err, ErrNoResults))
}

func (suite *ReduceTestSuite) TestFirstLast() {
	first, err := First.Reduce([]any{10, 5})
	suite.Nil(err)
	suite.Equal(10, first)

	last, err := Last.Reduce([]any{10, 5})
	suite.Nil(err)
	suite.Equal(5, last)

	none, err := First.Reduce(nil)
	suite.Nil(err)
	suite.Nil(none)
}

func (suite *ReduceTestSuite) TestAppend() {
	r, err := Append.Reduce([]any{"A", "B", "A"})
	suite.Nil(err)
	suite.Equal([]any{"A", "B", "A"}, r)
}

func (suite *ReduceTestSuite) TestAppendUnique() {
	r, err := AppendUnique.Reduce([]any{"X", "X", "Y"})
	suite.Nil(err)
	suite.ElementsMatch([]any{"X", "Y"}, r)
}

func (suite *ReduceTestSuite) TestExtend() {
	suite.Run("FlattensInOrder", func() {
		r, err := Extend.Reduce([]any{
			[]string{"a", "b"},
			[]string{"x", "y"},
		})
		suite.Nil(err)
		suite.Equal([]any{"a", "b", "x", "y"}, r)
	})

	suite.Run("KeepsDuplicates", func() {
		r, err := Extend.Reduce([]any{[]int{1}, []int{1}})
		suite.Nil(err)
		suite.Equal([]any{1, 1}, r)
	})

	suite.Run("RejectsNonSequence", func() {
		_, err := Extend.Reduce([]any{[]int{1}, 2})
		var reduction *ReductionError
		suite.True(errors.As(err, &reduction))
	})
}

func (suite *ReduceTestSuite) TestExtendUnique() {
	r, err := ExtendUnique.Reduce([]any{[]string{"a", "b"}, []string{"b", "c"}})
	suite.Nil(err)
	suite.ElementsMatch([]any{"a", "b", "c"}, r)
}

func (suite *ReduceTestSuite) TestUpdate() {
	suite.Run("MergesLeftToRight", func() {
		r, err := Update.Reduce([]any{
			map[string]any{"foo": 1, "bar": 1},
			map[string]any{"bar": 2},
		})
		suite.Nil(err)
		suite.Equal(map[string]any{"foo": 1, "bar": 2}, r)
	})

	suite.Run("ConvertsTypedMaps", func() {
		r, err := Update.Reduce([]any{map[string]int{"n": 3}})
		suite.Nil(err)
		suite.Equal(map[string]any{"n": 3}, r)
	})

	suite.Run("RejectsNonMap", func() {
		_, err := Update.Reduce([]any{42})
		var reduction *ReductionError
		suite.True(errors.As(err, &reduction))
	})
}

func (suite *ReduceTestSuite) TestBooleans() {
	truths := []any{0, 1}
	lies := []any{0, ""}

	suite.Run("AnyTrue", func() {
		r, _ := AnyTrue.Reduce(truths)
		suite.Equal(true, r)
		r, _ = AnyTrue.Reduce(lies)
		suite.Equal(false, r)
	})

	suite.Run("AnyFalse", func() {
		r, _ := AnyFalse.Reduce(truths)
		suite.Equal(false, r)
		r, _ = AnyFalse.Reduce([]any{1, true, "yes"})
		suite.Equal(true, r)
	})

	suite.Run("AbsoluteTrue", func() {
		r, _ := AbsoluteTrue.Reduce([]any{1, true, []int{1}})
		suite.Equal(true, r)
		r, _ = AbsoluteTrue.Reduce(truths)
		suite.Equal(false, r)
	})

	suite.Run("AbsoluteFalse", func() {
		r, _ := AbsoluteFalse.Reduce(lies)
		suite.Equal(false, r)
		r, _ = AbsoluteFalse.Reduce(truths)
		suite.Equal(true, r)
	})
}

func (suite *ReduceTestSuite) TestPolicyNamed() {
	p, ok := PolicyNamed("extend")
	suite.True(ok)
	suite.Same(Extend, p)

	_, ok = PolicyNamed("nonsense")
	suite.False(ok)
}

func TestReduceTestSuite(t *testing.T) {
	suite.Run(t, new(ReduceTestSuite))
}
