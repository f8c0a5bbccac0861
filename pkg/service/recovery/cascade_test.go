package recovery_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/casewright/pkg/domain/model"
	"github.com/secmon-lab/casewright/pkg/domain/types"
	"github.com/secmon-lab/casewright/pkg/service/recovery"
)

type strategySpy struct {
	calls int
	fn    recovery.Strategy
}

func (s *strategySpy) run(text string) ([]model.Candidate, error) {
	s.calls++
	return s.fn(text)
}

func TestEngine_Recover(t *testing.T) {
	t.Run("strict JSON is decoded by the first strategy only", func(t *testing.T) {
		lenient := &strategySpy{fn: recovery.ParseLenient}
		array := &strategySpy{fn: recovery.ParseArrayScoped}
		anchored := &strategySpy{fn: recovery.ExtractAnchored}
		engine := recovery.NewEngineForTest(recovery.DefaultExcerptLimit, lenient.run, array.run, anchored.run)

		result, err := engine.Recover(t.Context(), strictResponse)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Strategy).Equal(types.RecoveryStrategyLenient)
		gt.Array(t, result.Candidates).Length(2)

		gt.Number(t, lenient.calls).Equal(1)
		gt.Number(t, array.calls).Equal(0)
		gt.Number(t, anchored.calls).Equal(0)
	})

	t.Run("partial corruption falls through to the array scoped strategy", func(t *testing.T) {
		result, err := recovery.New().Recover(t.Context(), partiallyCorruptResponse)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Strategy).Equal(types.RecoveryStrategyArrayScoped)
		gt.Array(t, result.Candidates).Length(1).Required()
		gt.Value(t, result.Candidates[0]["Test_ID"]).Equal(any("TC-001"))
	})

	t.Run("prose falls through to the anchored strategy", func(t *testing.T) {
		result, err := recovery.New().Recover(t.Context(), proseResponse)
		gt.NoError(t, err).Required()
		gt.Value(t, result.Strategy).Equal(types.RecoveryStrategyAnchored)
		gt.Array(t, result.Candidates).Length(2)
	})

	t.Run("strategies are not merged", func(t *testing.T) {
		second := &strategySpy{fn: func(string) ([]model.Candidate, error) {
			return []model.Candidate{{"Test_ID": "from-second"}}, nil
		}}
		third := &strategySpy{fn: func(string) ([]model.Candidate, error) {
			return []model.Candidate{{"Test_ID": "from-third"}}, nil
		}}
		engine := recovery.NewEngineForTest(10, recovery.ParseLenient, second.run, third.run)

		result, err := engine.Recover(t.Context(), "not json")
		gt.NoError(t, err).Required()
		gt.Array(t, result.Candidates).Length(1).Required()
		gt.Value(t, result.Candidates[0]["Test_ID"]).Equal(any("from-second"))
		gt.Number(t, third.calls).Equal(0)
	})

	t.Run("total failure carries a bounded excerpt", func(t *testing.T) {
		text := strings.Repeat("the model rambled without structure. ", 200)
		_, err := recovery.New().Recover(t.Context(), text)
		gt.Error(t, err).Is(model.ErrDecodeFailure)
		gt.Value(t, model.KindOf(err)).Equal(types.ErrorKindDecodeFailure)

		excerpt := model.ExcerptOf(err)
		gt.Number(t, len([]rune(excerpt))).Equal(recovery.DefaultExcerptLimit)
		gt.Bool(t, strings.HasPrefix(text, excerpt)).True()
	})

	t.Run("excerpt limit is configurable", func(t *testing.T) {
		_, err := recovery.New(recovery.WithExcerptLimit(5)).Recover(t.Context(), "no structure here")
		gt.Value(t, model.ExcerptOf(err)).Equal("no st")
	})

	t.Run("short text is kept whole", func(t *testing.T) {
		_, err := recovery.New().Recover(t.Context(), "nope")
		gt.Value(t, model.ExcerptOf(err)).Equal("nope")
	})
}
