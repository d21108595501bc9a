package parallel

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	lgerrors "github.com/YuminosukeSato/lgbm2pmml/pkg/errors"
)

func TestParallelizeCoversEveryIndexOnce(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 8, 100} {
		hits := make([]int32, 37)
		Parallelize(len(hits), workers, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			assert.Equal(t, int32(1), h, "workers=%d index=%d", workers, i)
		}
	}
}

func TestParallelizeZeroItems(t *testing.T) {
	called := false
	Parallelize(0, 4, func(start, end int) { called = true })
	assert.False(t, called)
}

func TestParallelizeWithThresholdRunsSequentially(t *testing.T) {
	var calls int32
	ParallelizeWithThreshold(5, 10, 4, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, 0, start)
		assert.Equal(t, 5, end)
	})
	assert.Equal(t, int32(1), calls)
}

func TestForEachReturnsLowestIndexError(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	out := make([]int, 20)
	err := ForEach(len(out), 0, 4, func(i int) error {
		out[i] = i * i
		switch i {
		case 7:
			return errA
		case 15:
			return errB
		}
		return nil
	})
	require.Error(t, err)
	assert.Same(t, errA, err)
	assert.Equal(t, 19*19, out[19])
}

func TestForEachNoError(t *testing.T) {
	require.NoError(t, ForEach(10, 0, 3, func(int) error { return nil }))
}

func TestForEachBelowThresholdStaysOnCaller(t *testing.T) {
	var calls int32
	require.NoError(t, ForEach(6, 8, 4, func(i int) error {
		atomic.AddInt32(&calls, 1)
		return nil
	}))
	assert.Equal(t, int32(6), calls)
}

func TestForEachRecoversWorkerPanic(t *testing.T) {
	for _, threshold := range []int{0, 100} {
		err := ForEach(12, threshold, 4, func(i int) error {
			if i == 9 {
				panic("boom")
			}
			return nil
		})
		var perr *lgerrors.PanicError
		require.True(t, lgerrors.As(err, &perr), "threshold=%d got %v", threshold, err)
		assert.Equal(t, "boom", perr.PanicValue)
	}
}
