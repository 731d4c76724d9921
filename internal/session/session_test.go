// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/taurus/pkg/types"
)

type stubPredictor struct {
	result types.PredictionResult
	err    error
}

func (p stubPredictor) Predict(context.Context, string, []float64) (types.PredictionResult, error) {
	return p.result, p.err
}

func TestAuthenticate(t *testing.T) {
	st := NewStore("Taurus2024", time.Hour)
	s := st.Create()
	require.False(t, s.Authenticated())

	assert.False(t, st.Authenticate(s, "wrong"))
	assert.False(t, s.Authenticated())

	assert.True(t, st.Authenticate(s, "Taurus2024"))
	assert.True(t, s.Authenticated())

	// Once set the flag stays set.
	assert.True(t, st.Authenticate(s, "wrong"))
	assert.True(t, s.Authenticated())
}

func TestAuthenticateWithoutPassword(t *testing.T) {
	st := NewStore("", time.Hour)
	s := st.Create()
	assert.False(t, st.Authenticate(s, ""))
	assert.False(t, s.Authenticated())
}

func TestGet(t *testing.T) {
	st := NewStore("pw", time.Hour)
	s := st.Create()
	require.True(t, st.Authenticate(s, "pw"))

	got, ok := st.Get(s.ID)
	require.True(t, ok)
	assert.Same(t, s, got)

	_, ok = st.Get("not-a-uuid")
	assert.False(t, ok)
	_, ok = st.Get("1b4e28ba-2fa1-11d2-883f-0016d3cca427")
	assert.False(t, ok)
}

func TestUnauthenticatedSessionsAreNotStored(t *testing.T) {
	st := NewStore("pw", time.Hour)
	for i := 0; i < 100; i++ {
		s := st.Create()
		st.Authenticate(s, "wrong")
		_, ok := st.Get(s.ID)
		assert.False(t, ok)
	}
	assert.Zero(t, st.Len())

	s := st.Create()
	require.True(t, st.Authenticate(s, "pw"))
	assert.Equal(t, 1, st.Len())

	// Re-authenticating a stored session does not duplicate it.
	require.True(t, st.Authenticate(s, "pw"))
	assert.Equal(t, 1, st.Len())
}

func TestExpiry(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	st := NewStore("pw", 10*time.Minute)
	st.now = func() time.Time { return now }

	idle := st.Create()
	active := st.Create()
	require.True(t, st.Authenticate(idle, "pw"))
	require.True(t, st.Authenticate(active, "pw"))

	now = now.Add(6 * time.Minute)
	_, ok := st.Get(active.ID)
	require.True(t, ok)

	now = now.Add(6 * time.Minute)
	_, ok = st.Get(idle.ID)
	assert.False(t, ok, "idle session should expire")
	assert.Equal(t, 1, st.Len())

	now = now.Add(11 * time.Minute)
	assert.Equal(t, 1, st.Sweep())
	assert.Zero(t, st.Len())
}

func TestPredictKeepsLastSuccess(t *testing.T) {
	st := NewStore("pw", time.Hour)
	s := st.Create()

	_, ok := s.Last()
	assert.False(t, ok)

	want := types.PredictionResult{Capacity: 1500.25, Efficiency: 88.5}
	got, err := s.Predict(context.Background(), stubPredictor{result: want}, "S5", nil)
	require.NoError(t, err)
	assert.Equal(t, want, got)

	_, err = s.Predict(context.Background(), stubPredictor{err: errors.New("boom")}, "S5", nil)
	require.Error(t, err)

	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, want, last, "failed run must not overwrite the last result")
}

func TestConcurrentSessions(t *testing.T) {
	st := NewStore("pw", time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := st.Create()
			st.Authenticate(s, "pw")
			_, _ = s.Predict(context.Background(), stubPredictor{}, "S5", nil)
			_, _ = st.Get(s.ID)
		}()
	}
	wg.Wait()
	assert.Equal(t, 32, st.Len())
}
