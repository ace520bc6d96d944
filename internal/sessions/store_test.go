package sessions

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdeeva/spendbot/internal/flow"
)

func TestUpdateCommitsOnSuccess(t *testing.T) {
	s := NewStore()

	err := s.Update(1, func(sess *flow.Session) error {
		sess.State = flow.StateFilling
		sess.Draft = &flow.Draft{ExpenseName: "Milk"}
		return nil
	})
	require.NoError(t, err)

	got := s.Peek(1)
	assert.Equal(t, flow.StateFilling, got.State)
	require.NotNil(t, got.Draft)
	assert.Equal(t, "Milk", got.Draft.ExpenseName)
}

func TestUpdateDiscardsOnError(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Update(1, func(sess *flow.Session) error {
		sess.State = flow.StateConfirming
		sess.Draft = &flow.Draft{ExpenseName: "Milk", Cost: 100}
		return nil
	}))

	boom := errors.New("boom")
	err := s.Update(1, func(sess *flow.Session) error {
		sess.State = flow.StateIdle
		sess.Draft = nil
		return boom
	})
	require.ErrorIs(t, err, boom)

	got := s.Peek(1)
	assert.Equal(t, flow.StateConfirming, got.State)
	require.NotNil(t, got.Draft)
	assert.Equal(t, 100.0, got.Draft.Cost)
}

func TestPeekReturnsCopy(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Update(1, func(sess *flow.Session) error {
		sess.Draft = &flow.Draft{ExpenseName: "Milk"}
		return nil
	}))

	got := s.Peek(1)
	got.Draft.ExpenseName = "Bread"

	assert.Equal(t, "Milk", s.Peek(1).Draft.ExpenseName)
}

func TestUnknownUserStartsIdle(t *testing.T) {
	s := NewStore()
	got := s.Peek(42)
	assert.Equal(t, flow.StateIdle, got.State)
	assert.Nil(t, got.Draft)
}

func TestUsersAreIndependent(t *testing.T) {
	s := NewStore()
	require.NoError(t, s.Update(1, func(sess *flow.Session) error {
		sess.State = flow.StateFilling
		return nil
	}))

	assert.Equal(t, flow.StateIdle, s.Peek(2).State)
	assert.Equal(t, flow.StateFilling, s.Peek(1).State)
}

func TestSameUserUpdatesAreSerialized(t *testing.T) {
	s := NewStore()
	const workers = 50

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			_ = s.Update(1, func(sess *flow.Session) error {
				if sess.Draft == nil {
					sess.Draft = &flow.Draft{}
				}
				sess.Draft.Amount++
				return nil
			})
		}()
	}
	wg.Wait()

	// Lost updates would leave the counter short.
	assert.Equal(t, workers, s.Peek(1).Draft.Amount)
}
