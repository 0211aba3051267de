package picker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCancelFromEitherStage(t *testing.T) {
	fsm := New()

	fsm.Start(1)
	step, err := fsm.Feed(1, "cancel")
	require.NoError(t, err)
	assert.Equal(t, Cancelled, step.State)
	assert.False(t, fsm.Active(1))

	fsm.Start(1)
	_, err = fsm.Feed(1, "14")
	require.NoError(t, err)
	step, err = fsm.Feed(1, "/cancel")
	require.NoError(t, err)
	assert.Equal(t, Cancelled, step.State)
	assert.False(t, fsm.Active(1))
}

func TestHourOutOfRangeStaysAwaitingHour(t *testing.T) {
	fsm := New()
	fsm.Start(2)

	step, err := fsm.Feed(2, "25")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, AwaitingHour, verr.Stage)
	assert.Equal(t, AwaitingHour, step.State)
	assert.True(t, fsm.Active(2))

	_, err = fsm.Feed(2, "nine")
	require.ErrorAs(t, err, &verr)
	assert.True(t, fsm.Active(2))
}

func TestMinuteOutOfRangeKeepsHour(t *testing.T) {
	fsm := New()
	fsm.Start(3)

	step, err := fsm.Feed(3, "14")
	require.NoError(t, err)
	assert.Equal(t, Step{State: AwaitingMinute, Hour: 14}, step)

	step, err = fsm.Feed(3, "61")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, AwaitingMinute, verr.Stage)
	assert.Equal(t, Step{State: AwaitingMinute, Hour: 14}, step)
	assert.True(t, fsm.Active(3))

	step, err = fsm.Feed(3, "30")
	require.NoError(t, err)
	assert.Equal(t, Step{State: Completed, Hour: 14, Minute: 30}, step)
}

func TestCompletionClearsSession(t *testing.T) {
	fsm := New()
	fsm.Start(4)
	_, _ = fsm.Feed(4, "0")
	step, err := fsm.Feed(4, " 0 ")
	require.NoError(t, err)
	assert.Equal(t, Step{State: Completed, Hour: 0, Minute: 0}, step)
	assert.False(t, fsm.Active(4))

	_, err = fsm.Feed(4, "10")
	require.ErrorIs(t, err, ErrNoSession)
}

func TestRestartOverwritesOpenSession(t *testing.T) {
	fsm := New()
	fsm.Start(5)
	_, _ = fsm.Feed(5, "7")

	step := fsm.Start(5)
	assert.Equal(t, AwaitingHour, step.State)

	step, err := fsm.Feed(5, "45")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, AwaitingHour, step.State)
}

func TestSessionsAreIsolatedPerUser(t *testing.T) {
	fsm := New()
	fsm.Start(6)
	fsm.Start(7)
	_, _ = fsm.Feed(6, "8")

	step, err := fsm.Feed(7, "9")
	require.NoError(t, err)
	assert.Equal(t, Step{State: AwaitingMinute, Hour: 9}, step)
	assert.True(t, fsm.Cancel(6))
	assert.False(t, fsm.Cancel(6))
	assert.True(t, fsm.Active(7))
}
