package scheduler

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varuna/varuna/internal/domain"
)

type fakeJob struct {
	name string
	runs int
	err  error
}

func (j *fakeJob) Run() error   { j.runs++; return j.err }
func (j *fakeJob) Name() string { return j.name }

func TestScheduler_RunNow(t *testing.T) {
	s := New(zerolog.Nop())

	job := &fakeJob{name: "test_job"}
	require.NoError(t, s.AddJob("0 0 2 * * *", job))

	require.NoError(t, s.RunNow("test_job"))
	assert.Equal(t, 1, job.runs)

	err := s.RunNow("unknown_job")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestScheduler_RunNowPropagatesJobError(t *testing.T) {
	s := New(zerolog.Nop())

	job := &fakeJob{name: "failing_job", err: fmt.Errorf("boom")}
	require.NoError(t, s.AddJob("@hourly", job))

	assert.Error(t, s.RunNow("failing_job"))
}

func TestScheduler_JobNames(t *testing.T) {
	s := New(zerolog.Nop())

	require.NoError(t, s.AddJob("@hourly", &fakeJob{name: "zeta"}))
	require.NoError(t, s.AddJob("@hourly", &fakeJob{name: "alpha"}))

	assert.Equal(t, []string{"alpha", "zeta"}, s.JobNames())
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	s := New(zerolog.Nop())

	err := s.AddJob("not a schedule", &fakeJob{name: "bad"})
	require.Error(t, err)
	assert.Empty(t, s.JobNames())
}

func TestScheduler_StartStop(t *testing.T) {
	s := New(zerolog.Nop())
	s.Start()
	s.Stop()
}
