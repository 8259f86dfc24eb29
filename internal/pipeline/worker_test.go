package pipeline_test

import (
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adc-dairy/milkroom/internal/domain"
	"github.com/adc-dairy/milkroom/internal/logger"
	"github.com/adc-dairy/milkroom/internal/pipeline"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

func TestWorker_SerializesJobs(t *testing.T) {
	worker := pipeline.NewWorker(4)

	var mu sync.Mutex
	var order []int

	for i := 1; i <= 3; i++ {
		i := i
		require.NoError(t, worker.Enqueue("job", func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}

	worker.StopAndWait()
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestWorker_RejectsWhenBacklogFull(t *testing.T) {
	worker := pipeline.NewWorker(0)

	started := make(chan struct{})
	release := make(chan struct{})

	require.NoError(t, worker.Enqueue("blocking", func() {
		close(started)
		<-release
	}))
	<-started

	// One job is executing and the backlog allows none beyond it
	err := worker.Enqueue("rejected", func() {})
	assert.ErrorIs(t, err, domain.ErrWorkerBusy)

	close(release)
	worker.StopAndWait()
}

func TestWorker_AcceptsAgainAfterDrain(t *testing.T) {
	worker := pipeline.NewWorker(0)

	done := make(chan struct{})
	require.NoError(t, worker.Enqueue("first", func() { close(done) }))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("first job never ran")
	}

	// pending can lag the job's completion briefly
	assert.Eventually(t, func() bool {
		return worker.Enqueue("second", func() {}) == nil
	}, 2*time.Second, 10*time.Millisecond)

	worker.StopAndWait()
}
