package sweeper

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) SweepExpired(context.Context) (int64, error) {
	c.calls.Add(1)
	return 2, c.err
}

func runFor(t *testing.T, j *Job, d time.Duration) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		j.Run(ctx)
	}()
	time.Sleep(d)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestJob_SweepsOnEveryTick(t *testing.T) {
	s := &countingSweeper{}
	runFor(t, New(s, 10*time.Millisecond, logging.Nop{}), 75*time.Millisecond)

	assert.GreaterOrEqual(t, s.calls.Load(), int32(3))
}

func TestJob_KeepsRunningAfterErrors(t *testing.T) {
	s := &countingSweeper{err: errors.New("db down")}
	runFor(t, New(s, 10*time.Millisecond, logging.Nop{}), 55*time.Millisecond)

	assert.GreaterOrEqual(t, s.calls.Load(), int32(2))
}

func TestJob_DisabledReturnsImmediately(t *testing.T) {
	s := &countingSweeper{}
	j := New(s, 0, logging.Nop{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		j.Run(context.Background())
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("disabled sweeper kept running")
	}
	assert.Zero(t, s.calls.Load())
}
