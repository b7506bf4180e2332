package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

type countingSweeper struct {
	calls atomic.Int32
}

func (c *countingSweeper) Sweep(time.Duration) int {
	c.calls.Add(1)
	return 1
}

func TestDeviceSweeperRunsUntilCancelled(t *testing.T) {
	sweeper := &countingSweeper{}
	ctx, cancel := context.WithCancel(context.Background())

	done := StartDeviceSweeper(ctx, sweeper, 5*time.Millisecond, time.Minute, nil)
	deadline := time.After(time.Second)
	for sweeper.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("sweeper never ran")
		case <-time.After(time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop after cancel")
	}
}

func TestDeviceSweeperDisabled(t *testing.T) {
	done := StartDeviceSweeper(context.Background(), &countingSweeper{}, 0, time.Minute, nil)
	select {
	case <-done:
	default:
		t.Error("expected a disabled sweeper to be done immediately")
	}
}
