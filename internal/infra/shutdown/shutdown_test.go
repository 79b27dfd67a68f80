package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHandler_HooksRunInReverseOrder(t *testing.T) {
	h := NewHandler(time.Second)

	var order []int
	for i := 0; i < 3; i++ {
		i := i
		h.OnShutdown(func(context.Context) error {
			order = append(order, i)
			return nil
		})
	}

	h.Trigger()
	if err := h.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	want := []int{2, 1, 0}
	if len(order) != len(want) {
		t.Fatalf("ran %d hooks, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("hook order = %v, want %v", order, want)
			break
		}
	}
}

func TestHandler_FirstErrorWins(t *testing.T) {
	h := NewHandler(time.Second)

	errA := errors.New("a failed")
	errB := errors.New("b failed")
	h.OnShutdown(func(context.Context) error { return errA })
	h.OnShutdown(func(context.Context) error { return errB })

	h.Trigger()
	// Hooks run in reverse order, so errB is encountered first.
	if err := h.Wait(); !errors.Is(err, errB) {
		t.Errorf("Wait() error = %v, want %v", err, errB)
	}
}

func TestHandler_AllHooksRunDespiteErrors(t *testing.T) {
	h := NewHandler(time.Second)

	ran := 0
	h.OnShutdown(func(context.Context) error { ran++; return nil })
	h.OnShutdown(func(context.Context) error { ran++; return errors.New("boom") })
	h.OnShutdown(func(context.Context) error { ran++; return nil })

	h.Trigger()
	_ = h.Wait()
	if ran != 3 {
		t.Errorf("ran = %d hooks, want 3", ran)
	}
}

func TestHandler_Done(t *testing.T) {
	h := NewHandler(time.Second)
	h.Trigger()

	go h.Wait()

	select {
	case <-h.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done() not closed after Wait completed")
	}
}

func TestHandler_TriggerIdempotent(t *testing.T) {
	h := NewHandler(time.Second)
	h.Trigger()
	h.Trigger() // must not panic
	if err := h.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}

func TestHandler_HookReceivesDeadline(t *testing.T) {
	h := NewHandler(50 * time.Millisecond)

	h.OnShutdown(func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("hook context has no deadline")
		}
		return nil
	})

	h.Trigger()
	if err := h.Wait(); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
}
