package event_test

import (
	"testing"

	"github.com/eak1mov/go-tileloader/event"
	"github.com/google/go-cmp/cmp"
)

const (
	kindA event.Kind = "a"
	kindB event.Kind = "b"
)

func TestEmitOrder(t *testing.T) {
	var e event.Emitter[int]
	var got []string
	e.Subscribe(kindA, func(v int) { got = append(got, "first") })
	e.Subscribe(kindB, func(v int) { got = append(got, "other") })
	e.Subscribe(kindA, func(v int) { got = append(got, "second") })

	e.Emit(kindA, 1)

	if diff := cmp.Diff([]string{"first", "second"}, got); diff != "" {
		t.Errorf("Emit order mismatch (-want +got):\n%v", diff)
	}
}

func TestUnsubscribe(t *testing.T) {
	var e event.Emitter[int]
	var sum int
	h := e.Subscribe(kindA, func(v int) { sum += v })
	e.Subscribe(kindA, func(v int) { sum += 10 * v })

	if h.Kind() != kindA {
		t.Errorf("Kind() = %v, want %v", h.Kind(), kindA)
	}
	if !e.Unsubscribe(h) {
		t.Fatalf("Unsubscribe returned false for a registered handle")
	}
	if e.Unsubscribe(h) {
		t.Errorf("second Unsubscribe returned true")
	}

	e.Emit(kindA, 2)
	if sum != 20 {
		t.Errorf("sum = %v, want 20", sum)
	}
	if got := e.Len(kindA); got != 1 {
		t.Errorf("Len() = %v, want 1", got)
	}
}

func TestUnsubscribeDuringEmit(t *testing.T) {
	var e event.Emitter[int]
	var calls []string
	var second event.Handle
	e.Subscribe(kindA, func(int) {
		calls = append(calls, "first")
		e.Unsubscribe(second)
	})
	second = e.Subscribe(kindA, func(int) { calls = append(calls, "second") })

	e.Emit(kindA, 0)
	e.Emit(kindA, 0)

	if diff := cmp.Diff([]string{"first", "second", "first"}, calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%v", diff)
	}
}
