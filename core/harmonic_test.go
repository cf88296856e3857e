package core

import (
	"testing"

	"github.com/ferrodyne/rtcore/task"
)

func TestDecomposeInlineWhenPeriodEqualsParent(t *testing.T) {
	n := task.New("same-rate", 0.01, false, task.RunnableFunc(func() error { return nil }))
	list, threads, err := decompose(0.01, []*task.Periodic{n})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Len() != 1 {
		t.Errorf("expected the node to land inline, got inline len %d", list.Len())
	}
	if len(threads) != 0 {
		t.Errorf("a k==1 node should not spawn a thread, got %d threads", len(threads))
	}
}

func TestDecomposeSpawnsThreadForHarmonicMultiple(t *testing.T) {
	n := task.New("slow", 0.05, true, task.RunnableFunc(func() error { return nil }))
	n.Nice = 1
	list, threads, err := decompose(0.01, []*task.Periodic{n})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if list.Len() != 0 {
		t.Errorf("a k==5 node should not run inline, got inline len %d", list.Len())
	}
	if len(threads) != 1 {
		t.Fatalf("expected exactly 1 thread, got %d", len(threads))
	}
}

func TestDecomposeRejectsExcessiveDeviation(t *testing.T) {
	// 1.3x the base period deviates well past the 1% tolerance.
	n := task.New("bad", 0.013, false, task.RunnableFunc(func() error { return nil }))
	_, _, err := decompose(0.01, []*task.Periodic{n})
	if !Is(err, KindPeriodDeviation) {
		t.Fatalf("expected PeriodDeviation, got %v", err)
	}
}

func TestDecomposeAcceptsBoundaryDeviation(t *testing.T) {
	// 1.009x deviates 0.9%, inside the 1% tolerance.
	n := task.New("boundary", 0.01009, false, task.RunnableFunc(func() error { return nil }))
	_, _, err := decompose(0.01, []*task.Periodic{n})
	if err != nil {
		t.Fatalf("expected acceptance at 0.9%% deviation, got %v", err)
	}
}

func TestDecomposeRejectsEmptyLeaf(t *testing.T) {
	n := task.New("empty", 0.01, false, nil)
	_, _, err := decompose(0.01, []*task.Periodic{n})
	if !Is(err, KindEmptyTaskList) {
		t.Fatalf("expected EmptyTaskList, got %v", err)
	}
}

func TestDecomposeMergesBeforeAfterIntoParentThread(t *testing.T) {
	var order []string
	mk := func(name string) *task.Periodic {
		return task.New(name, 0.01, false, task.RunnableFunc(func() error {
			order = append(order, name)
			return nil
		}))
	}
	before := mk("before")
	self := mk("self")
	after := mk("after")
	self.Before = []*task.Periodic{before}
	self.After = []*task.Periodic{after}

	list, threads, err := decompose(0.01, []*task.Periodic{self})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(threads) != 0 {
		t.Fatalf("all three nodes share the base period and should run inline, got %d threads", len(threads))
	}
	if err := list.Run(); err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	want := []string{"before", "self", "after"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("expected order %v, got %v", want, order)
			break
		}
	}
}
