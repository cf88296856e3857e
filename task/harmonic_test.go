package task

import "testing"

func TestHarmonicTaskListRunsInOrder(t *testing.T) {
	var order []int
	list := NewHarmonicTaskList()
	for i := 0; i < 3; i++ {
		i := i
		list.Add(RunnableFunc(func() error {
			order = append(order, i)
			return nil
		}))
	}

	if list.Len() != 3 {
		t.Fatalf("expected 3 runnables, got %d", list.Len())
	}
	if err := list.Run(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, v := range order {
		if v != i {
			t.Errorf("runnables executed out of order: %v", order)
		}
	}
}

func TestHarmonicTaskListStopsAtFirstError(t *testing.T) {
	errBoom := errBoomSentinel{}
	ran := 0
	list := NewHarmonicTaskList()
	list.Add(RunnableFunc(func() error { ran++; return nil }))
	list.Add(RunnableFunc(func() error { ran++; return errBoom }))
	list.Add(RunnableFunc(func() error { ran++; return nil }))

	err := list.Run()
	if err != errBoom {
		t.Fatalf("expected sentinel error, got %v", err)
	}
	if ran != 2 {
		t.Errorf("expected exactly 2 runnables to execute before stopping, got %d", ran)
	}
}

func TestHarmonicTaskListAddAll(t *testing.T) {
	a := NewHarmonicTaskList()
	a.Add(RunnableFunc(func() error { return nil }))
	b := NewHarmonicTaskList()
	b.Add(RunnableFunc(func() error { return nil }))
	b.Add(RunnableFunc(func() error { return nil }))

	a.AddAll(b)
	if a.Len() != 3 {
		t.Fatalf("expected 3 after merging, got %d", a.Len())
	}

	a.AddAll(nil)
	if a.Len() != 3 {
		t.Errorf("AddAll(nil) should be a no-op, got len %d", a.Len())
	}
}

type errBoomSentinel struct{}

func (errBoomSentinel) Error() string { return "boom" }
