package progress

import "testing"

func TestMonotonic_DropsRegressions(t *testing.T) {
	var rec Recorder
	fn := Monotonic(rec.Func())

	fn(10, "a")
	fn(30, "b")
	fn(20, "regress")
	fn(30, "same")
	fn(150, "over")

	events := rec.Events()
	want := []Event{{10, "a"}, {30, "b"}, {30, "same"}, {100, "over"}}
	if len(events) != len(want) {
		t.Fatalf("got %d events, want %d: %v", len(events), len(want), events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d: got %+v, want %+v", i, events[i], want[i])
		}
	}
}

func TestMonotonic_Nil(t *testing.T) {
	if Monotonic(nil) != nil {
		t.Error("Monotonic(nil) should return nil")
	}
	var fn Func
	fn.Report(50, "no panic")
}

func TestRecorder_Last(t *testing.T) {
	var rec Recorder
	if _, ok := rec.Last(); ok {
		t.Error("empty recorder should report no last event")
	}
	rec.Func()(100, Complete)
	last, ok := rec.Last()
	if !ok || last.Percent != 100 || last.Message != Complete {
		t.Errorf("Last: got %+v, %v", last, ok)
	}
}
