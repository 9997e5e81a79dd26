package service

import (
	"reflect"
	"testing"
	"time"
)

func TestPassUsage(t *testing.T) {
	f := newFixture(t, time.Date(2025, 5, 5, 0, 0, 0, 0, kst))

	usage, err := f.svc.PassUsage(1)
	if err != nil {
		t.Fatalf("PassUsage() returned error: %v", err)
	}
	if !reflect.DeepEqual(usage.Missed, []string{"prep"}) || usage.Remaining != 0 || usage.Exceeded() {
		t.Errorf("PassUsage() during session 0 = %+v", usage)
	}

	if _, err := f.svc.Submit(1, -100, validAnswers(), &fakePublisher{}); err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}

	f.now = time.Date(2025, 5, 22, 0, 0, 0, 0, kst)
	usage, err = f.svc.PassUsage(1)
	if err != nil {
		t.Fatalf("PassUsage() returned error: %v", err)
	}
	if !reflect.DeepEqual(usage.Missed, []string{"prep", "1"}) {
		t.Errorf("Missed = %v, want [prep 1]", usage.Missed)
	}
	if !usage.Exceeded() || usage.Remaining != 0 {
		t.Errorf("usage = %+v, want exceeded", usage)
	}
}

func TestPassUsageAfterProgramEnd(t *testing.T) {
	f := newFixture(t, time.Date(2025, 5, 15, 0, 0, 0, 0, kst))

	if _, err := f.svc.Submit(1, -100, validAnswers(), &fakePublisher{}); err != nil {
		t.Fatalf("Submit() returned error: %v", err)
	}

	f.now = time.Date(2025, 7, 1, 0, 0, 0, 0, kst)
	usage, err := f.svc.PassUsage(1)
	if err != nil {
		t.Fatalf("PassUsage() returned error: %v", err)
	}

	// Both "1" sessions count as submitted through the shared label.
	if !reflect.DeepEqual(usage.Missed, []string{"prep", "0"}) {
		t.Errorf("Missed = %v, want [prep 0]", usage.Missed)
	}
	if usage.Max != 1 {
		t.Errorf("Max = %d, want 1", usage.Max)
	}
}

func TestPassUsageBeforeFirstDeadline(t *testing.T) {
	f := newFixture(t, time.Date(2025, 4, 1, 0, 0, 0, 0, kst))

	usage, err := f.svc.PassUsage(1)
	if err != nil {
		t.Fatalf("PassUsage() returned error: %v", err)
	}
	if len(usage.Missed) != 0 || usage.Remaining != 1 {
		t.Errorf("PassUsage() = %+v, want nothing missed", usage)
	}
}
