package backup

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type fakeTarget struct {
	calls atomic.Int32
	err   error
}

func (f *fakeTarget) BackupDB(path string) error {
	f.calls.Add(1)
	return f.err
}

func TestDisabledScheduleIsNoop(t *testing.T) {
	s := NewScheduler(nil)
	target := &fakeTarget{}
	s.Add(target, Schedule{}) // empty filename: disabled
	s.RunDueNow(time.Now().Add(time.Hour))
	if target.calls.Load() != 0 {
		t.Fatalf("disabled schedule ran %d times, want 0", target.calls.Load())
	}
}

func TestFirstBackupRunsOnceDue(t *testing.T) {
	s := NewScheduler(nil)
	target := &fakeTarget{}
	now := time.Now()
	s.Add(target, Schedule{Filename: "db.bak", First: now, Period: time.Hour})

	s.RunDueNow(now)
	if target.calls.Load() != 1 {
		t.Fatalf("calls = %d, want 1", target.calls.Load())
	}

	// Not due again yet.
	s.RunDueNow(now.Add(time.Minute))
	if target.calls.Load() != 1 {
		t.Fatalf("calls after non-due check = %d, want still 1", target.calls.Load())
	}

	// Due again after the period elapses.
	s.RunDueNow(now.Add(2 * time.Hour))
	if target.calls.Load() != 2 {
		t.Fatalf("calls after period elapsed = %d, want 2", target.calls.Load())
	}
}

func TestOnErrorCalledOnBackupFailure(t *testing.T) {
	var reported string
	s := NewScheduler(func(filename string, err error) { reported = filename })
	target := &fakeTarget{err: errors.New("disk full")}
	now := time.Now()
	s.Add(target, Schedule{Filename: "db.bak", First: now})

	s.RunDueNow(now)
	if reported != "db.bak" {
		t.Fatalf("onError reported %q, want %q", reported, "db.bak")
	}
}

func TestStartStopDoesNotPanic(t *testing.T) {
	s := NewScheduler(nil)
	target := &fakeTarget{}
	s.Add(target, Schedule{Filename: "db.bak", First: time.Now(), Period: time.Hour})
	s.Start(10 * time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	s.Stop()
	if target.calls.Load() == 0 {
		t.Fatal("scheduler never ran the backup before Stop")
	}
}
