package cron

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubJob struct {
	name     string
	schedule string
}

func (j *stubJob) Name() string              { return j.name }
func (j *stubJob) Schedule() string          { return j.schedule }
func (j *stubJob) Run(context.Context) error { return nil }

func TestRegisterJobRejectsDuplicates(t *testing.T) {
	s := NewScheduler(discardLogger())

	if err := s.RegisterJob(&stubJob{name: "a", schedule: "* * * * *"}); err != nil {
		t.Fatalf("RegisterJob() error = %v", err)
	}
	if err := s.RegisterJob(&stubJob{name: "a", schedule: "* * * * *"}); err == nil {
		t.Fatal("duplicate job name accepted")
	}
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	s := NewScheduler(discardLogger())
	_ = s.RegisterJob(&stubJob{name: "bad", schedule: "not a cron expr"})

	if err := s.Start(); err == nil {
		_ = s.Stop(context.Background())
		t.Fatal("invalid schedule accepted")
	}
}

func TestStartStop(t *testing.T) {
	s := NewScheduler(discardLogger())
	_ = s.RegisterJob(&stubJob{name: "ok", schedule: "*/5 * * * *"})

	if err := s.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
}
