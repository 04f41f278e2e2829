package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dvloznov/statement-pdf/internal/jobs"
)

func TestStore_SaveAndGet(t *testing.T) {
	s := NewStore()
	ctx := context.Background()

	if err := s.SaveJob(ctx, &jobs.RenderStatementJob{}); err == nil {
		t.Error("expected error for job without ID")
	}

	job := &jobs.RenderStatementJob{JobID: "j1", Status: jobs.JobStatusPending}
	if err := s.SaveJob(ctx, job); err != nil {
		t.Fatalf("SaveJob failed: %v", err)
	}
	job.Status = jobs.JobStatusRunning

	got, err := s.GetJob(ctx, "j1")
	if err != nil {
		t.Fatalf("GetJob failed: %v", err)
	}
	if got.Status != jobs.JobStatusPending {
		t.Error("store must keep its own copy")
	}

	if _, err := s.GetJob(ctx, "missing"); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("GetJob missing error = %v, want ErrJobNotFound", err)
	}
}

func TestStore_ListJobs(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	seed := []*jobs.RenderStatementJob{
		{JobID: "a", PersonName: "Jane", Status: jobs.JobStatusCompleted, CreatedAt: base},
		{JobID: "b", PersonName: "John", Status: jobs.JobStatusPending, CreatedAt: base.Add(time.Minute)},
		{JobID: "c", PersonName: "Jane", Status: jobs.JobStatusFailed, CreatedAt: base.Add(2 * time.Minute)},
	}
	for _, j := range seed {
		_ = s.SaveJob(ctx, j)
	}

	tests := []struct {
		name   string
		filter jobs.JobFilter
		want   []string
	}{
		{"all newest first", jobs.JobFilter{}, []string{"c", "b", "a"}},
		{"by person", jobs.JobFilter{PersonName: "Jane"}, []string{"c", "a"}},
		{"by status", jobs.JobFilter{Status: jobs.JobStatusPending}, []string{"b"}},
		{"limit", jobs.JobFilter{Limit: 2}, []string{"c", "b"}},
		{"offset", jobs.JobFilter{Offset: 1}, []string{"b", "a"}},
		{"offset past end", jobs.JobFilter{Offset: 5}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.ListJobs(ctx, tt.filter)
			if err != nil {
				t.Fatalf("ListJobs failed: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i, j := range got {
				if j.JobID != tt.want[i] {
					t.Errorf("position %d = %s, want %s", i, j.JobID, tt.want[i])
				}
			}
		})
	}
}

func TestStore_UpdateJobStatus(t *testing.T) {
	s := NewStore()
	ctx := context.Background()
	_ = s.SaveJob(ctx, &jobs.RenderStatementJob{JobID: "j1", Status: jobs.JobStatusRunning})

	if err := s.UpdateJobStatus(ctx, "j1", jobs.JobStatusFailed, "boom"); err != nil {
		t.Fatalf("UpdateJobStatus failed: %v", err)
	}
	got, _ := s.GetJob(ctx, "j1")
	if got.Status != jobs.JobStatusFailed || got.Error != "boom" {
		t.Errorf("unexpected job: %+v", got)
	}

	if err := s.UpdateJobStatus(ctx, "nope", jobs.JobStatusFailed, ""); !errors.Is(err, jobs.ErrJobNotFound) {
		t.Errorf("error = %v, want ErrJobNotFound", err)
	}
}
