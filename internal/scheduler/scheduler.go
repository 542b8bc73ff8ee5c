package scheduler

import (
	"context"
	"log"

	"github.com/robfig/cron/v3"
)

// Job is a unit of background work run on a cron schedule.
type Job interface {
	Name() string
	// Schedule is a cron spec. An empty schedule registers the job for manual runs only.
	Schedule() string
	Run(ctx context.Context) error
}

type Scheduler struct {
	cron *cron.Cron
	jobs []Job
}

func New() *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		jobs: make([]Job, 0),
	}
}

// Register adds the job and schedules it when it has a schedule.
func (s *Scheduler) Register(job Job) error {
	s.jobs = append(s.jobs, job)

	schedule := job.Schedule()
	if schedule == "" {
		log.Printf("📝 [%s] Registered as on-demand job (no schedule)", job.Name())
		return nil
	}

	_, err := s.cron.AddFunc(schedule, func() {
		if err := job.Run(context.Background()); err != nil {
			log.Printf("❌ [%s] Job failed: %v", job.Name(), err)
		}
	})
	if err != nil {
		log.Printf("⚠️ Failed to schedule job %s: %v", job.Name(), err)
		return err
	}

	log.Printf("📅 [%s] Scheduled with cron: %s", job.Name(), schedule)
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	log.Printf("🚀 Scheduler started with %d registered jobs", len(s.jobs))
}

// Stop waits for running jobs to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
	log.Println("🛑 Scheduler stopped")
}

// RunByName runs one registered job now.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() == name {
			log.Printf("🎯 [%s] Running on-demand execution...", name)
			return job.Run(ctx)
		}
	}
	log.Printf("⚠️ Job with name '%s' not found", name)
	return nil
}

func (s *Scheduler) Jobs() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}
