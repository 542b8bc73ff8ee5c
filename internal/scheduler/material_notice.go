package scheduler

import (
	"context"
	"log"
)

// MaterialNotifier is the slice of the material service the notice job needs.
type MaterialNotifier interface {
	NotifyDue(ctx context.Context) (int, error)
}

// MaterialNoticeJob tells students when a scheduled material opens for their class.
type MaterialNoticeJob struct {
	materials MaterialNotifier
	schedule  string
}

func NewMaterialNoticeJob(materials MaterialNotifier, schedule string) *MaterialNoticeJob {
	return &MaterialNoticeJob{materials: materials, schedule: schedule}
}

func (j *MaterialNoticeJob) Name() string {
	return "material_notice"
}

func (j *MaterialNoticeJob) Schedule() string {
	return j.schedule
}

func (j *MaterialNoticeJob) Run(ctx context.Context) error {
	n, err := j.materials.NotifyDue(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("📚 [%s] Announced %d materials", j.Name(), n)
	}
	return nil
}
