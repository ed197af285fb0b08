package jobs

import (
	"context"

	"jukebox/internal/services"
	"jukebox/pkg/logger"
)

// QuotaResetJob clears the video search key ring's exhausted state once a
// day, matching the upstream quota refill cycle.
type QuotaResetJob struct {
	youtube  *services.YouTubeService
	log      logger.Logger
	schedule services.Schedule
}

func NewQuotaResetJob(
	youtube *services.YouTubeService,
	schedule services.Schedule,
) *QuotaResetJob {
	return &QuotaResetJob{
		youtube:  youtube,
		log:      logger.New("quotaResetJob"),
		schedule: schedule,
	}
}

func (j *QuotaResetJob) Name() string {
	return "DailyYoutubeQuotaReset"
}

func (j *QuotaResetJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	j.youtube.ResetQuota()
	log.Info("YouTube quota state reset")

	return nil
}

func (j *QuotaResetJob) Schedule() services.Schedule {
	return j.schedule
}
