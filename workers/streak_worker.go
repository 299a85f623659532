package workers

import (
	"context"
	"log"
	"time"

	"allowance-system/models"
	"gorm.io/gorm"
)

// StreakResetClient holds what the reset sweep needs.
type StreakResetClient struct {
	DB *gorm.DB
}

func NewStreakResetClient(db *gorm.DB) *StreakResetClient {
	return &StreakResetClient{DB: db}
}

// PollStreaks zeroes saving streaks for children who missed a full weekly
// period. The saving-streak counter is owned here and in the transaction
// service; the achievement evaluator only ever reads it.
func PollStreaks(ctx context.Context, client *StreakResetClient, pollInterval time.Duration) {
	log.Println("Starting saving-streak reset polling...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Streak polling stopped.")
			return
		case <-ticker.C:
			count, err := client.ResetExpired(time.Now())
			if err != nil {
				log.Printf("❌ Error resetting streaks: %v", err)
				continue
			}
			if count > 0 {
				log.Printf("✅ Reset saving streak for %d child(ren).", count)
			}
		}
	}
}

// ResetExpired zeroes the streak of every child whose last save predates the
// start of the previous week — i.e. a whole period went by without a save.
func (c *StreakResetClient) ResetExpired(now time.Time) (int64, error) {
	cutoff := startOfWeek(now).AddDate(0, 0, -7)

	res := c.DB.Model(&models.Child{}).
		Where("current_saving_streak > 0 AND (last_saving_date IS NULL OR last_saving_date < ?)", cutoff).
		UpdateColumn("current_saving_streak", 0)
	return res.RowsAffected, res.Error
}

// startOfWeek returns midnight Monday of the week containing t.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return day.AddDate(0, 0, -(weekday - 1))
}
