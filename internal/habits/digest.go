package habits

import (
	"context"
	"time"
)

// Digest сводка недели пользователя: статистика, история, тренд, дневные итоги
type Digest struct {
	Stats   WeeklyStats
	History []WeeklyStats // до HistoryWeeks прошлых недель, самая свежая первой
	Trend   Trend
	Summary WeekSummary
}

// Goal цель, записанная в строку этой недели
func (d Digest) Goal() string {
	return d.Stats.Goals
}

// BuildDigest собирает сводку недели anchor. tracker может быть nil.
func BuildDigest(ctx context.Context, ledger *Ledger, tracker *Tracker, userID int64, anchor time.Time) (Digest, error) {
	anchor = ledger.Anchor(anchor)

	stats, err := ledger.ComputeStats(ctx, userID, anchor)
	if err != nil {
		return Digest{}, err
	}
	history, err := ledger.History(ctx, userID, anchor, HistoryWeeks)
	if err != nil {
		return Digest{}, err
	}

	d := Digest{
		Stats:   stats,
		History: history,
		Trend:   Compare(stats, history),
		Summary: WeekSummary{Anchor: anchor},
	}
	if tracker != nil {
		if d.Summary, err = tracker.Summary(ctx, userID, anchor); err != nil {
			return Digest{}, err
		}
	}
	return d, nil
}
