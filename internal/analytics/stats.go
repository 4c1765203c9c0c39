package analytics

import (
	"context"
	"fmt"
	"time"
)

// Stats is the admin dashboard summary.
type Stats struct {
	TotalVisitors    int64      `json:"total_visitors"`
	UniqueVisitors   int64      `json:"unique_visitors"`
	VisitorsToday    int64      `json:"visitors_today"`
	VisitorsThisWeek int64      `json:"visitors_this_week"`
	TotalWorkViews   int64      `json:"total_work_views"`
	TotalMessages    int64      `json:"total_messages"`
	FailedMessages   int64      `json:"failed_messages"`
	TopWorks         []WorkStat `json:"top_works"`
	RecentVisitors   []Visit    `json:"recent_visitors"`
	RecentMessages   []Message  `json:"recent_messages"`
}

// Stats gathers the dashboard summary.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).UnixMilli()
	week := now.Add(-7 * 24 * time.Hour).UnixMilli()

	st := &Stats{}
	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&st.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&st.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&st.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE ts >= ?`, []any{today}},
		{&st.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE ts >= ?`, []any{week}},
		{&st.TotalWorkViews, `SELECT COALESCE(SUM(views), 0) FROM work_views`, nil},
		{&st.TotalMessages, `SELECT COUNT(*) FROM messages`, nil},
		{&st.FailedMessages, `SELECT COUNT(*) FROM messages WHERE outcome <> 'sent'`, nil},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}

	var err error
	if st.TopWorks, err = s.TopWorks(ctx, 10); err != nil {
		return nil, err
	}
	if st.RecentVisitors, err = s.Visitors(ctx, 50); err != nil {
		return nil, err
	}
	if st.RecentMessages, err = s.Messages(ctx, 20); err != nil {
		return nil, err
	}
	return st, nil
}
