package analytics

import (
	"context"
	"fmt"
	"time"

	"github.com/studio-sirbu/portfolio/internal/contact"
)

// Visit is one tracked page view.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// WorkStat counts how often a case study was opened.
type WorkStat struct {
	WorkID   string    `json:"work_id"`
	Views    int64     `json:"views"`
	LastSeen time.Time `json:"last_seen"`
}

// Message is a logged contact form submission.
type Message struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Email     string          `json:"email"`
	Subject   string          `json:"subject"`
	Body      string          `json:"body"`
	Outcome   contact.Outcome `json:"outcome"`
	Transport string          `json:"transport"`
	Timestamp time.Time       `json:"timestamp"`
}

// RecordVisit stores a page view. ip is hashed before it is written.
func (s *Store) RecordVisit(ctx context.Context, ip, userAgent, path string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO visitors (hashed_ip, user_agent, path, ts) VALUES (?, ?, ?, ?)`,
		s.HashIP(ip), userAgent, path, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// RecordWorkView bumps the open counter for a case study.
func (s *Store) RecordWorkView(ctx context.Context, workID string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO work_views (work_id, views, last_seen) VALUES (?, 1, ?)
		ON CONFLICT(work_id) DO UPDATE SET views = views + 1, last_seen = excluded.last_seen`,
		workID, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("record work view %s: %w", workID, err)
	}
	return nil
}

// RecordSubmission logs a contact form submission.
func (s *Store) RecordSubmission(ctx context.Context, sub contact.Submission) error {
	at := sub.At
	if at.IsZero() {
		at = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (name, email, subject, body, outcome, transport, ts)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sub.Form.Name, sub.Form.Email, sub.Form.Subject, sub.Form.Message,
		string(sub.Outcome), sub.Transport, at.UnixMilli())
	if err != nil {
		return fmt.Errorf("record submission: %w", err)
	}
	return nil
}

// Visitors returns the most recent visits, newest first.
func (s *Store) Visitors(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, user_agent, path, ts
		FROM visitors
		ORDER BY ts DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query visitors: %w", err)
	}
	defer rows.Close()

	var out []Visit
	for rows.Next() {
		var v Visit
		var ts int64
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		v.Timestamp = time.UnixMilli(ts).UTC()
		out = append(out, v)
	}
	return out, rows.Err()
}

// TopWorks returns the most opened case studies.
func (s *Store) TopWorks(ctx context.Context, limit int) ([]WorkStat, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT work_id, views, last_seen
		FROM work_views
		ORDER BY views DESC, last_seen DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query work views: %w", err)
	}
	defer rows.Close()

	var out []WorkStat
	for rows.Next() {
		var w WorkStat
		var ts int64
		if err := rows.Scan(&w.WorkID, &w.Views, &ts); err != nil {
			return nil, fmt.Errorf("scan work view: %w", err)
		}
		w.LastSeen = time.UnixMilli(ts).UTC()
		out = append(out, w)
	}
	return out, rows.Err()
}

// Messages returns the most recent contact submissions, newest first.
func (s *Store) Messages(ctx context.Context, limit int) ([]Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, subject, body, outcome, transport, ts
		FROM messages
		ORDER BY ts DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var m Message
		var outcome string
		var ts int64
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &outcome, &m.Transport, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		m.Outcome = contact.Outcome(outcome)
		m.Timestamp = time.UnixMilli(ts).UTC()
		out = append(out, m)
	}
	return out, rows.Err()
}

// Cleanup removes visitor rows older than retention and returns how many were
// deleted.
func (s *Store) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := s.now().Add(-retention).UnixMilli()
	res, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE ts < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("cleanup visitors: %w", err)
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		s.logger.Info("privacy cleanup removed old visitor records", "rows", n, "retention", retention.String())
	}
	return n, nil
}
