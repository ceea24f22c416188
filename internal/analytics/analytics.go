package analytics

import (
	"context"
	"time"

	"gabers-bot/internal/storage"
)

type Service struct {
	history *storage.History
}

func New(history *storage.History) *Service {
	return &Service{history: history}
}

type Report struct {
	Total   int
	ByLevel map[string]int
	ByTitle map[string]int
}

func (s *Service) Report(ctx context.Context, guildID string, since time.Time) (Report, error) {
	report := Report{ByLevel: make(map[string]int), ByTitle: make(map[string]int)}
	if s.history == nil {
		return report, nil
	}
	entries, err := s.history.List(ctx, guildID, since)
	if err != nil {
		return Report{}, err
	}
	for _, entry := range entries {
		report.Total++
		report.ByLevel[entry.Level]++
		report.ByTitle[entry.Title]++
	}
	return report, nil
}
