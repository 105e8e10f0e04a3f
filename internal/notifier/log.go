package notifier

import (
	"context"
	"log/slog"

	"github.com/jobsentry/jobsentry/internal/model"
)

// Ensure LogNotifier implements model.Notifier.
var _ model.Notifier = (*LogNotifier)(nil)

// LogNotifier writes would-be deliveries to the logger. Used when no
// webhooks are configured and in check mode.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a notifier that logs each record via slog.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

// Send logs the record. Returns nil (stdout logging does not fail).
func (n *LogNotifier) Send(_ context.Context, rec model.JobRecord) error {
	n.logger.Info("new job",
		"company", rec.Company,
		"title", rec.Title,
		"location", rec.Location,
		"link", rec.Link,
		"source", rec.Source,
		"category", string(rec.Category),
	)
	return nil
}
