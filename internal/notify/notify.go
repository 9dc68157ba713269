// Package notify delivers alert summaries to the user.
package notify

import (
	"context"
	"fmt"
	"log"
	"strings"

	"merkwatch/watcher-service/internal/model"
)

// Notifier is the delivery sink for qualifying items. Implementations
// must treat an empty slice as a no-op.
type Notifier interface {
	Notify(ctx context.Context, items []model.AlertItem) error
}

// FormatAlerts renders the notification title and body. A single item
// gets a detailed message including the previous discount; two or more
// items get a combined summary, one line per item.
func FormatAlerts(items []model.AlertItem) (title, message string) {
	if len(items) == 0 {
		return "", ""
	}

	if len(items) == 1 {
		item := items[0]
		return "Neuer Rabatt!", fmt.Sprintf(
			"%q ist jetzt mit %s%% Rabatt verfügbar! (vorher: %s%%)",
			item.Title, discountOf(item), item.OldDiscount,
		)
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%q (%s%%)", item.Title, discountOf(item)))
	}
	return "Neue Rabatte!", "Neue Rabatte verfügbar für:\n" + strings.Join(lines, "\n")
}

func discountOf(item model.AlertItem) string {
	if item.Discount == nil {
		return "0"
	}
	return *item.Discount
}

// LogNotifier writes alerts to the process log. Used when no delivery
// channel is configured so qualifying items are still visible.
type LogNotifier struct{}

// NewLogNotifier returns a LogNotifier.
func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Notify(_ context.Context, items []model.AlertItem) error {
	if len(items) == 0 {
		return nil
	}
	title, message := FormatAlerts(items)
	log.Printf("[notify] %s %s", title, message)
	return nil
}
