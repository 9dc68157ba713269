package notify_test

import (
	"strings"
	"testing"

	"merkwatch/watcher-service/internal/model"
	"merkwatch/watcher-service/internal/notify"
)

func alertItem(title, discount, oldDiscount string) model.AlertItem {
	return model.AlertItem{
		NormalizedProduct: model.NormalizedProduct{
			Title: title, Available: true, Discount: &discount,
		},
		OldDiscount: oldDiscount,
	}
}

// ── FormatAlerts ───────────────────────────────────────────────────────────

func TestFormatAlerts_Empty(t *testing.T) {
	title, message := notify.FormatAlerts(nil)
	if title != "" || message != "" {
		t.Errorf("FormatAlerts(nil) = (%q, %q), want empty strings", title, message)
	}
}

func TestFormatAlerts_SingleItem(t *testing.T) {
	title, message := notify.FormatAlerts([]model.AlertItem{
		alertItem("Der Prozess", "62", "30"),
	})

	if title != "Neuer Rabatt!" {
		t.Errorf("title = %q, want %q", title, "Neuer Rabatt!")
	}
	for _, want := range []string{"Der Prozess", "62%", "vorher: 30%"} {
		if !strings.Contains(message, want) {
			t.Errorf("message %q missing %q", message, want)
		}
	}
}

func TestFormatAlerts_MultipleItemsCombined(t *testing.T) {
	title, message := notify.FormatAlerts([]model.AlertItem{
		alertItem("Buch A", "55", "0"),
		alertItem("Buch B", "70", "20"),
	})

	if title != "Neue Rabatte!" {
		t.Errorf("title = %q, want %q", title, "Neue Rabatte!")
	}
	for _, want := range []string{"Buch A", "55%", "Buch B", "70%"} {
		if !strings.Contains(message, want) {
			t.Errorf("message %q missing %q", message, want)
		}
	}
	if lines := strings.Split(message, "\n"); len(lines) != 3 {
		t.Errorf("message has %d lines, want header + one per item", len(lines))
	}
}

func TestFormatAlerts_NilDiscountRendersZero(t *testing.T) {
	item := model.AlertItem{
		NormalizedProduct: model.NormalizedProduct{Title: "Ohne Rabatt"},
		OldDiscount:       "0",
	}
	_, message := notify.FormatAlerts([]model.AlertItem{item})
	if !strings.Contains(message, "0%") {
		t.Errorf("message %q should render a nil discount as 0%%", message)
	}
}
