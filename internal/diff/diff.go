// Package diff implements the edge-triggered snapshot comparison that
// decides which wishlist items to alert on.
package diff

import (
	"strconv"
	"strings"

	"merkwatch/watcher-service/internal/model"
)

// Detect compares the previous snapshot to the current one and returns
// the items whose discount newly crossed the threshold.
//
// An item qualifies only when all of the following hold:
//   - it existed in the previous snapshot (matched by id),
//   - its current discount parses to an integer >= threshold,
//   - its previous discount was absent, unparsable, or < threshold.
//
// The comparison is edge-triggered: an item that stays above threshold
// across consecutive runs fires exactly once, at the crossing. A nil
// previous snapshot (first run ever) yields no alerts. Output order
// follows the iteration order of current.
//
// Detect is pure and never fails: a record with a missing or unparsable
// discount simply cannot qualify.
func Detect(previous, current model.Snapshot, threshold int, conditionFilter string) []model.AlertItem {
	if previous == nil {
		return nil
	}

	prevByID := make(map[string]model.NormalizedProduct, len(previous))
	for _, p := range previous {
		prevByID[p.ID] = p
	}

	var alerts []model.AlertItem
	for _, item := range current {
		if conditionFilter != model.ConditionAll {
			if item.Condition == nil || *item.Condition != conditionFilter {
				continue
			}
		}

		prev, existed := prevByID[item.ID]
		if !existed {
			continue
		}

		discount, ok := parseDiscount(item.Discount)
		if !ok || discount < threshold {
			continue
		}

		// Unparsable previous discounts count as absent, never as zero.
		if prevDiscount, ok := parseDiscount(prev.Discount); ok && prevDiscount >= threshold {
			continue
		}

		oldDiscount := "0"
		if prev.Discount != nil && *prev.Discount != "" {
			oldDiscount = *prev.Discount
		}

		alerts = append(alerts, model.AlertItem{
			NormalizedProduct: item,
			OldDiscount:       oldDiscount,
		})
	}

	return alerts
}

// parseDiscount interprets a discount string as a base-10 non-negative
// integer. Nil, empty, negative or non-numeric values report false.
func parseDiscount(s *string) (int, bool) {
	if s == nil {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(*s))
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}
