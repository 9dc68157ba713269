package scraper

import "merkwatch/watcher-service/internal/model"

// Normalize maps a merged raw product map into the canonical snapshot
// shape. Pure and total: a record with no variants normalizes to an
// unavailable product with nil price, condition and discount — never an
// error. Output order is the insertion order of the map.
func Normalize(raw *model.RawProductMap) model.Snapshot {
	snapshot := make(model.Snapshot, 0, raw.Len())

	for _, id := range raw.IDs() {
		rec, _ := raw.Get(id)

		p := model.NormalizedProduct{
			ID:    rec.ID,
			Title: rec.Title,
			Link:  rec.Link,
		}
		if p.ID == "" {
			p.ID = id
		}

		if len(rec.Variants) > 0 {
			v := rec.Variants[0]
			p.Available = true
			price := v.Price
			p.Price = &price
			if v.Condition != "" {
				condition := v.Condition
				p.Condition = &condition
			}
			if v.ListPriceDiscountPercent != "" {
				discount := v.ListPriceDiscountPercent
				p.Discount = &discount
			}
		}

		snapshot = append(snapshot, p)
	}

	return snapshot
}
