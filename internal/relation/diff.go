// Package relation keeps the product <-> collection membership consistent on
// both sides of the relationship.
package relation

import "github.com/abgdnv/catalog/internal/model"

// Delta is the reverse-side work needed to move a product from its current
// collections to the desired ones. ToAdd and ToRemove are disjoint.
type Delta struct {
	ToAdd    []model.ID
	ToRemove []model.ID
}

// Empty reports whether no collection has to be touched.
func (d Delta) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// Diff computes ToAdd = desired \ current and ToRemove = current \ desired.
// Output order follows the input order and repeated ids are collapsed.
func Diff(current, desired []model.ID) Delta {
	currentSet := model.NewIDSet(current...)
	desiredSet := model.NewIDSet(desired...)

	var d Delta
	added := make(model.IDSet, len(desired))
	for _, id := range desired {
		if !currentSet.Has(id) && added.Add(id) {
			d.ToAdd = append(d.ToAdd, id)
		}
	}
	removed := make(model.IDSet, len(current))
	for _, id := range current {
		if !desiredSet.Has(id) && removed.Add(id) {
			d.ToRemove = append(d.ToRemove, id)
		}
	}
	return d
}
