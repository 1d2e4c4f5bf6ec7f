package search

import "cardbot/internal/mtg"

// Aggregate merges records into one ConsolidatedCard per identity key.
// Cards come out in first-seen order and owners in first-insertion order.
// Quantities of the same owner are summed. The first record seen for an
// identity supplies its display fields. Records with a negative quantity
// are ignored.
func Aggregate(records []mtg.CardRecord) []mtg.ConsolidatedCard {
	cards := []mtg.ConsolidatedCard{}
	byKey := make(map[mtg.IdentityKey]int)
	// owners[i] maps an owner label to its slot in cards[i].Owners.
	var owners []map[string]int

	for _, r := range records {
		if r.Quantity < 0 {
			continue
		}
		key := r.Key()
		i, ok := byKey[key]
		if !ok {
			i = len(cards)
			byKey[key] = i
			cards = append(cards, mtg.ConsolidatedCard{
				Key:             key,
				DisplayName:     r.Name,
				SetCode:         r.SetCode,
				CollectorNumber: r.CollectorNumber,
				ReferencePrice:  r.ReferencePrice,
			})
			owners = append(owners, make(map[string]int))
		}

		c := &cards[i]
		if j, seen := owners[i][r.OwnerLabel]; seen {
			c.Owners[j].Quantity += r.Quantity
			continue
		}
		owners[i][r.OwnerLabel] = len(c.Owners)
		c.Owners = append(c.Owners, mtg.OwnerQuantity{OwnerLabel: r.OwnerLabel, Quantity: r.Quantity})
	}
	return cards
}
