package search

import (
	"math/rand"
	"testing"

	"cardbot/internal/mtg"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate_MergesOwnersAcrossSources(t *testing.T) {
	records := []mtg.CardRecord{
		{Name: "Llanowar Elves", SetCode: "dom", CollectorNumber: "168", Quantity: 1, OwnerLabel: "alice", ReferencePrice: "0.35"},
		{Name: "Llanowar Elves", SetCode: "DOM", CollectorNumber: "168", Quantity: 2, OwnerLabel: "bob", ReferencePrice: "0.40"},
	}

	cards := Aggregate(records)

	require.Len(t, cards, 1)
	assert.Equal(t, []mtg.OwnerQuantity{{OwnerLabel: "alice", Quantity: 1}, {OwnerLabel: "bob", Quantity: 2}}, cards[0].Owners)
	assert.Equal(t, "dom", cards[0].SetCode, "first record wins")
	assert.Equal(t, "0.35", cards[0].ReferencePrice)
	assert.Equal(t, int64(3), cards[0].TotalQuantity())
}

func TestAggregate_SumsSameOwner(t *testing.T) {
	records := []mtg.CardRecord{
		{Name: "Sol Ring", SetCode: "c21", CollectorNumber: "263", Quantity: 1, OwnerLabel: "alice"},
		{Name: "Sol Ring", SetCode: "cmr", CollectorNumber: "472", Quantity: 1, OwnerLabel: "alice"},
		{Name: "Sol Ring", SetCode: "c21", CollectorNumber: "263", Quantity: 4, OwnerLabel: "alice"},
	}

	cards := Aggregate(records)

	require.Len(t, cards, 2)
	assert.Equal(t, "c21", cards[0].SetCode)
	assert.Equal(t, []mtg.OwnerQuantity{{OwnerLabel: "alice", Quantity: 5}}, cards[0].Owners)
	assert.Equal(t, "cmr", cards[1].SetCode)
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil))
	assert.NotNil(t, Aggregate(nil))
}

func TestAggregate_IgnoresNegativeQuantity(t *testing.T) {
	cards := Aggregate([]mtg.CardRecord{{Name: "Island", SetCode: "unh", CollectorNumber: "136", Quantity: -1, OwnerLabel: "x"}})
	assert.Empty(t, cards)
}

func totals(cards []mtg.ConsolidatedCard) map[mtg.IdentityKey]map[string]int64 {
	out := make(map[mtg.IdentityKey]map[string]int64)
	for _, c := range cards {
		owners := make(map[string]int64)
		for _, o := range c.Owners {
			_, dup := owners[o.OwnerLabel]
			if dup {
				panic("duplicate owner " + o.OwnerLabel)
			}
			owners[o.OwnerLabel] = o.Quantity
		}
		out[c.Key] = owners
	}
	return out
}

func TestAggregate_OrderIndependentTotals(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{"Llanowar Elves", "Sol Ring", "Counterspell"}
	sets := []string{"dom", "DOM", "m19"}
	owners := []string{"alice", "bob", "carol", "dave"}

	records := make([]mtg.CardRecord, 200)
	want := make(map[mtg.IdentityKey]int64)
	for i := range records {
		records[i] = mtg.CardRecord{
			Name:            names[rng.Intn(len(names))],
			SetCode:         sets[rng.Intn(len(sets))],
			CollectorNumber: "1",
			Quantity:        int64(rng.Intn(5)),
			OwnerLabel:      owners[rng.Intn(len(owners))],
		}
		want[records[i].Key()] += records[i].Quantity
	}

	base := Aggregate(records)
	for _, c := range base {
		assert.Equal(t, want[c.Key], c.TotalQuantity(), c.Key.String())
	}

	for n := 0; n < 5; n++ {
		shuffled := append([]mtg.CardRecord(nil), records...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		again := Aggregate(shuffled)
		if diff := cmp.Diff(totals(base), totals(again), cmpopts.EquateEmpty()); diff != "" {
			t.Fatalf("totals depend on input order (-base +shuffled):\n%s", diff)
		}
	}
}
