package values_test

import (
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/novalang/nova/class"
	"github.com/novalang/nova/values"
)

// These exercise spec §8's "VarDump/PrintR-style canonical-string
// round-trip" coverage via golden-file snapshots rather than hand-written
// assertions, for composite shapes where literal-string expectations
// would be hard to read at a glance.

func TestSnapshotNestedCollectionCanonicalString(t *testing.T) {
	inner := values.NewMap()
	inner.AsMap().Put(values.NewString("x"), values.NewInt(1))
	inner.AsMap().Put(values.NewString("y"), values.NewInt(2))

	list := values.NewList(
		values.NewInt(1),
		values.NewString("two"),
		inner,
		values.NewPair(values.NewBool(true), values.Null),
	)

	snaps.MatchSnapshot(t, "nested_collection", list.CanonicalString())
}

func TestSnapshotRangeAndEnumEntryCanonicalString(t *testing.T) {
	r := values.NewRange(1, 10, true)

	suit := class.NewClass("Suit", nil, nil, nil, nil)
	entry := values.NewEnumEntry(suit, "Spades", 0, nil)

	snaps.MatchSnapshot(t, "range", r.CanonicalString())
	snaps.MatchSnapshot(t, "enum_entry", entry.CanonicalString())
}

func TestSnapshotMapPreservesInsertionOrder(t *testing.T) {
	m := values.NewMap()
	for _, k := range []string{"third", "first", "second"} {
		m.AsMap().Put(values.NewString(k), values.NewString(k+"!"))
	}

	snaps.MatchSnapshot(t, "map_insertion_order", m.CanonicalString())
}
