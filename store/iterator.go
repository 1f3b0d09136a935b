package store

import (
	"bytes"

	"github.com/google/btree"
)

// mergeIterators combines the items cached in a btree with the iterator of
// the parent store. Cached values overwrite the parent ones, cached deletes
// hide them. Parent iterator is consumed and closed.
func mergeIterators(local []btree.Item, parent Iterator) *SliceIterator {
	defer parent.Close()

	var res []Model
	i := 0
	for i < len(local) || parent.Valid() {
		var cmp int
		switch {
		case i >= len(local):
			cmp = 1
		case !parent.Valid():
			cmp = -1
		default:
			cmp = bytes.Compare(local[i].(keyer).Key(), parent.Key())
		}

		switch {
		case cmp > 0:
			// Only the parent holds this key.
			res = append(res, Pair(parent.Key(), parent.Value()))
			parent.Next()
		case cmp == 0:
			// Local change shadows the parent value.
			parent.Next()
			fallthrough
		default:
			if s, ok := local[i].(setItem); ok {
				res = append(res, Pair(s.key, s.value))
			}
			i++
		}
	}
	return NewSliceIterator(res)
}
