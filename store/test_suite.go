package store

import (
	"bytes"
	"encoding/binary"
	"sort"
	"testing"

	"github.com/iov-one/blueprint/bptest/assert"
)

// TestSuite runs the same set of checks against any CacheableKVStore
// implementation. The constructor is called for every test case and must
// return an empty store.
type TestSuite struct {
	makeBase TestStoreConstructor
}

// TestStoreConstructor returns a fresh, empty store and a function that
// releases its resources.
type TestStoreConstructor func() (base CacheableKVStore, cleanup func())

func NewTestSuite(constructor TestStoreConstructor) *TestSuite {
	return &TestSuite{makeBase: constructor}
}

// GetSet checks that cache layers see the parent data, that their writes
// stay local until written and that a discarded layer leaves no trace.
func (s *TestSuite) GetSet(t *testing.T) {
	base, cleanup := s.makeBase()
	defer cleanup()

	acc, sig, slot := []byte("acct:alice"), []byte("sig:1"), []byte("acct:proposal")
	s.AssertGetHas(t, base, acc, nil, false)
	assert.Nil(t, base.Set(acc, []byte("100")))
	s.AssertGetHas(t, base, acc, []byte("100"), true)

	tx := base.CacheWrap()
	s.AssertGetHas(t, tx, acc, []byte("100"), true)
	assert.Nil(t, tx.Set(sig, []byte{1}))
	s.AssertGetHas(t, tx, sig, []byte{1}, true)
	s.AssertGetHas(t, base, sig, nil, false)
	assert.Nil(t, tx.Write())
	s.AssertGetHas(t, base, sig, []byte{1}, true)

	failed := base.CacheWrap()
	assert.Nil(t, failed.Set(slot, []byte("data")))
	assert.Nil(t, failed.Delete(acc))
	failed.Discard()
	s.AssertGetHas(t, base, slot, nil, false)
	s.AssertGetHas(t, base, acc, []byte("100"), true)

	closing := base.CacheWrap()
	assert.Nil(t, closing.Delete(acc))
	assert.Nil(t, closing.Write())
	s.AssertGetHas(t, base, acc, nil, false)
	s.AssertGetHas(t, base, sig, []byte{1}, true)
}

// CacheConflicts checks that a cache layer can overwrite and delete values
// of its parent without the parent noticing before the write.
func (s *TestSuite) CacheConflicts(t *testing.T) {
	k := seqKeys("acct:", 5)

	cases := map[string]struct {
		parentOps []Op
		childOps  []Op
		// Key is what we query, Value is what we expect.
		parentQueries []Model
		childQueries  []Model
	}{
		"overwrite one, delete another, add a third": {
			parentOps:     []Op{SetOp(k[1], []byte("a")), SetOp(k[2], []byte("b"))},
			childOps:      []Op{SetOp(k[1], []byte("A")), SetOp(k[3], []byte("c")), DelOp(k[2])},
			parentQueries: []Model{Pair(k[1], []byte("a")), Pair(k[2], []byte("b")), Pair(k[3], nil)},
			childQueries:  []Model{Pair(k[1], []byte("A")), Pair(k[2], nil), Pair(k[3], []byte("c"))},
		},
		"delete then set again": {
			parentOps:     []Op{SetOp(k[4], []byte("old"))},
			childOps:      []Op{DelOp(k[4]), SetOp(k[4], []byte("new"))},
			parentQueries: []Model{Pair(k[4], []byte("old"))},
			childQueries:  []Model{Pair(k[4], []byte("new"))},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			parent, cleanup := s.makeBase()
			defer cleanup()

			for _, op := range tc.parentOps {
				assert.Nil(t, op.Apply(parent))
			}
			child := parent.CacheWrap()
			for _, op := range tc.childOps {
				assert.Nil(t, op.Apply(child))
			}
			for _, q := range tc.parentQueries {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
			for _, q := range tc.childQueries {
				s.AssertGetHas(t, child, q.Key, q.Value, q.Value != nil)
			}

			assert.Nil(t, child.Write())
			for _, q := range tc.childQueries {
				s.AssertGetHas(t, parent, q.Key, q.Value, q.Value != nil)
			}
		})
	}
}

// Iterator checks ranges over a cache layer merged with its parent,
// including deletes in the layer and prefix ranges.
func (s *TestSuite) Iterator(t *testing.T) {
	accounts := models("acct:", 20)
	replays := models("sig:", 5)

	all := sortModels(append(append([]Model{}, accounts...), replays...))
	accStart, accEnd := PrefixRange([]byte("acct:"))

	cases := map[string]iterCase{
		"child only": {
			child: makeSetOps(all...),
			queries: []rangeQuery{
				{nil, nil, all},
				{accStart, accEnd, accounts},
				{accounts[5].Key, accounts[9].Key, accounts[5:9]},
			},
		},
		"parent only": {
			pre: makeSetOps(all...),
			queries: []rangeQuery{
				{nil, nil, all},
				{accStart, accEnd, accounts},
			},
		},
		"child and parent combined": {
			pre:   makeSetOps(accounts...),
			child: makeSetOps(replays...),
			queries: []rangeQuery{
				{nil, nil, all},
				{accounts[15].Key, nil, all[15:]},
			},
		},
		"deletes in child hide parent data": {
			pre:   makeSetOps(all...),
			child: makeDelOps(accounts[:10]...),
			queries: []rangeQuery{
				{accStart, accEnd, accounts[10:]},
				{nil, accounts[10].Key, nil},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			tc.verify(t, base)
		})
	}
}

// IteratorWithConflicts checks that values overwritten in a cache layer
// shadow the parent values with the same key.
func (s *TestSuite) IteratorWithConflicts(t *testing.T) {
	ms := models("acct:", 4)
	a, b, c, d := ms[0], ms[1], ms[2], ms[3]
	a2 := Pair(a.Key, []byte("a2"))
	b2 := Pair(b.Key, []byte("b2"))

	cases := map[string]iterCase{
		"overwrite data should show child data": {
			pre:   makeSetOps(a, b, c),
			child: makeSetOps(a2, b2, d),
			queries: []rangeQuery{
				{nil, nil, []Model{a2, b2, c, d}},
				{b.Key, d.Key, []Model{b2, c}},
			},
		},
		"delete and set again in child": {
			pre:   makeSetOps(a, b),
			child: append(makeDelOps(a, b), SetOp(b.Key, b2.Value)),
			queries: []rangeQuery{
				{nil, nil, []Model{b2}},
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			base, cleanup := s.makeBase()
			defer cleanup()
			tc.verify(t, base)
		})
	}
}

// AssertGetHas checks both Get and Has agree with the expected value.
func (s *TestSuite) AssertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	assert.Nil(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	assert.Nil(t, err)
	assert.Equal(t, has, exists)
}

// Op is a single write operation recorded for a test case.
type Op struct {
	key   []byte
	value []byte
	del   bool
}

// SetOp returns an operation that sets key to value.
func SetOp(key, value []byte) Op {
	return Op{key: key, value: value}
}

// DelOp returns an operation that removes key.
func DelOp(key []byte) Op {
	return Op{key: key, del: true}
}

// Apply executes the operation on given store.
func (o Op) Apply(kv SetDeleter) error {
	if o.del {
		return kv.Delete(o.key)
	}
	return kv.Set(o.key, o.value)
}

// seqKeys returns count keys with given prefix, in ascending order.
func seqKeys(prefix string, count int) [][]byte {
	res := make([][]byte, count)
	for i := range res {
		var n [8]byte
		binary.BigEndian.PutUint64(n[:], uint64(i))
		res[i] = append([]byte(prefix), n[:]...)
	}
	return res
}

func models(prefix string, count int) []Model {
	keys := seqKeys(prefix, count)
	res := make([]Model, count)
	for i, k := range keys {
		res[i] = Pair(k, append([]byte("value-"), k...))
	}
	return res
}

type iterCase struct {
	pre     []Op
	child   []Op
	queries []rangeQuery
}

func (i iterCase) verify(t testing.TB, base CacheableKVStore) {
	t.Helper()
	for _, op := range i.pre {
		assert.Nil(t, op.Apply(base))
	}
	child := base.CacheWrap()
	for _, op := range i.child {
		assert.Nil(t, op.Apply(child))
	}

	for _, q := range i.queries {
		iter, err := child.Iterator(q.start, q.end)
		assert.Nil(t, err)
		got := Collect(iter)
		if len(got) != len(q.expected) {
			t.Fatalf("want %d items, got %d", len(q.expected), len(got))
		}
		for n := range got {
			if !bytes.Equal(q.expected[n].Key, got[n].Key) {
				t.Fatalf("want key %X at %d, got %X", q.expected[n].Key, n, got[n].Key)
			}
			assert.Equal(t, q.expected[n].Value, got[n].Value)
		}
	}
}

type rangeQuery struct {
	start    []byte
	end      []byte
	expected []Model
}

// sortModels returns a copy of the models sorted by key
func sortModels(models []Model) []Model {
	res := make([]Model, len(models))
	copy(res, models)
	sort.Slice(res, func(i, j int) bool {
		return bytes.Compare(res[i].Key, res[j].Key) < 0
	})
	return res
}

func makeSetOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = SetOp(m.Key, m.Value)
	}
	return res
}

func makeDelOps(ms ...Model) []Op {
	res := make([]Op, len(ms))
	for i, m := range ms {
		res[i] = DelOp(m.Key)
	}
	return res
}
