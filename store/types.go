package store

// ReadOnlyKVStore is the read side of the ledger state.
type ReadOnlyKVStore interface {
	// Get returns nil if the key does not exist.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	// Iterator walks keys in [start, end) in ascending order. A nil bound
	// is open. No writes may happen within the range while the iterator
	// is in use.
	Iterator(start, end []byte) (Iterator, error)
}

// SetDeleter is the write side of the ledger state. Keys and values passed
// in must not be modified afterwards.
type SetDeleter interface {
	Set(key, value []byte) error
	Delete(key []byte) error
}

// KVStore is the state every transaction and program sees.
type KVStore interface {
	ReadOnlyKVStore
	SetDeleter
}

// Iterator is a cursor over a key range.
//
//   it, err := kv.Iterator(start, end)
//   ...
//   defer it.Close()
//   for ; it.Valid(); it.Next() {
//     k, v := it.Key(), it.Value()
//   }
//
// Next, Key and Value panic once Valid returns false.
type Iterator interface {
	Valid() bool
	Next()
	Key() []byte
	Value() []byte
	Close()
}

// CacheableKVStore can stage writes in a cache layer.
type CacheableKVStore interface {
	KVStore
	CacheWrap() KVCacheWrap
}

// KVCacheWrap buffers writes on top of a parent store. Reads see the
// buffered writes. Write flushes them to the parent, Discard drops them.
// A cache can be wrapped again, so a transaction and each of its
// instructions get a layer of their own.
type KVCacheWrap interface {
	CacheableKVStore
	Write() error
	Discard()
}

// CommitKVStore is a root store persisting versions of the state.
type CommitKVStore interface {
	// Get reads from the last committed version.
	Get(key []byte) ([]byte, error)
	CacheWrap() KVCacheWrap
	// Commit persists the working state as a new version.
	Commit() (CommitID, error)
	// LoadLatestVersion loads the last version that was fully persisted.
	LoadLatestVersion() error
	LatestVersion() (CommitID, error)
}

// CommitID identifies a persisted version by its number and merkle root.
type CommitID struct {
	Version int64
	Hash    []byte
}

// Model is a key value pair.
type Model struct {
	Key   []byte
	Value []byte
}

// Pair returns a model of key and value.
func Pair(key, value []byte) Model {
	return Model{Key: key, Value: value}
}
