package iavl

import (
	"io/ioutil"
	"os"
	"testing"

	"github.com/iov-one/blueprint/bptest/assert"
	"github.com/iov-one/blueprint/store"
)

// makeBase returns the base layer
func makeBase() (store.CacheableKVStore, func()) {
	commit, cleanup := makeCommitStore()
	return commit.Adapter(), cleanup
}

func makeCommitStore() (*CommitStore, func()) {
	tmpDir, err := ioutil.TempDir("", "iavl-adapter-")
	if err != nil {
		panic(err)
	}
	commit, err := NewCommitStore(tmpDir, "base")
	if err != nil {
		panic(err)
	}
	cleanup := func() {
		commit.Close()
		os.RemoveAll(tmpDir)
	}
	return commit, cleanup
}

func TestCacheGetSet(t *testing.T) {
	store.NewTestSuite(makeBase).GetSet(t)
}

func TestCacheConflicts(t *testing.T) {
	store.NewTestSuite(makeBase).CacheConflicts(t)
}

func TestFuzzCacheIterator(t *testing.T) {
	store.NewTestSuite(makeBase).Iterator(t)
}

func TestConflictCacheIterator(t *testing.T) {
	store.NewTestSuite(makeBase).IteratorWithConflicts(t)
}

// TestCommitOverwrite checks that we commit properly
// and can add/overwrite/query in the next adapter
func TestCommitOverwrite(t *testing.T) {
	suite := store.NewTestSuite(makeBase)
	k1, k2, k3 := []byte("one"), []byte("two"), []byte("three")
	v1, v2, v3, v11 := []byte("1"), []byte("2"), []byte("3"), []byte("11")

	commit, cleanup := makeCommitStore()
	defer cleanup()
	// only one to trigger a cleanup
	commit.numHistory = 1

	id, err := commit.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, int64(0), id.Version)
	if len(id.Hash) != 0 {
		t.Fatal("hash is not empty")
	}

	parent := commit.CacheWrap()
	assert.Nil(t, parent.Set(k1, v1))
	assert.Nil(t, parent.Set(k2, v2))
	assert.Nil(t, parent.Write())
	id, err = commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(1), id.Version)
	if len(id.Hash) == 0 {
		t.Fatal("hash is empty")
	}
	firstHash := id.Hash

	child := commit.CacheWrap()
	assert.Nil(t, child.Set(k1, v11))
	assert.Nil(t, child.Set(k3, v3))
	assert.Nil(t, child.Delete(k2))

	// a side cache wrap sees the unmodified state
	side := commit.CacheWrap()
	suite.AssertGetHas(t, side, k1, v1, true)
	suite.AssertGetHas(t, side, k2, v2, true)
	suite.AssertGetHas(t, side, k3, nil, false)

	assert.Nil(t, child.Write())
	suite.AssertGetHas(t, side, k1, v11, true)
	suite.AssertGetHas(t, side, k2, nil, false)

	// committed state does not change before commit
	got, err := commit.Get(k1)
	assert.Nil(t, err)
	assert.Equal(t, v1, got)

	id, err = commit.Commit()
	assert.Nil(t, err)
	assert.Equal(t, int64(2), id.Version)
	if string(id.Hash) == string(firstHash) {
		t.Fatal("hash did not change")
	}
	got, err = commit.Get(k1)
	assert.Nil(t, err)
	assert.Equal(t, v11, got)
}

func TestReloadFromDisk(t *testing.T) {
	tmpDir, err := ioutil.TempDir("", "iavl-reload-")
	assert.Nil(t, err)
	defer os.RemoveAll(tmpDir)

	commit, err := NewCommitStore(tmpDir, "state")
	assert.Nil(t, err)
	assert.Nil(t, commit.LoadLatestVersion())
	cache := commit.CacheWrap()
	assert.Nil(t, cache.Set([]byte("key"), []byte("value")))
	assert.Nil(t, cache.Write())
	want, err := commit.Commit()
	assert.Nil(t, err)
	commit.Close()

	reopened, err := NewCommitStore(tmpDir, "state")
	assert.Nil(t, err)
	defer reopened.Close()
	assert.Nil(t, reopened.LoadLatestVersion())
	got, err := reopened.LatestVersion()
	assert.Nil(t, err)
	assert.Equal(t, want, got)
	val, err := reopened.Get([]byte("key"))
	assert.Nil(t, err)
	assert.Equal(t, []byte("value"), val)
}
