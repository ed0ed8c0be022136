package domain_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.trai.ch/parcel/internal/core/domain"
)

func entry(name, version, platform string) domain.IndexEntry {
	return domain.IndexEntry{Name: name, Version: domain.MustParseVersion(version), Platform: platform}
}

func TestPackageIndex_QuerySortsDescending(t *testing.T) {
	idx := domain.NewPackageIndex()
	idx.Add(entry("foo", "1.0", "any"))
	idx.Add(entry("foo", "1.2", "linux-amd64"))
	idx.Add(entry("foo", "1.2", "darwin-arm64"))
	idx.Add(entry("foo", "1.1-beta", "any"))
	idx.Add(entry("bar", "9.0", "any"))

	got := idx.Query("foo")
	require.Len(t, got, 4)
	assert.Equal(t, "foo/1.2.0/darwin-arm64", got[0].Key())
	assert.Equal(t, "foo/1.2.0/linux-amd64", got[1].Key())
	assert.Equal(t, "foo/1.1.0-beta/any", got[2].Key())
	assert.Equal(t, "foo/1.0.0/any", got[3].Key())

	assert.Empty(t, idx.Query("missing"))
}

func TestPackageIndex_Deduplicates(t *testing.T) {
	idx := domain.NewPackageIndex()
	idx.Add(entry("foo", "1.0", "any"))
	idx.Add(entry("foo", "1.0.0", "any"))
	idx.Add(entry("foo", "1.0", ""))

	assert.Equal(t, 1, idx.Len())
}

func TestPackageIndex_Merge(t *testing.T) {
	local := domain.NewPackageIndex()
	local.Add(entry("foo", "0.9", "any"))
	local.Add(entry("foo", "1.0", "any"))

	remote := domain.NewPackageIndex()
	remote.Add(entry("foo", "1.0", "any"))
	remote.Add(entry("foo", "1.1", "any"))
	remote.Add(entry("bar", "2.0", "any"))

	merged := local.Merge(remote)

	assert.Equal(t, 4, merged.Len())
	assert.Equal(t, []string{"bar", "foo"}, merged.Names())
	assert.Equal(t, 2, local.Len(), "merge must not modify its receiver")
	assert.Equal(t, 3, remote.Len(), "merge must not modify its argument")
}

func TestPackageIndex_AllNames(t *testing.T) {
	idx := domain.NewPackageIndex()
	idx.Add(entry("foo", "1.0", "any"))
	idx.Add(entry("foo", "1.1", "linux-amd64"))
	idx.Add(entry("foo", "1.1", "darwin-arm64"))
	idx.Add(entry("bar", "2.0", "any"))

	all, err := idx.AllNames(nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Len(t, all["foo"], 2)
	assert.Equal(t, "1.1.0", all["foo"][0].String())
	assert.Equal(t, "1.0.0", all["foo"][1].String())

	filtered, err := idx.AllNames([]string{"bar", "baz"})
	require.NoError(t, err)
	assert.Len(t, filtered, 1)
	assert.Contains(t, filtered, "bar")
}

func TestPackageIndex_AllNamesEmpty(t *testing.T) {
	idx := domain.NewPackageIndex()
	idx.Add(entry("foo", "1.0", "any"))

	_, err := idx.AllNames([]string{"nope"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrEmptyResult))
	assert.Contains(t, err.Error(), "no packages found")

	_, err = domain.NewPackageIndex().AllNames(nil)
	assert.True(t, errors.Is(err, domain.ErrEmptyResult))
}
