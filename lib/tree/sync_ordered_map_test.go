package tree

import (
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSyncOrderedMap_SimpleCRUD(t *testing.T) {
	m := NewSyncOrderedMap[string, int]()
	require.NoError(t, m.Insert("b", 2))
	require.NoError(t, m.Insert("a", 1))
	require.ErrorIs(t, m.Insert("a", 10), ErrKeyExists)
	m.Upsert("c", 3)
	m.Upsert("a", 11)
	require.Equal(t, int64(3), m.Len())

	val, ok := m.Get("a")
	require.True(t, ok)
	require.Equal(t, 11, val)
	require.True(t, m.Contains("c"))
	require.Equal(t, []string{"a", "b", "c"}, m.Keys())

	key, val, ok := m.Select(2)
	require.True(t, ok)
	require.Equal(t, "b", key)
	require.Equal(t, 2, val)
	key, val, ok = m.ISelect(1)
	require.True(t, ok)
	require.Equal(t, "c", key)
	require.Equal(t, 3, val)
	_, _, ok = m.Select(4)
	require.False(t, ok)
	_, _, ok = m.ISelect(0)
	require.False(t, ok)
	require.Equal(t, int64(3), m.Rank("c"))
	require.Equal(t, int64(1), m.IRank("c"))

	val, err := m.Pop("b")
	require.NoError(t, err)
	require.Equal(t, 2, val)
	_, err = m.Pop("b")
	require.ErrorIs(t, err, ErrKeyNotFound)

	snapshot := m.Snapshot()
	m.Clear()
	require.Equal(t, int64(0), m.Len())
	require.Equal(t, int64(2), snapshot.Len())
	require.NoError(t, Validate(snapshot))
}

func TestSyncOrderedMap_ConcurrentUpdate(t *testing.T) {
	m := NewSyncOrderedMap[string, int]()
	const (
		workers = 8
		keys    = 256
		rounds  = 4
	)
	wg := sync.WaitGroup{}
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for r := 0; r < rounds; r++ {
				for k := 0; k < keys; k++ {
					m.Update(strconv.Itoa(k), func(old int, exists bool) int {
						return old + 1
					})
					_ = m.Rank(strconv.Itoa(k))
				}
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int64(keys), m.Len())
	for k := 0; k < keys; k++ {
		val, ok := m.Get(strconv.Itoa(k))
		require.True(t, ok)
		require.Equal(t, workers*rounds, val)
	}
	require.NoError(t, Validate(m.Snapshot()))
}
