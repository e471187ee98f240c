package tree

import (
	"errors"
	"iter"

	"github.com/benz9527/xrank/lib/infra"
)

// go install golang.org/x/tools/cmd/stringer@latest

//go:generate stringer -type=RBColor
type RBColor uint8

const (
	Black RBColor = iota
	Red
)

//go:generate stringer -type=RBDirection
type RBDirection int8

const (
	Left RBDirection = -1 + iota
	Root
	Right
)

var (
	ErrKeyExists   = errors.New("[rbtree] key exists")
	ErrKeyNotFound = errors.New("[rbtree] key not found")
)

type RBNode[K infra.OrderedKey, V any] interface {
	Key() K
	Val() V
	Color() RBColor
	// LeftCount is the number of nodes in the left subtree.
	LeftCount() int64
	// RightCount is the number of nodes in the right subtree.
	RightCount() int64
	Left() RBNode[K, V]
	Right() RBNode[K, V]
	Parent() RBNode[K, V]
}

// OrderedMap is a red-black tree keeps unique keys in order and
// supports order-statistics queries in O(log n).
// It is not thread safe, see SyncOrderedMap.
type OrderedMap[K infra.OrderedKey, V any] interface {
	Len() int64
	Empty() bool
	Root() RBNode[K, V]
	// Insert returns false if the key is present already, and the
	// tree is left untouched.
	Insert(key K, val V) bool
	// Pop removes the key. Returns false if the key is absent.
	Pop(key K) bool
	// Search returns the reference of the stored value, or nil.
	// The reference is valid until the key is popped.
	Search(key K) *V
	Get(key K) (V, bool)
	Contains(key K) bool
	// Select returns the value of the k-th (1-indexed) key in map order.
	Select(k int64) *V
	SelectKey(k int64) (K, bool)
	// ISelect returns the value of the k-th (1-indexed) key from the end.
	ISelect(k int64) *V
	ISelectKey(k int64) (K, bool)
	// Rank returns the 1-indexed position of key in map order.
	// If the key is absent, it returns the position the key would
	// take after an insertion.
	Rank(key K) int64
	// IRank is the Rank counts from the end.
	IRank(key K) int64
	PreOrder() iter.Seq2[K, V]
	InOrder() iter.Seq2[K, V]
	PostOrder() iter.Seq2[K, V]
	LevelOrder() iter.Seq2[K, V]
	Foreach(action func(idx int64, color RBColor, key K, val V) bool)
	Clone() OrderedMap[K, V]
	Clear()
}
