package tree

import (
	"iter"
)

// All traversals are iterative, the deep tree doesn't grow the
// goroutine stack. Each call of the returned sequence restarts
// from the root. Mutating the map while ranging is not supported.

func (tree *rbTree[K, V]) PreOrder() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if tree.root == nil {
			return
		}
		stack := make([]*rbNode[K, V], 0, 64)
		stack = append(stack, tree.root)
		for size := len(stack); size > 0; size = len(stack) {
			aux := stack[size-1]
			stack = stack[:size-1]
			if !yield(aux.key, aux.val) {
				return
			}
			if aux.right != nil {
				stack = append(stack, aux.right)
			}
			if aux.left != nil {
				stack = append(stack, aux.left)
			}
		}
	}
}

func (tree *rbTree[K, V]) InOrder() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		tree.Foreach(func(_ int64, _ RBColor, key K, val V) bool {
			return yield(key, val)
		})
	}
}

func (tree *rbTree[K, V]) PostOrder() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		var (
			stack = make([]*rbNode[K, V], 0, 64)
			last  *rbNode[K, V]
		)
		for aux := tree.root; aux != nil || len(stack) > 0; {
			if aux != nil {
				stack = append(stack, aux)
				aux = aux.left
				continue
			}
			top := stack[len(stack)-1]
			if top.right != nil && top.right != last {
				aux = top.right
				continue
			}
			if !yield(top.key, top.val) {
				return
			}
			last = top
			stack = stack[:len(stack)-1]
		}
	}
}

func (tree *rbTree[K, V]) LevelOrder() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		if tree.root == nil {
			return
		}
		queue := make([]*rbNode[K, V], 0, 64)
		queue = append(queue, tree.root)
		for len(queue) > 0 {
			aux := queue[0]
			queue = queue[1:]
			if !yield(aux.key, aux.val) {
				return
			}
			if aux.left != nil {
				queue = append(queue, aux.left)
			}
			if aux.right != nil {
				queue = append(queue, aux.right)
			}
		}
	}
}

// Clone copies every node, colors and counters included.
// The new map shares no node with the source, but records into the
// same stats, so the size metric sums both maps.
func (tree *rbTree[K, V]) Clone() OrderedMap[K, V] {
	dup := &rbTree[K, V]{
		count:  tree.count,
		isDesc: tree.isDesc,
		stats:  tree.stats,
	}
	dup.stats.RecordSize(dup.count)
	if tree.root == nil {
		return dup
	}

	type pair struct {
		src, dst *rbNode[K, V]
	}
	cloneNode := func(src, parent *rbNode[K, V]) *rbNode[K, V] {
		return &rbNode[K, V]{
			parent: parent,
			key:    src.key,
			val:    src.val,
			lCount: src.lCount,
			rCount: src.rCount,
			color:  src.color,
		}
	}

	dup.root = cloneNode(tree.root, nil)
	stack := make([]pair, 0, 64)
	stack = append(stack, pair{src: tree.root, dst: dup.root})
	for size := len(stack); size > 0; size = len(stack) {
		aux := stack[size-1]
		stack = stack[:size-1]
		if aux.src.left != nil {
			aux.dst.left = cloneNode(aux.src.left, aux.dst)
			stack = append(stack, pair{src: aux.src.left, dst: aux.dst.left})
		}
		if aux.src.right != nil {
			aux.dst.right = cloneNode(aux.src.right, aux.dst)
			stack = append(stack, pair{src: aux.src.right, dst: aux.dst.right})
		}
	}
	return dup
}
