package tree

import (
	"errors"
	"fmt"

	"github.com/benz9527/xrank/lib/infra"
)

func isBlack[K infra.OrderedKey, V any](node RBNode[K, V]) bool {
	return node == nil || node.Color() == Black
}

func isRed[K infra.OrderedKey, V any](node RBNode[K, V]) bool {
	return node != nil && node.Color() == Red
}

func isRoot[K infra.OrderedKey, V any](node RBNode[K, V]) bool {
	return node != nil && node.Parent() == nil
}

func blackDepthTo[K infra.OrderedKey, V any](target, to RBNode[K, V]) int {
	depth := 0
	for aux := target; aux != to; aux = aux.Parent() {
		if isBlack[K, V](aux) {
			depth++
		}
	}
	return depth
}

// rbtree rule validation utilities.

// References:
// https://github1s.com/minghu6/rust-minghu6/blob/master/coll_st/src/bst/rb.rs

// Inorder traversal to validate the rbtree properties.
func RedViolationValidate[K infra.OrderedKey, V any](tree OrderedMap[K, V]) error {
	aux := tree.Root()
	if aux == nil {
		return nil
	}
	if isRed[K, V](aux) {
		return errors.New("rbtree root red violation")
	}

	stack := make([]RBNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.Left() {
		stack = append(stack, aux)
	}

	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; isRed[K, V](aux) {
			if isRed[K, V](aux.Left()) || isRed[K, V](aux.Right()) {
				return fmt.Errorf("rbtree red violation at key %v", aux.Key())
			}
		}

		stack = stack[:size-1]
		for aux = aux.Right(); aux != nil; aux = aux.Left() {
			stack = append(stack, aux)
		}
	}
	return nil
}

// BFS traversal to load all leaves.
// A node with a nil child is a leaf here, because the nil child is
// the real (black) leaf.
func bfsLeaves[K infra.OrderedKey, V any](tree OrderedMap[K, V]) []RBNode[K, V] {
	aux := tree.Root()
	if aux == nil {
		return nil
	}

	leaves := make([]RBNode[K, V], 0, tree.Len()>>1+1)
	queue := make([]RBNode[K, V], 0, 64)
	queue = append(queue, aux)

	for len(queue) > 0 {
		aux = queue[0]
		l, r := aux.Left(), aux.Right()
		if /* nil leaves, keep one */ l == nil || r == nil {
			leaves = append(leaves, aux)
		}
		if l != nil {
			queue = append(queue, l)
		}
		if r != nil {
			queue = append(queue, r)
		}
		queue = queue[1:]
	}
	return leaves
}

/*
<X> is a RED node.
[X] is a BLACK node (or NIL).

	        [13]
			/  \
		 <8>    [15]
		 / \    /  \
	  [6] [11] [14] [17]
	  /              /
	<1>            [16]

2-3-4 tree like:

	       <8> --- [13] --- <15>
		  /  \             /    \
		 /    \           /      \
	  <1>-[6][11]      [14] <16>-[17]

Each leaf node to root node black depth are equal.
*/
func BlackViolationValidate[K infra.OrderedKey, V any](tree OrderedMap[K, V]) error {
	leaves := bfsLeaves[K, V](tree)
	if leaves == nil {
		return nil
	}

	root := tree.Root()
	blackDepth := blackDepthTo[K, V](leaves[0], root)
	for i := 1; i < len(leaves); i++ {
		if blackDepthTo[K, V](leaves[i], root) != blackDepth {
			return fmt.Errorf("rbtree black violation at key %v", leaves[i].Key())
		}
	}
	return nil
}

// Recount every subtree recursively and compare with the counters
// maintained by the mutations.
func CounterViolationValidate[K infra.OrderedKey, V any](tree OrderedMap[K, V]) error {
	var recount func(node RBNode[K, V]) (int64, error)
	recount = func(node RBNode[K, V]) (int64, error) {
		if node == nil {
			return 0, nil
		}
		l, err := recount(node.Left())
		if err != nil {
			return 0, err
		}
		r, err := recount(node.Right())
		if err != nil {
			return 0, err
		}
		if l != node.LeftCount() || r != node.RightCount() {
			return 0, fmt.Errorf("rbtree counter violation at key %v, (%d, %d) expected (%d, %d)",
				node.Key(), node.LeftCount(), node.RightCount(), l, r)
		}
		return l + r + 1, nil
	}

	total, err := recount(tree.Root())
	if err != nil {
		return err
	}
	if total != tree.Len() {
		return fmt.Errorf("rbtree size violation, len %d, nodes %d", tree.Len(), total)
	}
	if root := tree.Root(); root != nil && root.LeftCount()+root.RightCount()+1 != tree.Len() {
		return fmt.Errorf("rbtree root counter violation, len %d", tree.Len())
	}
	return nil
}

// OrderViolationValidate checks the inorder keys are strictly ascending
// (or strictly descending if desc).
func OrderViolationValidate[K infra.OrderedKey, V any](tree OrderedMap[K, V], desc ...bool) error {
	isDesc := len(desc) > 0 && desc[0]
	var (
		prev K
		err  error
	)
	tree.Foreach(func(idx int64, color RBColor, key K, val V) bool {
		if idx > 0 && ((!isDesc && prev >= key) || (isDesc && prev <= key)) {
			err = fmt.Errorf("rbtree order violation at index %d, key %v after %v", idx, key, prev)
			return false
		}
		prev = key
		return true
	})
	return err
}

// Validate runs all the rbtree validations.
func Validate[K infra.OrderedKey, V any](tree OrderedMap[K, V], desc ...bool) error {
	if err := OrderViolationValidate[K, V](tree, desc...); err != nil {
		return err
	}
	if err := RedViolationValidate[K, V](tree); err != nil {
		return err
	}
	if err := BlackViolationValidate[K, V](tree); err != nil {
		return err
	}
	return CounterViolationValidate[K, V](tree)
}
