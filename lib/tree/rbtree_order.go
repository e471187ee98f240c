package tree

// Order statistics by the subtree counters.
// The map order is the key order (ascending by default, descending
// with WithOrderedMapDesc), lCount is the number of keys before the
// node inside its subtree and rCount is the number of keys after it.

func (tree *rbTree[K, V]) selectNode(k int64) *rbNode[K, V] {
	if k <= 0 || k > tree.count {
		return nil
	}

	// The target is the number of keys before the result in the
	// current subtree.
	target, aux := k-1, tree.root
	for aux != nil && target != aux.lCount {
		if target < aux.lCount {
			aux = aux.left
		} else {
			target -= aux.lCount + 1
			aux = aux.right
		}
	}
	return aux
}

func (tree *rbTree[K, V]) iselectNode(k int64) *rbNode[K, V] {
	if k <= 0 || k > tree.count {
		return nil
	}

	target, aux := k-1, tree.root
	for aux != nil && target != aux.rCount {
		if target < aux.rCount {
			aux = aux.right
		} else {
			target -= aux.rCount + 1
			aux = aux.left
		}
	}
	return aux
}

func (tree *rbTree[K, V]) Select(k int64) *V {
	if x := tree.selectNode(k); x != nil {
		return &x.val
	}
	return nil
}

func (tree *rbTree[K, V]) SelectKey(k int64) (key K, ok bool) {
	if x := tree.selectNode(k); x != nil {
		return x.key, true
	}
	return key, false
}

func (tree *rbTree[K, V]) ISelect(k int64) *V {
	if x := tree.iselectNode(k); x != nil {
		return &x.val
	}
	return nil
}

func (tree *rbTree[K, V]) ISelectKey(k int64) (key K, ok bool) {
	if x := tree.iselectNode(k); x != nil {
		return x.key, true
	}
	return key, false
}

// Rank accumulates lCount+1 of every node it leaves to the right,
// all of them (and their left subtrees) are ahead of the key.
// An absent key gets the rank it would take after an insertion.
func (tree *rbTree[K, V]) Rank(key K) int64 {
	r := int64(1)
	for aux := tree.root; aux != nil; {
		res := tree.keyCompare(key, aux.key)
		if res == 0 {
			return r + aux.lCount
		} else if res > 0 {
			r += aux.lCount + 1
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return r
}

func (tree *rbTree[K, V]) IRank(key K) int64 {
	r := int64(1)
	for aux := tree.root; aux != nil; {
		res := tree.keyCompare(key, aux.key)
		if res == 0 {
			return r + aux.rCount
		} else if res < 0 {
			r += aux.rCount + 1
			aux = aux.left
		} else {
			aux = aux.right
		}
	}
	return r
}
