package tree

import (
	"github.com/benz9527/xrank/lib/infra"
)

var _ OrderedMap[int, int] = (*rbTree[int, int])(nil)

type rbNode[K infra.OrderedKey, V any] struct {
	parent *rbNode[K, V]
	left   *rbNode[K, V]
	right  *rbNode[K, V]
	key    K
	val    V
	lCount int64
	rCount int64
	color  RBColor
}

func (node *rbNode[K, V]) Color() RBColor {
	return node.color
}

func (node *rbNode[K, V]) Key() K {
	return node.key
}

func (node *rbNode[K, V]) Val() V {
	return node.val
}

func (node *rbNode[K, V]) LeftCount() int64 {
	if node == nil {
		return 0
	}
	return node.lCount
}

func (node *rbNode[K, V]) RightCount() int64 {
	if node == nil {
		return 0
	}
	return node.rCount
}

func (node *rbNode[K, V]) Left() RBNode[K, V] {
	if node == nil || node.left == nil {
		return nil
	}
	return node.left
}

func (node *rbNode[K, V]) Parent() RBNode[K, V] {
	if node == nil || node.parent == nil {
		return nil
	}
	return node.parent
}

func (node *rbNode[K, V]) Right() RBNode[K, V] {
	if node == nil || node.right == nil {
		return nil
	}
	return node.right
}

// A nil child is a black leaf.
func (node *rbNode[K, V]) isRed() bool {
	return node != nil && node.color == Red
}

func (node *rbNode[K, V]) isBlack() bool {
	return node == nil || node.color == Black
}

func (node *rbNode[K, V]) isRoot() bool {
	return node != nil && node.parent == nil
}

func (node *rbNode[K, V]) Direction() RBDirection {
	if node == nil {
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] nil leaf node without direction")
	}

	if node.isRoot() {
		return Root
	}
	if node == node.parent.left {
		return Left
	}
	return Right
}

func (node *rbNode[K, V]) sibling() *rbNode[K, V] {
	switch node.Direction() {
	case Left:
		return node.parent.right
	case Right:
		return node.parent.left
	default:
	}
	return nil
}

func (node *rbNode[K, V]) fixLink() {
	if node.left != nil {
		node.left.parent = node
	}
	if node.right != nil {
		node.right.parent = node
	}
}

func (node *rbNode[K, V]) unlink() {
	node.parent = nil
	node.left = nil
	node.right = nil
}

type rbTree[K infra.OrderedKey, V any] struct {
	root   *rbNode[K, V]
	count  int64
	isDesc bool
	stats  *omapStats
}

func (tree *rbTree[K, V]) keyCompare(k1, k2 K) int64 {
	if tree.isDesc {
		return infra.DescKeyCompare[K](k1, k2)
	}
	return infra.AscKeyCompare[K](k1, k2)
}

func (tree *rbTree[K, V]) Len() int64 {
	return tree.count
}

func (tree *rbTree[K, V]) Empty() bool {
	return tree.count == 0
}

func (tree *rbTree[K, V]) Root() RBNode[K, V] {
	if tree.root == nil {
		return nil
	}
	return tree.root
}

// References:
// https://en.wikipedia.org/wiki/Red%E2%80%93black_tree#Properties
// https://en.wikipedia.org/wiki/Order_statistic_tree
// p1. Every node is either red or black.
// p2. All NIL nodes are considered black.
// p3. A red node does not have a red child. (red-violation)
// p4. Every path from a given node to any of its descendant
//   NIL nodes goes through the same number of black nodes. (black-violation)
// p5. The root is black.
// c1. lCount and rCount of every node are the sizes of its left
//   and right subtrees. They are adjusted in place along the mutation
//   path, never recounted.
// The longest path nodes' number is 2 * shortest path nodes' number,
// so the height is bounded by 2*log2(n+1).

/*
Only the counters of X and S change, the subtrees L, Sc and Sd
keep their own.

		 |                         |
		 X                         S
		/ \     leftRotate(X)     / \
	   L   S    ============>    X   Sd
		  / \                   / \
		Sc   Sd                L   Sc

X.rCount = |Sc| = S.lCount (before)
S.lCount = |L| + 1 + |Sc| = X.lCount + 1 + S.lCount (before)
*/
func (tree *rbTree[K, V]) leftRotate(x *rbNode[K, V]) bool {
	if x == nil || x.right == nil {
		return false
	}

	p, y := x.parent, x.right
	dir := x.Direction()
	sc := y.lCount
	y.lCount += x.lCount + 1
	x.rCount = sc
	x.right, y.left = y.left, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to left-rotate")
	}
	y.parent = p
	tree.stats.IncreaseRotateCount()
	return true
}

/*
		 |                         |
		 X                         L
		/ \    rightRotate(X)     / \
	   L   R   ============>    Ld   X
	  / \                           / \
	Ld   Lc                       Lc   R

X.lCount = |Lc| = L.rCount (before)
L.rCount = |Lc| + 1 + |R| = L.rCount (before) + 1 + X.rCount
*/
func (tree *rbTree[K, V]) rightRotate(x *rbNode[K, V]) bool {
	if x == nil || x.left == nil {
		return false
	}

	p, y := x.parent, x.left
	dir := x.Direction()
	lc := y.rCount
	y.rCount += x.rCount + 1
	x.lCount = lc
	x.left, y.right = y.right, x

	x.fixLink()
	y.fixLink()

	switch dir {
	case Root:
		tree.root = y
	case Left:
		p.left = y
	case Right:
		p.right = y
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] unknown node direction to right-rotate")
	}
	y.parent = p
	tree.stats.IncreaseRotateCount()
	return true
}

// Rotate x down to the dir side.
func (tree *rbTree[K, V]) rotateTo(x *rbNode[K, V], dir RBDirection) bool {
	switch dir {
	case Left:
		return tree.leftRotate(x)
	case Right:
		return tree.rightRotate(x)
	default:
	}
	// impossible run to here
	panic( /* debug assertion */ "[rbtree] rotate to unknown direction")
}

func (tree *rbTree[K, V]) search(key K) *rbNode[K, V] {
	for aux := tree.root; aux != nil; {
		res := tree.keyCompare(key, aux.key)
		if res == 0 {
			return aux
		} else if res > 0 {
			aux = aux.right
		} else {
			aux = aux.left
		}
	}
	return nil
}

func (tree *rbTree[K, V]) Search(key K) *V {
	if x := tree.search(key); x != nil {
		return &x.val
	}
	return nil
}

func (tree *rbTree[K, V]) Get(key K) (val V, ok bool) {
	if x := tree.search(key); x != nil {
		return x.val, true
	}
	return val, false
}

func (tree *rbTree[K, V]) Contains(key K) bool {
	return tree.search(key) != nil
}

// i1: Empty rbtree, insert directly, but root node is painted to black.
// i2: The key exists, reject it before any counter was touched.
func (tree *rbTree[K, V]) Insert(key K, val V) bool {
	if /* i1 */ tree.root == nil {
		tree.root = &rbNode[K, V]{
			key:   key,
			val:   val,
			color: Black,
		}
		tree.count++
		tree.stats.IncreaseInsertCount()
		return true
	}

	if /* i2 */ tree.search(key) != nil {
		tree.stats.IncreaseInsertRejectedCount()
		return false
	}

	z := &rbNode[K, V]{
		key:   key,
		val:   val,
		color: Red,
	}
	var x, y *rbNode[K, V] = tree.root, nil
	for x != nil {
		y = x
		if /* less */ tree.keyCompare(key, x.key) < 0 {
			x.lCount++
			x = x.left
		} else /* greater */ {
			x.rCount++
			x = x.right
		}
	}

	z.parent = y
	if tree.keyCompare(key, y.key) < 0 {
		y.left = z
	} else {
		y.right = z
	}

	tree.count++
	tree.insertRebalance(z)
	tree.stats.IncreaseInsertCount()
	return true
}

/*
New node X is red by default.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

im1: Current node X is root, paint it into black.

im2: Current node X's parent P is black, hold p3 and p4.

im3: If both the parent P and the uncle U are red, grandpa G is black.
(red-violation)
After repainted G into red may be still red-violation.
Recursive to fix grandpa.

	    [G]             <G>
	    / \             / \
	  <P> <U>  ====>  [P] [U]
	  /               /
	<X>             <X>

im4: The parent P is red but the uncle U is black or NIL. (red-violation)
X is opposite direction to P. Rotate P to opposite direction.
After rotation may be still red-violation. Here must enter im5 to fix.
A grandpa G with the single child P is the NIL uncle case.

	  [G]                 [G]
	  / \    rotate(P)    / \
	<P> [U]  ========>  <X> [U]
	  \                 /
	  <X>             <P>

im5: Handle im4 scenario, current node is the same direction as parent.
Rotate G toward the uncle side and swap the colors of P and G.

	    [G]                 <P>               [P]
	    / \    rotate(G)    / \    repaint    / \
	  <P> [U]  ========>  <X> [G]  ======>  <X> <G>
	  /                         \                 \
	<X>                         [U]               [U]
*/
func (tree *rbTree[K, V]) insertRebalance(x *rbNode[K, V]) {
	for x != nil {
		p := x.parent
		if /* im1 */ p == nil {
			x.color = Black
			return
		}

		if /* im2 */ p.isBlack() {
			return
		}

		g := p.parent
		if g == nil {
			// The red parent is root, it is never happened if p5 holds.
			p.color = Black
			return
		}

		if /* im3 */ u := p.sibling(); u.isRed() {
			p.color = Black
			u.color = Black
			g.color = Red
			x = g
			continue
		}

		if /* im4 */ dir := x.Direction(); dir != p.Direction() {
			tree.rotateTo(p, -dir)
			x, p = p, x // enter im5 to fix
		}

		/* im5 */
		tree.rotateTo(g, -p.Direction())
		p.color = Black
		g.color = Red
		return
	}
}

// Pop removes the node holding the key.
// Counters on the root-to-node path are decremented before unlinking.
func (tree *rbTree[K, V]) Pop(key K) bool {
	z := tree.search(key)
	if z == nil {
		tree.stats.IncreasePopMissedCount()
		return false
	}

	for c, p := z, z.parent; p != nil; c, p = p, p.parent {
		if c == p.left {
			p.lCount--
		} else {
			p.rCount--
		}
	}

	tree.removeNode(z)
	tree.count--
	tree.stats.IncreasePopCount()
	return true
}

/*
r1: Current node X has left and right node.
Borrow the replacement from the larger subtree by counters, so the
replacement walk is on the heavier side.
lCount > rCount, find pred (the maximum of left subtree).
Otherwise, find succ (the minimum of right subtree).
Decrement the counters along the walk. Swap the key & value only.
The replacement has one child at most.

Find pred:

	  |                    |
	  X                    L
	 / \                  / \
	L  ..   swap(X, L)   X  ..
		|   =========>       |
		P                    P
	   / \                  / \
	  S  ..                S  ..

r2: Current node Y is root with one child at most, the child becomes
root and is painted to black.

r3: Splice the child (or NIL) of Y into Y's slot.
If Y is black, the slot side is short of one black node (black-violation).
Rebalance from Y's parent with the short side.
*/
func (tree *rbTree[K, V]) removeNode(z *rbNode[K, V]) {
	y := z
	if /* r1 */ z.left != nil && z.right != nil {
		if z.lCount > z.rCount {
			z.lCount--
			for y = z.left; y.right != nil; y = y.right {
				y.rCount--
			}
		} else {
			z.rCount--
			for y = z.right; y.left != nil; y = y.left {
				y.lCount--
			}
		}
		z.key, z.val = y.key, y.val
	}

	child := y.left
	if child == nil {
		child = y.right
	}
	p, dir := y.parent, y.Direction()
	if child != nil {
		child.parent = p
	}

	switch dir {
	case /* r2 */ Root:
		tree.root = child
		if child != nil {
			child.color = Black
		}
		y.unlink()
		return
	case /* r3 */ Left:
		p.left = child
	case /* r3 */ Right:
		p.right = child
	default:
		// impossible run to here
		panic( /* debug assertion */ "[rbtree] remove node with unknown direction")
	}

	isBlack := y.isBlack()
	y.unlink()
	if isBlack {
		tree.removeRebalance(p, dir)
	}
}

/*
P is the parent of the short side (dir), X is the node (maybe NIL)
at the short side, S is the sibling of X.

<X> is a RED node.
[X] is a BLACK node (or NIL).
{X} is either a RED node or a BLACK node.

Sc is the same direction to X and it X's sibling's child node (near).
Sd is the opposite direction to X and it X's sibling's child node (far).

rm1: X is red. Repaint X into black, the lost black node is restored.

rm2: All of P, S, Sc and Sd are black.
Unable to satisfy p4 locally. Paint S into red, then the whole
subtree P is short of one black node. Recursive to handle P.

	  [P]             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm3: P is red, S, Sc and Sd are black.
Repaint S into red and P into black.

	  <P>             [P]
	  / \             / \
	[X] [S]  ====>  [X] <S>
	    / \             / \
	 [Sc] [Sd]       [Sc] [Sd]

rm4: S is black, Sc is red and Sd is black.
Repaint S into red, Sc into black, rotate S away from X.
Enter into rm5 to fix.

	                        {P}                {P}
	  {P}                   / \                / \
	  / \    r-rotate(S)  [X] <Sc>   repaint  [X] [Sc]
	[X] [S]  ==========>        \    ======>       \
	    / \                     [S]                <S>
	  <Sc> [Sd]                   \                  \
	                              [Sd]               [Sd]

rm5: S is black, Sd is red. P's color is ignored.
Repaint Sd into black, swap the colors of P and S, rotate P toward X.

	  {P}                   [S]                {S}
	  / \    l-rotate(P)    / \     repaint    / \
	[X] [S]  ==========>  {P} <Sd>  ======>  [P] [Sd]
	    / \               / \                / \
	 [Sc] <Sd>          [X] [Sc]           [X] [Sc]

rm6: S is red, so P, Sc and Sd must be black.
Repaint S into black, P into red, rotate P toward X.
X gets a black sibling (old Sc), run again to enter rm3-rm5.

	  [P]                   <S>               [S]
	  / \    l-rotate(P)    / \    repaint    / \
	[X] <S>  ==========>  [P] [Sd]  ======>  <P> [Sd]
	    / \               / \               / \
	 [Sc] [Sd]          [X] [Sc]          [X] [Sc]
*/
func (tree *rbTree[K, V]) removeRebalance(p *rbNode[K, V], dir RBDirection) {
	for p != nil {
		var x, s, sc, sd *rbNode[K, V]
		switch dir {
		case Left:
			x, s = p.left, p.right
		case Right:
			x, s = p.right, p.left
		default:
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove rebalance with unknown direction")
		}

		if /* rm1 */ x.isRed() {
			x.color = Black
			return
		}

		if s == nil {
			// impossible run to here
			panic( /* debug assertion */ "[rbtree] remove rebalance without sibling, violate (p4)")
		}
		if dir == Left {
			sc, sd = s.left, s.right
		} else {
			sc, sd = s.right, s.left
		}

		if /* rm2 */ s.isBlack() && p.isBlack() && sc.isBlack() && sd.isBlack() {
			s.color = Red
			if p.isRoot() {
				return
			}
			p, dir = p.parent, p.Direction()
			continue
		}

		if /* rm3 */ p.isRed() && s.isBlack() && sc.isBlack() && sd.isBlack() {
			p.color = Black
			s.color = Red
			return
		}

		if /* rm4 */ s.isBlack() && sc.isRed() && sd.isBlack() {
			s.color = Red
			sc.color = Black
			tree.rotateTo(s, -dir)
			continue
		}

		if /* rm5 */ s.isBlack() && sd.isRed() {
			sd.color = Black
			s.color, p.color = p.color, s.color
			tree.rotateTo(p, dir)
			return
		}

		/* rm6 */
		s.color = Black
		p.color = Red
		tree.rotateTo(p, dir)
	}
}

// Inorder traversal to implement the DFS.
func (tree *rbTree[K, V]) Foreach(action func(idx int64, color RBColor, key K, val V) bool) {
	aux := tree.root
	if aux == nil {
		return
	}

	stack := make([]*rbNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	idx := int64(0)
	for size := len(stack); size > 0; size = len(stack) {
		if aux = stack[size-1]; !action(idx, aux.color, aux.key, aux.val) {
			return
		}
		idx++
		stack = stack[:size-1]
		for aux = aux.right; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

// Clear releases all nodes without recursion.
func (tree *rbTree[K, V]) Clear() {
	aux := tree.root
	tree.root = nil
	tree.stats.RecordSize(-tree.count)
	tree.count = 0
	if aux == nil {
		return
	}

	stack := make([]*rbNode[K, V], 0, 64)
	defer func() {
		clear(stack)
	}()

	for ; aux != nil; aux = aux.left {
		stack = append(stack, aux)
	}

	for size := len(stack); size > 0; size = len(stack) {
		aux = stack[size-1]
		r := aux.right
		aux.unlink()
		stack = stack[:size-1]
		for aux = r; aux != nil; aux = aux.left {
			stack = append(stack, aux)
		}
	}
}

type OrderedMapOption[K infra.OrderedKey, V any] func(*rbTree[K, V])

func WithOrderedMapDesc[K infra.OrderedKey, V any]() OrderedMapOption[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.isDesc = true
	}
}

func WithOrderedMapStats[K infra.OrderedKey, V any](name string) OrderedMapOption[K, V] {
	return func(tree *rbTree[K, V]) {
		tree.stats = newOmapStats(name)
	}
}

func NewOrderedMap[K infra.OrderedKey, V any](opts ...OrderedMapOption[K, V]) OrderedMap[K, V] {
	tree := &rbTree[K, V]{
		count:  0,
		isDesc: false,
	}

	for _, o := range opts {
		if o != nil {
			o(tree)
		}
	}
	return tree
}
