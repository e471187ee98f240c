package wordfreq

import (
	"iter"
	"strings"

	"github.com/benz9527/xrank/lib/infra"
	"github.com/benz9527/xrank/lib/tree"
)

// Bucket holds the words sharing one count, alphabetically.
type Bucket struct {
	Rank  int64
	Count int64
	Words []string
}

type WordStat struct {
	Word  string
	Found bool
	Count int64
	// Alphabetical rank, reverse alphabetical rank and the rank of
	// the count among the distinct counts, most frequent first.
	Rank     int64
	IRank    int64
	FreqRank int64
}

// Report is a frozen view of counted words. The buckets map is keyed
// by count in descending order, so the first bucket is the most
// frequent one.
type Report struct {
	words   tree.OrderedMap[string, int64]
	buckets tree.OrderedMap[int64, []string]
	total   int64
}

func NewReport(words tree.OrderedMap[string, int64]) *Report {
	r := &Report{
		words:   words,
		buckets: tree.NewOrderedMap[int64, []string](tree.WithOrderedMapDesc[int64, []string]()),
	}
	for word, cnt := range words.InOrder() {
		r.total += cnt
		if ref := r.buckets.Search(cnt); ref != nil {
			*ref = append(*ref, word)
			continue
		}
		r.buckets.Insert(cnt, []string{word})
	}
	return r
}

func (r *Report) Total() int64 {
	return r.total
}

func (r *Report) Distinct() int64 {
	return r.words.Len()
}

func (r *Report) Buckets() int64 {
	return r.buckets.Len()
}

// Top returns at most n buckets, most frequent first.
func (r *Report) Top(n int) []Bucket {
	if n <= 0 {
		return []Bucket{}
	}
	res := make([]Bucket, 0, min(int64(n), r.buckets.Len()))
	for k := int64(1); k <= int64(n); k++ {
		b, ok := r.SelectBucket(k)
		if !ok {
			break
		}
		res = append(res, b)
	}
	return res
}

func (r *Report) Lookup(word string) WordStat {
	word = normalize(word)
	stat := WordStat{Word: word}
	cnt, ok := r.words.Get(word)
	if !ok {
		return stat
	}
	stat.Found = true
	stat.Count = cnt
	stat.Rank = r.words.Rank(word)
	stat.IRank = r.words.IRank(word)
	stat.FreqRank = r.buckets.Rank(cnt)
	return stat
}

// SelectWord returns the k-th word alphabetically.
func (r *Report) SelectWord(k int64) (string, int64, bool) {
	word, ok := r.words.SelectKey(k)
	if !ok {
		return "", 0, false
	}
	return word, *r.words.Select(k), true
}

// SelectBucket returns the k-th most frequent bucket.
func (r *Report) SelectBucket(k int64) (Bucket, bool) {
	cnt, ok := r.buckets.SelectKey(k)
	if !ok {
		return Bucket{}, false
	}
	return Bucket{
		Rank:  k,
		Count: cnt,
		Words: *r.buckets.Select(k),
	}, true
}

type TraversalOrder string

const (
	PreOrder   TraversalOrder = "pre"
	InOrder    TraversalOrder = "in"
	PostOrder  TraversalOrder = "post"
	LevelOrder TraversalOrder = "level"
)

func TraversalOrderOf(order string) (TraversalOrder, error) {
	switch o := TraversalOrder(strings.ToLower(strings.TrimSpace(order))); o {
	case PreOrder, InOrder, PostOrder, LevelOrder:
		return o, nil
	default:
	}
	return "", infra.NewErrorStack("[wordfreq] unknown traversal order " + order)
}

// Dump walks the word map in the tree traversal order.
func (r *Report) Dump(order TraversalOrder) iter.Seq2[string, int64] {
	switch order {
	case PreOrder:
		return r.words.PreOrder()
	case PostOrder:
		return r.words.PostOrder()
	case LevelOrder:
		return r.words.LevelOrder()
	default:
	}
	return r.words.InOrder()
}

// Validate checks the red-black and counter properties of both maps.
func (r *Report) Validate() error {
	if err := tree.Validate[string, int64](r.words); err != nil {
		return infra.WrapErrorStackWithMessage(err, "word map")
	}
	if err := tree.Validate[int64, []string](r.buckets, true); err != nil {
		return infra.WrapErrorStackWithMessage(err, "bucket map")
	}
	return nil
}
