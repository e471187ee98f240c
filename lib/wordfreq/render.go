package wordfreq

import (
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/samber/lo"

	"github.com/benz9527/xrank/lib/infra"
)

type Format string

const (
	FormatTable    Format = "table"
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
)

func FormatOf(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatTable, FormatCSV, FormatMarkdown:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "":
		return FormatTable, nil
	default:
	}
	return "", infra.NewErrorStack("[wordfreq] unknown output format " + name)
}

const missing = "-"

func itoa(i int64) string {
	return strconv.FormatInt(i, 10)
}

// joinWords lists the words of a bucket in one cell. go-pretty escapes
// commas inside CSV cells with a backslash, so CSV cells use spaces.
func joinWords(format Format, words []string) string {
	if format == FormatCSV {
		return strings.Join(words, " ")
	}
	return strings.Join(words, ", ")
}

func newTableStyle() table.Style {
	style := table.StyleRounded
	style.Format.Header = text.FormatUpper
	style.Format.Footer = text.FormatUpper
	style.Options.SeparateRows = false
	return style
}

func render(w io.Writer, format Format, title string, header, footer table.Row, rows []table.Row) error {
	tw := table.NewWriter()
	tw.SetStyle(newTableStyle())
	tw.AppendHeader(header)
	tw.AppendRows(rows)
	if footer != nil {
		tw.AppendFooter(footer)
	}

	var out string
	switch format {
	case FormatCSV:
		out = tw.RenderCSV()
	case FormatMarkdown:
		out = tw.RenderMarkdown()
	default:
		tw.SetTitle(title)
		out = tw.Render()
	}
	if _, err := io.WriteString(w, out+"\n"); err != nil {
		return infra.WrapErrorStackWithMessage(err, "write "+title)
	}
	return nil
}

// RenderSummary prints the top n buckets with the distinct and total
// word counts in the footer.
func RenderSummary(w io.Writer, format Format, r *Report, top int) error {
	rows := lo.Map(r.Top(top), func(b Bucket, _ int) table.Row {
		return table.Row{b.Rank, b.Count, joinWords(format, b.Words)}
	})
	return render(w, format, "word frequencies",
		table.Row{"rank", "count", "words"},
		table.Row{"distinct " + itoa(r.Distinct()), "total " + itoa(r.Total()), "buckets " + itoa(r.Buckets())},
		rows,
	)
}

func RenderWordStats(w io.Writer, format Format, stats []WordStat) error {
	rows := lo.Map(stats, func(s WordStat, _ int) table.Row {
		if !s.Found {
			return table.Row{s.Word, 0, missing, missing, missing}
		}
		return table.Row{s.Word, s.Count, s.Rank, s.IRank, s.FreqRank}
	})
	return render(w, format, "word ranks",
		table.Row{"word", "count", "rank", "irank", "freq rank"},
		nil,
		rows,
	)
}

// Selection pairs the k-th word alphabetically with the k-th most
// frequent bucket.
type Selection struct {
	K         int64
	Word      string
	WordCount int64
	WordFound bool
	Bucket    Bucket
	HasBucket bool
}

func (r *Report) Select(k int64) Selection {
	sel := Selection{K: k}
	sel.Word, sel.WordCount, sel.WordFound = r.SelectWord(k)
	sel.Bucket, sel.HasBucket = r.SelectBucket(k)
	return sel
}

func RenderSelections(w io.Writer, format Format, sels []Selection) error {
	rows := lo.Map(sels, func(s Selection, _ int) table.Row {
		row := table.Row{s.K, missing, missing, missing, missing}
		if s.WordFound {
			row[1], row[2] = s.Word, s.WordCount
		}
		if s.HasBucket {
			row[3], row[4] = s.Bucket.Count, joinWords(format, s.Bucket.Words)
		}
		return row
	})
	return render(w, format, "word selections",
		table.Row{"k", "word", "count", "bucket count", "bucket words"},
		nil,
		rows,
	)
}

func RenderDump(w io.Writer, format Format, order TraversalOrder, seq iter.Seq2[string, int64]) error {
	rows := make([]table.Row, 0, 64)
	idx := 0
	for word, cnt := range seq {
		idx++
		rows = append(rows, table.Row{idx, word, cnt})
	}
	return render(w, format, string(order)+"-order words",
		table.Row{"#", "word", "count"},
		nil,
		rows,
	)
}
