package main

import (
	"io"

	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/benz9527/xrank/lib/infra"
	"github.com/benz9527/xrank/lib/wordfreq"
)

func newCountCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count [files...]",
		Short: "count the words and print the most frequent ones",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			top := v.GetInt("top")
			return runApp(cmd, loadConfig(v), args, func(w io.Writer, format wordfreq.Format, r *wordfreq.Report) error {
				return wordfreq.RenderSummary(w, format, r, top)
			})
		},
	}
	cmd.Flags().Int("top", 10, "the number of the most frequent buckets")
	return cmd
}

func newRankCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank [files...] --word w...",
		Short: "print the count and the ranks of words",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			words := lo.Uniq(v.GetStringSlice("word"))
			if len(words) == 0 {
				return infra.NewErrorStack("at least one --word is required")
			}
			return runApp(cmd, loadConfig(v), args, func(w io.Writer, format wordfreq.Format, r *wordfreq.Report) error {
				return wordfreq.RenderWordStats(w, format, lo.Map(words, func(word string, _ int) wordfreq.WordStat {
					return r.Lookup(word)
				}))
			})
		},
	}
	cmd.Flags().StringSlice("word", nil, "the words to rank")
	return cmd
}

func newSelectCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "select [files...] --k n...",
		Short: "print the n-th word alphabetically and the n-th most frequent bucket",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := cmd.Flags().GetInt64Slice("k")
			if err != nil {
				return infra.WrapErrorStack(err)
			}
			if len(ks) == 0 {
				return infra.NewErrorStack("at least one --k is required")
			}
			return runApp(cmd, loadConfig(v), args, func(w io.Writer, format wordfreq.Format, r *wordfreq.Report) error {
				return wordfreq.RenderSelections(w, format, lo.Map(ks, func(k int64, _ int) wordfreq.Selection {
					return r.Select(k)
				}))
			})
		},
	}
	cmd.Flags().Int64Slice("k", nil, "the 1-based positions to select")
	return cmd
}

func newDumpCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dump [files...]",
		Short: "print the (word, count) pairs in a tree traversal order",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			order, err := wordfreq.TraversalOrderOf(v.GetString("order"))
			if err != nil {
				return err
			}
			return runApp(cmd, loadConfig(v), args, func(w io.Writer, format wordfreq.Format, r *wordfreq.Report) error {
				return wordfreq.RenderDump(w, format, order, r.Dump(order))
			})
		},
	}
	cmd.Flags().String("order", "in", "traversal order: pre, in, post, level")
	return cmd
}
