package cli

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/ckanindex/pkg/dataset"
	pkgio "github.com/matzehuels/ckanindex/pkg/io"
)

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	var list bool
	cmd := &cobra.Command{
		Use:   "inspect <index.json>",
		Short: "Summarize an exported JSON index",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			idx, err := pkgio.ImportJSON(args[0])
			if err != nil {
				return err
			}
			loggerFromContext(cmd.Context()).Debug("loaded index", "file", args[0], "packages", idx.Len())

			printSuccess("%s", StyleValue.Render(args[0]))
			printIndexStats(idx.Len(), idx.ResourceCount(), 0)
			fmt.Fprintln(stdout)

			for _, fc := range formatCounts(idx) {
				printKeyValue(fc.format, strconv.Itoa(fc.count))
			}
			if n := undated(idx); n > 0 {
				printWarning("%d resources without a creation timestamp", n)
			}

			if list {
				fmt.Fprintln(stdout)
				for _, name := range idx.Keys() {
					printDetail("%s (%d)", name, len(idx[name]))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "list every package with its resource count")
	return cmd
}

type formatCount struct {
	format string
	count  int
}

// formatCounts tallies resources by file format, most common first.
func formatCounts(idx dataset.Index) []formatCount {
	counts := make(map[string]int)
	for _, rs := range idx {
		for _, r := range rs {
			f := strings.ToUpper(strings.TrimSpace(r.FileFormat))
			if f == "" {
				f = "(none)"
			}
			counts[f]++
		}
	}
	out := make([]formatCount, 0, len(counts))
	for _, f := range slices.Sorted(maps.Keys(counts)) {
		out = append(out, formatCount{format: f, count: counts[f]})
	}
	slices.SortStableFunc(out, func(a, b formatCount) int {
		return cmp.Compare(b.count, a.count)
	})
	return out
}

func undated(idx dataset.Index) int {
	n := 0
	for _, rs := range idx {
		for _, r := range rs {
			if r.CreatedAt.IsZero() {
				n++
			}
		}
	}
	return n
}
