package commands

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/Ning0612/hfind/internal/progress"
	"github.com/Ning0612/hfind/internal/state"
)

var errHistoryDisabled = errors.New("history is disabled (set history.enabled in the config file)")

// showHistory prints the most recent runs, optionally limited to one root
func showHistory(m *state.Manager, root string, limit int, out io.Writer) error {
	if m == nil {
		return &exitError{code: 1, err: errHistoryDisabled}
	}

	var (
		runs []state.RunRecord
		err  error
	)
	if root != "" {
		runs, err = m.GetHistory(root, limit)
	} else {
		runs, err = m.GetRecent(limit)
	}
	if err != nil {
		return &exitError{code: 1, err: err}
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tSTATUS\tDURATION\tVISITED\tMATCHED\tBYTES\tROOT\tQUERY")
	for _, r := range runs {
		id := r.ID
		if len(id) > 8 {
			id = id[:8]
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s\t%s\n",
			id,
			r.StartTime.Local().Format("2006-01-02 15:04:05"),
			r.Status,
			r.Duration().Round(time.Millisecond),
			r.Visited,
			r.Matched,
			progress.FormatBytes(r.BytesMatched),
			r.Root,
			r.Query,
		)
	}
	return tw.Flush()
}
