package build

import (
	"fmt"
	"io"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// FileResult reports the outcome of compiling one source file. Paths are
// slash-separated and relative to the source or output directory.
type FileResult struct {
	Source     string
	Output     string
	Story      string
	Exports    []string
	Bytes      int
	StoryBytes int
	Duration   time.Duration
	Err        error
}

// Summary aggregates one build.
type Summary struct {
	Files    []FileResult
	Compiled int
	Failed   int
	Stories  int
	Bytes    uint64
	Duration time.Duration
}

func newSummary(results []FileResult, elapsed time.Duration) *Summary {
	s := &Summary{Files: results, Duration: elapsed}

	for _, res := range results {
		if res.Err != nil {
			s.Failed++

			continue
		}

		s.Compiled++
		s.Bytes += uint64(res.Bytes + res.StoryBytes)

		if res.Story != "" {
			s.Stories++
		}
	}

	return s
}

// Render writes the per-file table followed by a totals footer.
func (s *Summary) Render(w io.Writer) {
	tbl := table.NewWriter()
	tbl.SetOutputMirror(w)
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.DrawBorder = false
	tbl.Style().Options.SeparateColumns = false
	tbl.Style().Format.Footer = text.FormatDefault
	tbl.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	tbl.AppendHeader(table.Row{"Source", "Output", "Size", "Time"})

	for _, res := range s.Files {
		if res.Err != nil {
			tbl.AppendRow(table.Row{res.Source, "FAILED", "", ""})

			continue
		}

		output := res.Output
		if res.Story != "" {
			output += " + " + res.Story
		}

		tbl.AppendRow(table.Row{
			res.Source,
			output,
			humanize.Bytes(uint64(res.Bytes + res.StoryBytes)),
			res.Duration.Round(time.Microsecond).String(),
		})
	}

	tbl.AppendFooter(table.Row{
		fmt.Sprintf("%d compiled, %d failed, %d stories", s.Compiled, s.Failed, s.Stories),
		"",
		humanize.Bytes(s.Bytes),
		s.Duration.Round(time.Millisecond).String(),
	})

	tbl.Render()
}
