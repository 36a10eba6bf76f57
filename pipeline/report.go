package pipeline

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pterm/pterm"

	"github.com/teranos/libref/config"
	"github.com/teranos/libref/nav"
)

// Skip is a class left out of a run.
type Skip struct {
	Class  string
	Reason string
}

// Report summarises one run.
type Report struct {
	RunID     string
	Started   time.Time
	Duration  time.Duration
	Cleared   int
	Generated map[string]int // pages written per category name
	Skipped   []Skip
	Bytes     int64
	Nav       *nav.Result
	Hooks     []HookResult

	CacheHits, CacheMisses int
}

// NewReport starts a report for run id.
func NewReport(runID string) *Report {
	return &Report{RunID: runID, Started: time.Now(), Generated: map[string]int{}}
}

func (r *Report) skip(class string, err error) {
	r.Skipped = append(r.Skipped, Skip{Class: class, Reason: err.Error()})
}

// Pages returns the total number of pages written.
func (r *Report) Pages() int {
	n := 0
	for _, c := range r.Generated {
		n += c
	}
	return n
}

// Print writes a human summary of the run.
func (r *Report) Print(w io.Writer, categories []config.Category) {
	if r.Cleared > 0 {
		fmt.Fprint(w, pterm.Info.Sprintfln("Cleared %d existing pages", r.Cleared))
	}

	if r.Pages() > 0 || len(r.Skipped) > 0 {
		data := pterm.TableData{{"Category", "Pages"}}
		if r.Nav != nil && r.Nav.GroupFound {
			data[0] = append(data[0], "Before", "After")
		}
		for _, cat := range categories {
			row := []string{cat.Group, strconv.Itoa(r.Generated[cat.Name])}
			if r.Nav != nil && r.Nav.GroupFound {
				row = append(row,
					strconv.Itoa(r.Nav.OldCounts[cat.Group]),
					strconv.Itoa(r.Nav.NewCounts[cat.Group]))
			}
			data = append(data, row)
		}
		if table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender(); err == nil {
			fmt.Fprintln(w, table)
		}
		fmt.Fprint(w, pterm.Success.Sprintfln("Wrote %d pages (%s) in %s",
			r.Pages(), humanize.Bytes(uint64(r.Bytes)), r.Duration.Round(time.Millisecond)))
	}

	if r.CacheHits+r.CacheMisses > 0 {
		fmt.Fprint(w, pterm.Info.Sprintfln("Cache: %s hits, %s misses",
			humanize.Comma(int64(r.CacheHits)), humanize.Comma(int64(r.CacheMisses))))
	}

	for _, s := range r.Skipped {
		fmt.Fprint(w, pterm.Warning.Sprintfln("Skipped %s: %s", s.Class, s.Reason))
	}

	if r.Nav != nil {
		switch {
		case !r.Nav.GroupFound:
			fmt.Fprint(w, pterm.Warning.Sprintln("Navigation group not found, manifest left unchanged"))
		case len(r.Nav.Missing) > 0:
			fmt.Fprint(w, pterm.Warning.Sprintfln("Dropped %d missing pages from navigation", len(r.Nav.Missing)))
			for _, m := range r.Nav.Missing {
				fmt.Fprintf(w, "  - %s\n", m)
			}
		case r.Nav.Changed:
			fmt.Fprint(w, pterm.Success.Sprintln("Updated navigation"))
		default:
			fmt.Fprint(w, pterm.Info.Sprintln("Navigation already up to date"))
		}
	}

	for _, h := range r.Hooks {
		if h.Err != nil {
			fmt.Fprint(w, pterm.Error.Sprintfln("Hook %q failed: %v", h.Command, h.Err))
		}
	}
}
