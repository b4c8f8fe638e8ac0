// Package report renders run summaries, plans and failure lists as tables.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/JonMunkholm/leadsync/internal/core"
	"github.com/JonMunkholm/leadsync/internal/images"
)

// DefaultPlanRows caps the steps listed by Plan.
const DefaultPlanRows = 20

func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	if title != "" {
		t.SetTitle(title)
	}
	return t
}

// Summary renders the per-outcome tally followed by the failure details.
func Summary(w io.Writer, title string, s *core.Summary) {
	t := newTable(w, title)
	t.AppendHeader(table.Row{"Outcome", "Records"})
	t.AppendRows([]table.Row{
		{core.StatusCreated, s.Created},
		{core.StatusUpdated, s.Updated},
		{core.StatusSkippedDuplicate, s.SkippedDuplicate},
		{core.StatusSkippedUnmatched, s.SkippedUnmatched},
		{core.StatusFailed, s.Failed},
	})
	t.AppendSeparator()
	t.AppendRow(table.Row{"deduplicated in file", s.Deduplicated})
	t.AppendRow(table.Row{"insert batches", s.Batches})
	t.AppendFooter(table.Row{"total", s.Total})
	t.Render()

	Failures(w, s)
}

// Failures renders the kept failure details with their error codes.
// Nothing is written when there are no failures.
func Failures(w io.Writer, s *core.Summary) {
	if len(s.Failures) == 0 {
		return
	}

	t := newTable(w, "Failures")
	t.AppendHeader(table.Row{"Row", "Key", "Status", "Code", "Detail"})
	for _, f := range s.Failures {
		msg := core.MapDetail(f.Detail)
		remote := ""
		if f.Remote > 0 {
			remote = fmt.Sprint(f.Remote)
		}
		t.AppendRow(table.Row{rowLabel(f.Row), f.Key, remote, msg.Code, f.Detail})
	}
	if n := s.OmittedFailures(); n > 0 {
		t.AppendRow(table.Row{"", "", "", "", fmt.Sprintf("... and %d more", n)})
	}
	t.Render()

	seen := make(map[string]bool)
	for _, f := range s.Failures {
		msg := core.MapDetail(f.Detail)
		if seen[msg.Code] {
			continue
		}
		seen[msg.Code] = true
		fmt.Fprintf(w, "%s: %s. %s\n", msg.Code, msg.Message, msg.Action)
	}
}

// Plan renders the planned actions without performing them.
func Plan(w io.Writer, p *core.Plan, maxRows int) {
	if maxRows <= 0 {
		maxRows = DefaultPlanRows
	}

	excluded, failed := 0, 0
	for _, o := range p.Decided {
		if o.Status == core.StatusFailed {
			failed++
		} else {
			excluded++
		}
	}

	t := newTable(w, "Plan")
	t.AppendHeader(table.Row{"Action", "Records"})
	t.AppendRows([]table.Row{
		{"insert", len(p.Inserts)},
		{"update (fill gaps)", len(p.Updates)},
		{"skip (nothing to fill)", len(p.Skips)},
		{"excluded (no key)", excluded},
		{"lookup failed", failed},
		{"deduplicated in file", p.Deduplicated},
	})
	t.Render()

	steps := make([]core.Step, 0, maxRows)
	for _, group := range [][]core.Step{p.Inserts, p.Updates} {
		for _, s := range group {
			if len(steps) == maxRows {
				break
			}
			steps = append(steps, s)
		}
	}
	if len(steps) == 0 {
		return
	}

	d := newTable(w, "")
	d.AppendHeader(table.Row{"Row", "Key", "Action", "Fields"})
	for _, s := range steps {
		d.AppendRow(table.Row{rowLabel(s.Row), s.Key, s.Action, fieldList(s)})
	}
	if rest := len(p.Inserts) + len(p.Updates) - len(steps); rest > 0 {
		d.AppendRow(table.Row{"", "", "", fmt.Sprintf("... and %d more", rest)})
	}
	d.Render()
}

// ImageUpload renders an image upload result.
func ImageUpload(w io.Writer, res *images.UploadResult) {
	t := newTable(w, "Images")
	t.AppendHeader(table.Row{"Outcome", "Images"})
	t.AppendRows([]table.Row{
		{"matched locally", res.Matched},
		{"missing locally", res.Missing},
		{core.StatusCreated, res.Summary.Created},
		{core.StatusSkippedDuplicate, res.Summary.SkippedDuplicate},
		{core.StatusFailed, res.Summary.Failed},
	})
	t.Render()

	if len(res.MissingIDs) > 0 {
		fmt.Fprintf(w, "Missing images (first %d): %s\n", len(res.MissingIDs), strings.Join(res.MissingIDs, ", "))
	}
	if res.ExampleURL != "" {
		fmt.Fprintf(w, "Example URL: %s\n", res.ExampleURL)
	}
	Failures(w, res.Summary)
}

// PrunePlan renders the objects a prune would delete.
func PrunePlan(w io.Writer, p images.PrunePlan, maxRows int) {
	if maxRows <= 0 {
		maxRows = DefaultPlanRows
	}

	t := newTable(w, "Prune plan")
	t.AppendHeader(table.Row{"Object"})
	for i, name := range p.Delete {
		if i == maxRows {
			t.AppendRow(table.Row{fmt.Sprintf("... and %d more", len(p.Delete)-maxRows)})
			break
		}
		t.AppendRow(table.Row{name})
	}
	t.Render()

	fmt.Fprintf(w, "%d objects to delete, %d to keep\n", len(p.Delete), p.Keep)
}

// PruneResult renders the outcome of an executed prune.
func PruneResult(w io.Writer, r images.PruneResult) {
	t := newTable(w, "Prune")
	t.AppendHeader(table.Row{"Outcome", "Objects"})
	t.AppendRow(table.Row{"deleted", r.Deleted})
	t.AppendRow(table.Row{"failed", r.Failed})
	t.Render()

	for _, f := range r.Failures {
		fmt.Fprintln(w, "  -", f)
	}
}

func rowLabel(row int) string {
	if row <= 0 {
		return ""
	}
	return fmt.Sprint(row)
}

func fieldList(s core.Step) string {
	if s.Action == core.ActionInsert {
		return fmt.Sprintf("%d fields", len(s.Payload))
	}
	fields := make([]string, 0, len(s.Payload))
	for f := range s.Payload {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return strings.Join(fields, ", ")
}

// Profiles renders the registered mapping profiles.
func Profiles(w io.Writer, ms []*core.Mapping) {
	t := newTable(w, "Profiles")
	t.AppendHeader(table.Row{"Profile", "Table", "Key", "Fields", "Protected", "Image field"})
	for _, m := range ms {
		t.AppendRow(table.Row{m.Name, m.Table, m.Key, len(m.Fields), len(m.Protected), m.ImageField})
	}
	t.Render()
}
