package main

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sghaida/svctable/di"
	"github.com/sghaida/svctable/metrics"
)

// newTable creates a table writer with the standard report styling.
func newTable(w io.Writer, title string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle(title)
	return t
}

func parseArgs(a *app, args []string) ([]di.Type, error) {
	out := make([]di.Type, 0, len(args))
	for _, arg := range args {
		st, err := a.manifest.Catalog().Parse(arg)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

func renderResolve(w io.Writer, a *app, args []string) error {
	types, err := parseArgs(a, args)
	if err != nil {
		return err
	}

	t := newTable(w, "resolve")
	t.AppendHeader(table.Row{"TYPE", "FOUND", "ORIGIN", "IMPLEMENTATION", "LIFETIME", "ELEMENTS"})
	for _, st := range types {
		if st.IsOpen() {
			t.AppendRow(table.Row{st, "no (open type)", "-", "-", "-", "-"})
			continue
		}
		d, ok, err := a.table.TryGetService(st)
		if err != nil {
			return err
		}
		if !ok {
			t.AppendRow(table.Row{st, "no", "-", "-", "-", "-"})
			continue
		}
		t.AppendRow(table.Row{st, "yes", d.Origin(), implementation(d), d.Lifetime(), elements(d)})
	}
	t.Render()
	return nil
}

func renderContains(w io.Writer, a *app, args []string) error {
	types, err := parseArgs(a, args)
	if err != nil {
		return err
	}

	t := newTable(w, "contains")
	t.AppendHeader(table.Row{"TYPE", "CONTAINS"})
	for _, st := range types {
		t.AppendRow(table.Row{st, strconv.FormatBool(a.table.Contains(st))})
	}
	t.Render()
	return nil
}

// renderList shows what the table holds for every contract the manifest
// declares, so proxy wrapping applied during population is visible.
func renderList(w io.Writer, a *app) error {
	t := newTable(w, "registrations")
	t.AppendHeader(table.Row{"CONTRACT", "ORIGIN", "IMPLEMENTATION", "LIFETIME"})

	seenType := map[di.Type]bool{}
	seenGeneric := map[*di.Generic]bool{}
	for _, d := range a.manifest.Descriptors() {
		st := d.ServiceType()
		var regs []*di.Descriptor
		switch {
		case di.IsCollection(st):
			continue
		case st.IsOpen():
			def := st.Definition()
			if seenGeneric[def] {
				continue
			}
			seenGeneric[def] = true
			regs = a.table.GenericRegistrations(def)
		default:
			if seenType[st] {
				continue
			}
			seenType[st] = true
			regs = a.table.Registrations(st)
		}
		for _, r := range regs {
			t.AppendRow(table.Row{r.ServiceType(), r.Origin(), implementation(r), r.Lifetime()})
		}
	}
	t.AppendFooter(table.Row{"", "", "contracts", a.table.Len()})
	t.Render()
	return nil
}

func renderMetrics(w io.Writer, c *metrics.Collector) error {
	families, err := c.Registry().Gather()
	if err != nil {
		return err
	}

	t := newTable(w, "metrics")
	t.AppendHeader(table.Row{"METRIC", "LABELS", "VALUE"})
	for _, f := range families {
		for _, m := range f.GetMetric() {
			labels := make([]string, 0, len(m.GetLabel()))
			for _, l := range m.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}
			sort.Strings(labels)
			t.AppendRow(table.Row{f.GetName(), strings.Join(labels, ","), m.GetCounter().GetValue()})
		}
	}
	t.Render()
	return nil
}

func implementation(d *di.Descriptor) string {
	switch d.Origin() {
	case di.OriginDelegate:
		return "(factory)"
	case di.OriginEnumerable, di.OriginManyEnumerable:
		return "(collection of " + d.ElementType().String() + ")"
	}
	if impl := d.ImplementationType(); !impl.IsZero() {
		return impl.String()
	}
	return "-"
}

func elements(d *di.Descriptor) string {
	elems := d.Elements()
	if elems == nil {
		return "-"
	}
	names := make([]string, len(elems))
	for i, e := range elems {
		names[i] = implementation(e)
	}
	return strings.Join(names, ", ")
}
