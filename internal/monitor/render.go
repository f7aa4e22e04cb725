package monitor

import (
	"github.com/rileyhilliard/sysdash/internal/errors"
	"github.com/rileyhilliard/sysdash/internal/page"
	"github.com/rileyhilliard/sysdash/internal/stats"
)

// Project writes a snapshot into the document.
//
// Required elements are written in page order and a missing one stops the
// projection with a RENDER error, leaving later elements untouched.
// Optional elements are written only when present.
func Project(doc *page.Document, snap *stats.Snapshot) error {
	if snap == nil {
		return errors.New(errors.ErrDecode, "Stats response was empty", "The endpoint should return a JSON object")
	}

	cpu := stats.FormatPercent(snap.CPU)
	mem := stats.FormatPercent(snap.MemoryPercent)
	disk := stats.FormatPercent(snap.DiskPercent)

	writes := []struct {
		id       string
		optional bool
		apply    func(*page.Element)
	}{
		{id: page.IDCPUVal, apply: setText(cpu)},
		{id: page.IDCPUBar, apply: setWidth(cpu)},
		{id: page.IDMemVal, apply: setText(mem)},
		{id: page.IDMemBar, optional: true, apply: setWidth(mem)},
		{id: page.IDMemUsed, apply: setText(snap.MemoryUsed.String())},
		{id: page.IDMemCached, optional: true, apply: setText(snap.MemoryCached.String())},
		{id: page.IDDiskVal, apply: setText(disk)},
		{id: page.IDDiskBar, apply: setWidth(disk)},
		{id: page.IDLoadVal, optional: true, apply: setText(snap.LoadAvg.String())},
		{id: page.IDOSInfo, optional: true, apply: setText(snap.OSInfo.String())},
		{id: page.IDNetVal, optional: true, apply: setText(NetText(snap.NetUp, snap.NetDown))},
	}

	for _, w := range writes {
		if w.optional {
			if el, ok := doc.Lookup(w.id); ok {
				w.apply(el)
			}
			continue
		}
		el, err := doc.Get(w.id)
		if err != nil {
			return err
		}
		w.apply(el)
	}
	return nil
}

// NetText formats upload and download rates for the net-val element.
func NetText(up, down float64) string {
	return "↑ " + FormatRate(up) + " ↓ " + FormatRate(down)
}

// FormatRate formats a KB/s value.
func FormatRate(kbps float64) string {
	return stats.FormatNumber(kbps) + " " + NetworkUnit
}

func setText(s string) func(*page.Element) {
	return func(el *page.Element) { el.Text = s }
}

func setWidth(s string) func(*page.Element) {
	return func(el *page.Element) { el.Width = s }
}
