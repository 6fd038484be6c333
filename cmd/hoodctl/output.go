package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/srg/hoodctl/internal/hood"
	"github.com/srg/hoodctl/scanner"
	orderedmap "github.com/wk8/go-ordered-map/v2"
	"golang.org/x/term"
)

var validFormats = []string{"table", "json"}

func validateFormat(format string) error {
	for _, f := range validFormats {
		if format == f {
			return nil
		}
	}
	return fmt.Errorf("invalid format '%s': must be one of %v", format, validFormats)
}

// isTerminal reports whether w is a terminal. Buffers and pipes are not.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// palette colors table cells. Colors are off unless w is a terminal.
type palette struct {
	on, off, warn, label *color.Color
}

func newPalette(w io.Writer) palette {
	p := palette{
		on:    color.New(color.FgGreen, color.Bold),
		off:   color.New(color.Faint),
		warn:  color.New(color.FgYellow),
		label: color.New(color.FgCyan),
	}
	if !isTerminal(w) {
		for _, c := range []*color.Color{p.on, p.off, p.warn, p.label} {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) light(on bool, brightness, kelvin int) string {
	if !on {
		return p.off.Sprint("off")
	}
	return p.on.Sprintf("on %d%% %dK", brightness, kelvin)
}

func (p palette) fan(level int, postrun bool) string {
	s := fmt.Sprintf("%d", level)
	if level == 0 {
		s = p.off.Sprint(s)
	} else {
		s = p.on.Sprint(s)
	}
	if postrun {
		s += " " + p.warn.Sprint("(postrun)")
	}
	return s
}

// statusDocument is the JSON form of a status. Keys keep a fixed order so the
// output is stable for scripts and diffs.
func statusDocument(st hood.Status, variant hood.Variant) *orderedmap.OrderedMap[string, any] {
	light := func(on bool, brightness, pct, kelvin int) *orderedmap.OrderedMap[string, any] {
		m := orderedmap.New[string, any]()
		m.Set("on", on)
		m.Set("brightness", brightness)
		m.Set("color", pct)
		m.Set("kelvin", kelvin)
		return m
	}

	doc := orderedmap.New[string, any]()
	doc.Set("name", st.Name)
	doc.Set("address", st.Address)
	doc.Set("variant", variant.String())
	doc.Set("fan_level", st.FanLevel)
	doc.Set("fan_postrun_active", st.FanPostrunActive)
	doc.Set("light_top", light(st.LightTopOn, st.LightTopBrightness, st.LightTopColor, st.LightTopColorKelvin()))
	doc.Set("light_bottom", light(st.LightBottomOn, st.LightBottomBrightness, st.LightBottomColor, st.LightBottomColorKelvin()))
	return doc
}

func writeJSON(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func printStatus(w io.Writer, st hood.Status, variant hood.Variant, format string) error {
	if format == "json" {
		return writeJSON(w, statusDocument(st, variant))
	}

	p := newPalette(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	row := func(label, value string) {
		fmt.Fprintf(tw, "%s\t%s\n", p.label.Sprint(label), value)
	}
	row("NAME", st.Name)
	row("ADDRESS", st.Address)
	row("VARIANT", variant.String())
	row("FAN", p.fan(st.FanLevel, st.FanPostrunActive))
	row("LIGHT TOP", p.light(st.LightTopOn, st.LightTopBrightness, st.LightTopColorKelvin()))
	row("LIGHT BOTTOM", p.light(st.LightBottomOn, st.LightBottomBrightness, st.LightBottomColorKelvin()))
	return tw.Flush()
}

func printHoods(w io.Writer, hoods []scanner.Hood, format string) error {
	if format == "json" {
		docs := make([]*orderedmap.OrderedMap[string, any], 0, len(hoods))
		for _, h := range hoods {
			doc := orderedmap.New[string, any]()
			doc.Set("name", h.Peer.Name())
			doc.Set("address", h.Peer.Address())
			doc.Set("variant", h.Variant.String())
			doc.Set("rssi", h.RSSI)
			doc.Set("connectable", h.Connectable)
			doc.Set("services", h.Peer.AdvertisedServices())
			docs = append(docs, doc)
		}
		return writeJSON(w, docs)
	}

	if len(hoods) == 0 {
		fmt.Fprintln(w, "No hoods discovered")
		return nil
	}

	p := newPalette(w)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tADDRESS\tVARIANT\tRSSI\tLAST SEEN")
	fmt.Fprintln(tw, strings.Repeat("-", 70))
	for _, h := range hoods {
		name := h.Peer.Name()
		if name == "" {
			name = p.off.Sprint("(unnamed)")
		} else if len(name) > 20 {
			name = name[:17] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d dBm\t%s ago\n",
			name, h.Peer.Address(), h.Variant, h.RSSI, time.Since(h.LastSeen).Truncate(time.Second))
	}
	return tw.Flush()
}

// printWatchLine prints one poll result of watch.
func printWatchLine(w io.Writer, at time.Time, st hood.Status, available bool, err error) {
	p := newPalette(w)
	ts := at.Format(time.TimeOnly)
	if !available {
		line := p.warn.Sprint("unavailable")
		if err != nil {
			line += ": " + FormatUserError(err)
		}
		fmt.Fprintf(w, "%s %s\n", ts, line)
		return
	}
	fmt.Fprintf(w, "%s fan=%s top=%s bottom=%s\n", ts,
		p.fan(st.FanLevel, st.FanPostrunActive),
		p.light(st.LightTopOn, st.LightTopBrightness, st.LightTopColorKelvin()),
		p.light(st.LightBottomOn, st.LightBottomBrightness, st.LightBottomColorKelvin()))
}
