package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
	"golang.org/x/term"

	nsoloader "github.com/wippyai/nso-loader"
	"github.com/wippyai/nso-loader/nso"
)

func main() {
	var (
		nsoFile     = flag.String("nso", "", "Path to NSO file")
		concurrent  = flag.Bool("concurrent", false, "Decompress segments in parallel")
		verbose     = flag.Bool("v", false, "Debug logging to stderr")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *nsoFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: nsoinfo -nso <file> [-concurrent] [-v]")
		fmt.Fprintln(os.Stderr, "       nsoinfo -nso <file> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer l.Sync()
		nso.SetLogger(l)
	}

	opts := nso.DefaultParseOptions()
	opts.Concurrent = *concurrent

	if *interactive {
		if err := runInteractive(*nsoFile, opts); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(os.Stdout, *nsoFile, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// styles groups the output styles so plain output can swap them all out.
type styles struct {
	title  lipgloss.Style
	name   lipgloss.Style
	number lipgloss.Style
	dim    lipgloss.Style
}

func newStyles(color bool) styles {
	if !color {
		plain := lipgloss.NewStyle()
		return styles{title: plain, name: plain, number: plain, dim: plain}
	}
	return styles{
		title:  titleStyle,
		name:   funcStyle,
		number: typeStyle,
		dim:    helpStyle,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// collector is the host used by the printer: it records regions as mapped.
type collector struct {
	regions []nso.Region
}

func (c *collector) MapRegion(r nso.Region) error {
	c.regions = append(c.regions, r)
	return nil
}

func run(w io.Writer, nsoFile string, opts nso.ParseOptions) error {
	data, err := os.ReadFile(nsoFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	format, ok := nsoloader.Accept(data)
	if !ok {
		return fmt.Errorf("%s: not an NSO file", nsoFile)
	}

	var host collector
	f, err := nsoloader.LoadWithOptions(&host, data, opts)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}

	printLayout(w, newStyles(isTerminal(w)), nsoFile, format, f, host.regions)
	return nil
}

func printLayout(w io.Writer, st styles, name, format string, f *nso.File, regions []nso.Region) {
	fmt.Fprintf(w, "%s %s\n", st.title.Render(format), name)
	fmt.Fprintf(w, "Version: %s  Flags: %s  Target: %s\n\n",
		st.number.Render(fmt.Sprintf("%d", f.Header.Version)),
		st.number.Render(fmt.Sprintf("0x%02x", f.Header.Flags)),
		nso.ArchAArch64)

	fmt.Fprintln(w, "Regions:")
	for _, r := range regions {
		fmt.Fprintf(w, "  %s %s-%s %s %s\n",
			st.name.Render(fmt.Sprintf("%-14s", r.Name)),
			st.number.Render(fmt.Sprintf("0x%08x", r.Address)),
			st.number.Render(fmt.Sprintf("0x%08x", r.End())),
			st.dim.Render(fmt.Sprintf("%-5s", r.Class)),
			regionNote(r))
	}

	m := f.Module
	fmt.Fprintf(w, "\nMOD0 at 0x%x:\n", m.MagicOffset)
	for _, field := range []struct {
		name  string
		value uint64
	}{
		{"dynamic", m.DynamicOffset},
		{"bss start", m.BssStart},
		{"bss end", m.BssEnd},
		{"eh_frame_hdr start", m.EhFrameHdrStart},
		{"eh_frame_hdr end", m.EhFrameHdrEnd},
		{"module object", m.ModuleOffset},
	} {
		fmt.Fprintf(w, "  %-20s %s\n", field.name, st.number.Render(fmt.Sprintf("0x%08x", field.value)))
	}
}

func regionNote(r nso.Region) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%d bytes", r.Size))
	if r.ZeroFill {
		parts = append(parts, "zero-filled")
	}
	if r.Data == nil && !r.ZeroFill {
		parts = append(parts, "no data")
	}
	return strings.Join(parts, ", ")
}
