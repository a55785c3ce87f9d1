package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	nsoloader "github.com/wippyai/nso-loader"
	"github.com/wippyai/nso-loader/nso"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// previewBytes caps the hex preview of a region.
const previewBytes = 256

type interactiveModel struct {
	err      error
	file     *nso.File
	filename string
	result   string
	opts     nso.ParseOptions
	regions  []nso.Region
	input    textinput.Model
	selected int
	state    modelState
}

type modelState int

const (
	stateSelectRegion modelState = iota
	stateShowPreview
	stateLookup
	stateShowLookup
)

func newInteractiveModel(filename string, opts nso.ParseOptions) *interactiveModel {
	return &interactiveModel{
		filename: filename,
		opts:     opts,
		state:    stateSelectRegion,
	}
}

type loadedMsg struct {
	err     error
	file    *nso.File
	regions []nso.Region
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.loadFile
}

func (m *interactiveModel) loadFile() tea.Msg {
	data, err := os.ReadFile(m.filename)
	if err != nil {
		return loadedMsg{err: err}
	}
	var host collector
	f, err := nsoloader.LoadWithOptions(&host, data, m.opts)
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{file: f, regions: host.regions}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateLookup {
			return m.updateLookup(msg)
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit

		case "up", "k":
			if m.state == stateSelectRegion && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectRegion && m.selected < len(m.regions)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectRegion:
				if len(m.regions) > 0 {
					m.result = preview(m.regions[m.selected])
					m.state = stateShowPreview
				}
			case stateShowPreview, stateShowLookup:
				m.reset()
			}

		case "/":
			if m.state == stateSelectRegion && m.file != nil {
				m.prepareInput()
				m.state = stateLookup
				return m, textinput.Blink
			}

		case "esc":
			m.reset()
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.file = msg.file
		m.regions = msg.regions
	}

	return m, nil
}

func (m *interactiveModel) updateLookup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "esc":
		m.reset()
		return m, nil
	case "enter":
		m.result, m.err = lookup(m.file, m.input.Value())
		m.state = stateShowLookup
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *interactiveModel) reset() {
	m.state = stateSelectRegion
	m.result = ""
	m.err = nil
}

func (m *interactiveModel) prepareInput() {
	ti := textinput.New()
	ti.Placeholder = "0x1000"
	ti.Prompt = "address: "
	ti.Width = 20
	ti.Focus()
	m.input = ti
}

// lookup resolves a module-relative address typed by the user.
func lookup(f *nso.File, s string) (string, error) {
	addr, err := strconv.ParseUint(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return "", fmt.Errorf("invalid address %q", s)
	}
	r, ok := f.RegionAt(addr)
	if !ok {
		return "", fmt.Errorf("0x%x is not mapped", addr)
	}
	return fmt.Sprintf("0x%x is %s+0x%x (%s)", addr, r.Name, addr-r.Address, r.Class), nil
}

func preview(r nso.Region) string {
	if r.ZeroFill {
		return fmt.Sprintf("%s: %d zero bytes", r.Name, r.Size)
	}
	if len(r.Data) == 0 {
		return fmt.Sprintf("%s: 0x%x-0x%x, no backing bytes", r.Name, r.Address, r.End())
	}
	data := r.Data
	if len(data) > previewBytes {
		data = data[:previewBytes]
	}
	return hex.Dump(data)
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowLookup {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}

	if m.file == nil {
		return "Loading NSO..."
	}

	var b strings.Builder

	b.WriteString(titleStyle.Render("NSO Browser"))
	b.WriteString(" ")
	b.WriteString(m.filename)
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectRegion:
		b.WriteString("Regions:\n\n")
		for i, r := range m.regions {
			line := formatRegion(r)
			if i == m.selected {
				b.WriteString(selectedStyle.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter preview • / lookup address • q quit"))

	case stateShowPreview:
		r := m.regions[m.selected]
		b.WriteString(fmt.Sprintf("Preview of %s:\n\n", funcStyle.Render(r.Name)))
		b.WriteString(m.result)
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("enter back • q quit"))

	case stateLookup:
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter resolve • esc back"))

	case stateShowLookup:
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func formatRegion(r nso.Region) string {
	return fmt.Sprintf("%s %s %s",
		funcStyle.Render(fmt.Sprintf("%-14s", r.Name)),
		typeStyle.Render(fmt.Sprintf("0x%08x-0x%08x", r.Address, r.End())),
		r.Class)
}

func runInteractive(filename string, opts nso.ParseOptions) error {
	p := tea.NewProgram(newInteractiveModel(filename, opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
