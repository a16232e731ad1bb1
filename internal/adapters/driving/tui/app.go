// Package tui provides the interactive terminal UI for policykb.
// It follows the Elm architecture via Bubbletea: a single ask view with
// a question input, a navigable result list, and a status bar.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/iguales-labs/policykb-cli/internal/core/domain"
	"github.com/iguales-labs/policykb-cli/internal/core/ports/driving"
)

// retrieveDone carries the outcome of a retrieval back into Update.
type retrieveDone struct {
	query   string
	results []domain.Result
	err     error
}

// App is the TUI application model.
type App struct {
	service driving.KBService
	ctx     context.Context
	styles  *Styles
	keymap  *KeyMap
	input   textinput.Model

	query       string
	results     []domain.Result
	sourcesLine string
	selected    int
	err         error
	busy        bool

	// focusInput is true while typing, false while browsing results.
	focusInput bool

	width  int
	height int
	ready  bool
}

var _ tea.Model = (*App)(nil)

// New creates the TUI application backed by the given KB service.
func New(service driving.KBService) *App {
	ti := textinput.New()
	ti.Placeholder = "Escribe tu pregunta..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	return &App{
		service:    service,
		ctx:        context.Background(),
		styles:     DefaultStyles(),
		keymap:     DefaultKeyMap(),
		input:      ti,
		focusInput: true,
		width:      80,
		height:     24,
	}
}

// WithContext sets the context used for retrievals.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		tea.SetWindowTitle("policykb"),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case retrieveDone:
		a.busy = false
		a.query = msg.query
		a.err = msg.err
		a.results = msg.results
		a.selected = 0
		a.sourcesLine = ""
		if msg.err == nil && len(msg.results) > 0 {
			if view, err := a.service.CompactSources(msg.results, 0); err == nil {
				a.sourcesLine = view.Line
			}
			a.focusInput = false
			a.input.Blur()
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleKeyMsg processes keyboard input.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keymap.Quit) {
		return a, tea.Quit
	}

	if key.Matches(msg, a.keymap.Clear) {
		a.reset()
		return a, nil
	}

	if a.focusInput {
		if key.Matches(msg, a.keymap.Ask) {
			question := strings.TrimSpace(a.input.Value())
			if question == "" || a.busy {
				return a, nil
			}
			a.busy = true
			return a, a.performRetrieve(question)
		}
		var cmd tea.Cmd
		a.input, cmd = a.input.Update(msg)
		return a, cmd
	}

	// Results mode.
	switch {
	case msg.String() == "q":
		return a, tea.Quit
	case key.Matches(msg, a.keymap.Up):
		if a.selected > 0 {
			a.selected--
		}
	case key.Matches(msg, a.keymap.Down):
		if a.selected < len(a.results)-1 {
			a.selected++
		}
	case key.Matches(msg, a.keymap.NewQuestion):
		a.focusInput = true
		a.input.SetValue("")
		a.input.Focus()
	}
	return a, nil
}

// performRetrieve runs a retrieval off the update loop.
func (a *App) performRetrieve(question string) tea.Cmd {
	return func() tea.Msg {
		results, err := a.service.Retrieve(a.ctx, question, 0)
		return retrieveDone{query: question, results: results, err: err}
	}
}

// reset clears the input and result state.
func (a *App) reset() {
	a.query = ""
	a.results = nil
	a.sourcesLine = ""
	a.selected = 0
	a.err = nil
	a.busy = false
	a.focusInput = true
	a.input.SetValue("")
	a.input.Focus()
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Inicializando..."
	}

	sections := make([]string, 0, 10)
	sections = append(sections, a.styles.Title.Render("policykb"), a.renderKBLine(), "")

	label := a.styles.Subtitle.Render("Pregunta: ")
	sections = append(sections, lipgloss.JoinHorizontal(lipgloss.Center, label, a.styles.InputField.Render(a.input.View())), "")

	if a.err != nil {
		sections = append(sections, a.styles.Error.Render("Error: "+a.err.Error()), "")
	}

	sections = append(sections, a.renderResults())

	if a.sourcesLine != "" {
		sections = append(sections, "", a.styles.Muted.Render(a.sourcesLine))
	}

	sections = append(sections, "", a.renderStatus())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderKBLine shows the loaded bundle summary.
func (a *App) renderKBLine() string {
	bundle := a.service.Bundle()
	if bundle == nil || bundle.Empty() {
		return a.styles.Muted.Render("Sin KB cargada")
	}
	return a.styles.Muted.Render(fmt.Sprintf(
		"%s | %d fragmentos | modo %s",
		bundle.KBName, bundle.ChunksTotal, a.service.Mode(),
	))
}

// renderResults renders the navigable result list.
func (a *App) renderResults() string {
	if a.busy {
		return a.styles.Muted.Render("Buscando...")
	}
	if len(a.results) == 0 {
		if a.query != "" && a.err == nil {
			return a.styles.Muted.Render("Sin resultados")
		}
		return a.styles.Muted.Render("Sin resultados todavia")
	}

	lines := make([]string, 0, len(a.results)*2+2)
	lines = append(lines, a.styles.Subtitle.Render(fmt.Sprintf("Resultados (%d)", len(a.results))), "")

	for i := range a.results {
		lines = append(lines, a.renderResult(i, &a.results[i]))
	}
	return strings.Join(lines, "\n")
}

// renderResult formats one result as a label line plus a snippet line.
func (a *App) renderResult(index int, res *domain.Result) string {
	indicator := "  "
	if index == a.selected {
		indicator = "> "
	}

	head := fmt.Sprintf("%s%s  %.2f %s", indicator, res.Chunk.Label, res.Score, res.MatchType)
	var headLine string
	if index == a.selected {
		headLine = a.styles.Selected.Render(head)
	} else {
		headLine = a.styles.Normal.Render(head)
	}

	snippet := snippetOf(res.Chunk.Text, a.width-6)
	return headLine + "\n" + a.styles.Muted.Render("    "+snippet)
}

// renderStatus renders the bottom hint bar.
func (a *App) renderStatus() string {
	bindings := a.keymap.InputHelp()
	if !a.focusInput && len(a.results) > 0 {
		bindings = a.keymap.ResultsHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return a.styles.StatusBar.Width(a.width).Render(strings.Join(hints, " | "))
}

// snippetOf collapses whitespace and truncates text to maxLen runes.
func snippetOf(text string, maxLen int) string {
	if maxLen < 20 {
		maxLen = 20
	}
	collapsed := strings.Join(strings.Fields(text), " ")
	runes := []rune(collapsed)
	if len(runes) <= maxLen {
		return collapsed
	}
	return string(runes[:maxLen-1]) + "…"
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true

	inputWidth := width - 14
	if inputWidth < 20 {
		inputWidth = 20
	}
	a.input.Width = inputWidth
}

// Query returns the last submitted question.
func (a *App) Query() string {
	return a.query
}

// Results returns the current retrieval results.
func (a *App) Results() []domain.Result {
	return a.results
}

// SelectedIndex returns the index of the highlighted result.
func (a *App) SelectedIndex() int {
	return a.selected
}

// Err returns the last retrieval error, if any.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has received its dimensions.
func (a *App) Ready() bool {
	return a.ready
}

// InputFocused returns whether the question input has focus.
func (a *App) InputFocused() bool {
	return a.focusInput
}
