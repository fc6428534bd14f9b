// Package tui is the terminal rendition of the share viewer: a link form,
// the loading, error and result panels, and a navigable folder tree.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/denysvitali/share-viewer/internal/models"
	"github.com/denysvitali/share-viewer/pkg/form"
	"github.com/denysvitali/share-viewer/pkg/theme"
	"github.com/denysvitali/share-viewer/pkg/tree"
)

type focus int

const (
	focusURL focus = iota
	focusPassword
	focusTree
)

// SubmitDoneMsg carries the outcome of one submission.
type SubmitDoneMsg struct {
	Seq     int
	Entries []models.ListingEntry
	Error   string
	Err     error
}

// outcomeView collects what the form controller shows. The model owns the
// loading indicator itself, so loading updates are ignored here.
type outcomeView struct {
	msg SubmitDoneMsg
}

func (v *outcomeView) ShowLoading() {}
func (v *outcomeView) HideLoading() {}

func (v *outcomeView) ShowError(message string) {
	v.msg.Error = message
}

func (v *outcomeView) ShowResult(entries []models.ListingEntry) {
	v.msg.Entries = entries
}

// Options configures a Model.
type Options struct {
	Form   *form.Controller
	Themes *theme.Controller
	Logger *logrus.Logger

	// ShareURL and Password prefill the form; a non-empty ShareURL is submitted on start.
	ShareURL string
	Password string

	// Timeout bounds one lookup; zero means no bound.
	Timeout time.Duration
}

// Model is the bubbletea model of the browser.
type Model struct {
	form    *form.Controller
	themes  *theme.Controller
	logger  *logrus.Logger
	timeout time.Duration

	keys   KeyMap
	styles *Styles

	url      textinput.Model
	password textinput.Model
	spinner  spinner.Model
	focus    focus

	display *tree.Display
	cursor  int

	seq        int
	loading    bool
	errText    string
	showResult bool

	width    int
	height   int
	quitting bool
}

// New creates the browser model and registers it for theme changes.
func New(opts Options) Model {
	if opts.Themes == nil {
		opts.Themes = theme.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}

	initial := NewStyles(opts.Themes.Current())
	styles := &initial
	opts.Themes.OnApply(theme.ApplierFunc(func(t theme.Theme) {
		*styles = NewStyles(t)
	}))

	url := textinput.New()
	url.Placeholder = "https://www.123pan.com/s/..."
	url.Prompt = ""
	url.SetValue(opts.ShareURL)
	url.Focus()

	password := textinput.New()
	password.Placeholder = "optional"
	password.Prompt = ""
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'
	password.SetValue(opts.Password)

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		form:     opts.Form,
		themes:   opts.Themes,
		logger:   opts.Logger,
		timeout:  opts.Timeout,
		keys:     DefaultKeyMap(),
		styles:   styles,
		url:      url,
		password: password,
		spinner:  sp,
		display:  tree.NewDisplay(),
	}
}

type submitMsg struct{}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{textinput.Blink}
	if strings.TrimSpace(m.url.Value()) != "" {
		cmds = append(cmds, func() tea.Msg { return submitMsg{} })
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case submitMsg:
		return m.submit()

	case SubmitDoneMsg:
		return m.finish(msg), nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.updateInputs(msg)
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Refresh):
		return m.submit()
	case key.Matches(msg, m.keys.Focus):
		return m.cycleFocus(msg.String() == "shift+tab")
	}

	if m.focus != focusTree {
		if key.Matches(msg, m.keys.Submit) {
			return m.submit()
		}
		return m.updateInputs(msg)
	}

	rows := m.rows()
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Toggle):
		if m.cursor < len(rows) && rows[m.cursor].Folder {
			if _, err := m.display.Toggle(rows[m.cursor].ID); err != nil {
				m.logger.Debugf("Toggle failed: %v", err)
			}
		}
	case key.Matches(msg, m.keys.CollapseAll):
		m.display.CollapseAll()
		m.clampCursor()
	case key.Matches(msg, m.keys.Theme):
		m.themes.Toggle()
	}
	return m, nil
}

func (m Model) cycleFocus(reverse bool) (tea.Model, tea.Cmd) {
	next := m.focus + 1
	if reverse {
		next = m.focus + 2
	}
	m.focus = next % 3

	m.url.Blur()
	m.password.Blur()
	switch m.focus {
	case focusURL:
		return m, m.url.Focus()
	case focusPassword:
		return m, m.password.Focus()
	}
	return m, nil
}

func (m Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.focus {
	case focusURL:
		m.url, cmd = m.url.Update(msg)
	case focusPassword:
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

// submit shows the loading panel, hides the others and starts a lookup.
func (m Model) submit() (Model, tea.Cmd) {
	m.seq++
	m.loading = true
	m.errText = ""
	m.showResult = false

	seq := m.seq
	controller := m.form
	shareURL := m.url.Value()
	password := m.password.Value()
	timeout := m.timeout

	run := func() tea.Msg {
		ctx := context.Background()
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		view := &outcomeView{msg: SubmitDoneMsg{Seq: seq}}
		view.msg.Err = controller.Submit(ctx, view, shareURL, password)
		return view.msg
	}

	return m, tea.Batch(m.spinner.Tick, run)
}

// finish applies an outcome. Outcomes are applied in arrival order, so the
// last lookup to complete is the one shown.
func (m Model) finish(msg SubmitDoneMsg) Model {
	if msg.Seq != m.seq {
		m.logger.WithFields(logrus.Fields{"seq": msg.Seq, "latest": m.seq}).Debug("Applying out-of-order lookup result")
	}

	m.loading = false
	if msg.Err != nil {
		m.errText = msg.Error
		m.showResult = false
		return m
	}

	m.errText = ""
	m.display.Render(msg.Entries)
	m.showResult = true
	m.cursor = 0
	if !m.display.Empty() {
		m.focus = focusTree
		m.url.Blur()
		m.password.Blur()
	}
	return m
}

func (m Model) rows() []*tree.Node {
	return m.display.Tree().Visible()
}

func (m *Model) clampCursor() {
	if n := len(m.rows()); m.cursor >= n {
		m.cursor = max(n-1, 0)
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := m.styles
	var b strings.Builder

	b.WriteString(s.Title.Render("Share Viewer"))
	b.WriteString("  ")
	b.WriteString(s.Help.Render(fmt.Sprintf("theme: %s", m.themes.Current())))
	b.WriteString("\n\n")

	b.WriteString(s.Label.Render("Link"))
	b.WriteString(m.url.View())
	b.WriteString("\n")
	b.WriteString(s.Label.Render("Password"))
	b.WriteString(m.password.View())
	b.WriteString("\n\n")

	if m.loading {
		b.WriteString(m.spinner.View())
		b.WriteString(" Loading...\n")
	}
	if m.errText != "" {
		b.WriteString(s.Error.Render("✗ " + m.errText))
		b.WriteString("\n")
	}
	if m.showResult {
		b.WriteString(m.treeView())
	}

	b.WriteString("\n")
	b.WriteString(m.helpView())
	return b.String()
}

func (m Model) treeView() string {
	s := m.styles
	t := m.display.Tree()
	if t.Empty() {
		return s.Placeholder.Render(tree.EmptyListingText) + "\n"
	}

	var b strings.Builder
	folders, files := t.Stats()
	b.WriteString(s.Summary.Render(fmt.Sprintf("%d folders, %d files", folders, files)))
	b.WriteString("\n")

	for i, n := range t.Visible() {
		indent := strings.Repeat("  ", n.Depth)
		line := indent + rowText(n)
		switch {
		case i == m.cursor && m.focus == focusTree:
			line = s.Selected.Render(line)
		case n.Folder:
			line = s.Folder.Render(line)
		default:
			line = s.File.Render(line)
		}
		b.WriteString(line)
		if !n.Folder && n.Size != "" {
			b.WriteString("  ")
			b.WriteString(s.Size.Render(n.Size))
		}
		b.WriteString("\n")

		if n.Expanded && n.IsEmptyFolder() {
			b.WriteString(indent + "  ")
			b.WriteString(s.Placeholder.Render(tree.EmptyFolderText))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func rowText(n *tree.Node) string {
	if !n.Folder {
		return n.Category.Glyph() + " " + n.Name
	}
	chevron, glyph := "▸", "📁"
	if n.Expanded {
		chevron, glyph = "▾", "📂"
	}
	return chevron + " " + glyph + " " + n.Name
}

func (m Model) helpView() string {
	bindings := m.keys.inputHelp()
	if m.focus == focusTree {
		bindings = m.keys.treeHelp()
	}

	parts := make([]string, 0, len(bindings))
	for _, k := range bindings {
		h := k.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return m.styles.Help.Render(strings.Join(parts, " • "))
}

// Run starts the browser on the terminal.
func Run(opts Options) error {
	p := tea.NewProgram(New(opts), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
