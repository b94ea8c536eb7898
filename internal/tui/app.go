// internal/tui/app.go
//
// Terminal browser for the site's content tree, built on bubbletea's
// Elm-style loop: the App model holds all state, Update reacts to
// messages, and View renders the current state to a string.

package tui

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/inkpress-dev/inkpress/internal/buildlog"
	"github.com/inkpress-dev/inkpress/internal/config"
	"github.com/inkpress-dev/inkpress/internal/content"
)

const previewBodyLines = 14

var (
	badgeReady   = lipgloss.NewStyle().Foreground(lipgloss.Color("#2ECC71")).Render("●")
	badgeInvalid = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Render("●")
	badgeError   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F5A623")).Render("●")

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	headStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF"))
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))
)

// scanMsg carries the result of a content rescan into the update loop.
type scanMsg struct {
	tree *content.Tree
	err  error
}

// postItem implements list.Item for one scanned post.
type postItem struct {
	entry content.Entry
}

func (i postItem) Title() string {
	title := i.entry.Post.Meta.Title()
	if title == "" {
		title = filepath.Base(i.entry.Path)
	}
	return fmt.Sprintf("%s %s", stateBadge(i.entry.State), title)
}

func (i postItem) Description() string {
	parts := []string{}
	if slug := i.entry.Slug(); slug != "" {
		parts = append(parts, slug)
	}
	if !i.entry.Date.IsZero() {
		parts = append(parts, i.entry.Date.Format("2006-01-02"))
	}
	switch {
	case i.entry.Err != nil:
		parts = append(parts, i.entry.Err.Error())
	case len(i.entry.Issues) > 0:
		parts = append(parts, fmt.Sprintf("%d issue(s)", len(i.entry.Issues)))
	}
	if len(parts) == 0 {
		return i.entry.Path
	}
	return strings.Join(parts, " · ")
}

func (i postItem) FilterValue() string {
	return i.entry.Post.Meta.Title() + " " + i.entry.Slug()
}

func stateBadge(state content.State) string {
	switch state {
	case content.StateReady:
		return badgeReady
	case content.StateInvalid:
		return badgeInvalid
	default:
		return badgeError
	}
}

// App is the browser model: the post list on the left, a preview of the
// selected post on the right, and the build journal's tail below.
type App struct {
	cfg     *config.Config
	journal *buildlog.Journal
	store   *content.Store

	postList  list.Model
	tree      *content.Tree
	statusMsg string
	scanErr   string

	width  int
	height int
}

// NewApp builds the browser for the given site root.
func NewApp(siteRoot string) (*App, error) {
	cfg, err := config.New(siteRoot)
	if err != nil {
		return nil, err
	}
	journal, err := buildlog.New(filepath.Join(cfg.LogsDir(), "build.log"))
	if err != nil {
		return nil, err
	}
	return newApp(cfg, journal), nil
}

func newApp(cfg *config.Config, journal *buildlog.Journal) *App {
	postList := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	postList.Title = fmt.Sprintf("Posts · %s", cfg.Site.Title)
	postList.SetShowStatusBar(false)
	postList.SetFilteringEnabled(true)
	return &App{
		cfg:      cfg,
		journal:  journal,
		store:    content.NewStore(cfg.ContentDirs()...),
		postList: postList,
	}
}

// Init kicks off the first content scan.
func (a *App) Init() tea.Cmd {
	return a.scanCmd()
}

func (a *App) scanCmd() tea.Cmd {
	return func() tea.Msg {
		tree, err := a.store.Scan()
		return scanMsg{tree: tree, err: err}
	}
}

// Update reacts to one message.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.postList.SetSize(a.listWidth(), max(6, msg.Height-12))
		return a, nil

	case scanMsg:
		if msg.err != nil {
			a.scanErr = msg.err.Error()
			return a, nil
		}
		a.scanErr = ""
		a.tree = msg.tree
		a.setItems()
		a.statusMsg = fmt.Sprintf("%d posts · %d invalid · scanned %s",
			len(msg.tree.Entries), len(msg.tree.Invalid()), time.Now().Format("15:04:05"))
		return a, nil

	case tea.KeyMsg:
		// Filtering owns the keyboard while active.
		if a.postList.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return a, tea.Quit
		case "r":
			a.statusMsg = "Rescanning content..."
			return a, a.scanCmd()
		}
	}

	var cmd tea.Cmd
	a.postList, cmd = a.postList.Update(msg)
	return a, cmd
}

func (a *App) setItems() {
	items := make([]list.Item, 0, len(a.tree.Entries))
	for _, entry := range a.tree.Entries {
		items = append(items, postItem{entry: entry})
	}
	a.postList.SetItems(items)
}

func (a *App) listWidth() int {
	if a.width <= 0 {
		return 48
	}
	return max(32, a.width/2-4)
}

// View renders the two panes plus the journal tail.
func (a *App) View() string {
	left := panelStyle.Width(a.listWidth() + 2).Render(a.postList.View())
	right := panelStyle.Width(max(32, a.width-a.listWidth()-8)).Render(a.renderPreview())
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	sections := []string{body}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := a.statusMsg
	if a.scanErr != "" {
		footer = "scan failed: " + a.scanErr
	}
	sections = append(sections, dimStyle.Render(footer+"    r rescan · / filter · q quit"))
	return strings.Join(sections, "\n")
}

// renderPreview shows the selected post's metadata header and the first
// lines of its body.
func (a *App) renderPreview() string {
	item, ok := a.postList.SelectedItem().(postItem)
	if !ok {
		return dimStyle.Render("No post selected.")
	}
	entry := item.entry
	var lines []string
	lines = append(lines, headStyle.Render(filepath.Base(entry.Path)))
	if entry.Err != nil {
		lines = append(lines, badgeError+" "+entry.Err.Error())
		return strings.Join(lines, "\n")
	}
	for _, field := range entry.Post.Meta.Fields {
		lines = append(lines, fmt.Sprintf("%s: %s", field.Key, field.Value))
	}
	for _, issue := range entry.Issues {
		lines = append(lines, badgeInvalid+" "+issue.String())
	}
	lines = append(lines, "")
	body := strings.Split(strings.TrimRight(string(entry.Post.Body), "\n"), "\n")
	if len(body) > previewBodyLines {
		body = append(body[:previewBodyLines], dimStyle.Render("..."))
	}
	lines = append(lines, body...)
	return strings.Join(lines, "\n")
}

func (a *App) renderLogPanel() string {
	lines, _ := a.journal.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	head := headStyle.Render("BUILD LOG · " + filepath.Base(a.journal.Path()))
	body := dimStyle.Render(strings.Join(lines, "\n"))
	return panelStyle.Render(head + "\n" + body)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
