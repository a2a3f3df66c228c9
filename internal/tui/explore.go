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

	"github.com/felixgeelhaar/postify/internal/api"
)

// DefaultDebounce is how long typing must pause before a search is sent
const DefaultDebounce = 600 * time.Millisecond

// SearchFunc runs a search; a blank query returns the explore feed
type SearchFunc func(ctx context.Context, query string) ([]api.Post, error)

// debounceMsg fires after a keystroke's quiet period. Only the tick
// carrying the latest sequence number triggers a search.
type debounceMsg struct {
	seq int
}

// resultsMsg carries a search response tagged with the sequence number
// of the keystroke that caused it
type resultsMsg struct {
	seq   int
	query string
	posts []api.Post
	err   error
}

type exploreKeys struct {
	Quit   key.Binding
	Up     key.Binding
	Down   key.Binding
	Select key.Binding
}

var exploreKeyMap = exploreKeys{
	Quit:   key.NewBinding(key.WithKeys("ctrl+c", "esc"), key.WithHelp("esc", "quit")),
	Up:     key.NewBinding(key.WithKeys("up", "ctrl+p"), key.WithHelp("↑", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "ctrl+n"), key.WithHelp("↓", "down")),
	Select: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open post")),
}

// ExploreModel is the interactive explore browser: a search box over the
// post feed with debounced queries
type ExploreModel struct {
	ctx      context.Context
	search   SearchFunc
	debounce time.Duration

	input   textinput.Model
	spinner spinner.Model
	styles  Styles

	seq     int
	loading bool
	query   string
	posts   []api.Post
	err     error

	cursor   int
	selected string
	quitting bool
}

// NewExploreModel creates the browser. initialQuery is searched right away.
func NewExploreModel(ctx context.Context, search SearchFunc, initialQuery string, debounce time.Duration, styles Styles) ExploreModel {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	ti := textinput.New()
	ti.Placeholder = "Search posts or #tags"
	ti.Prompt = "search> "
	ti.SetValue(initialQuery)
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))

	return ExploreModel{
		ctx:      ctx,
		search:   search,
		debounce: debounce,
		input:    ti,
		spinner:  sp,
		styles:   styles,
		loading:  true,
	}
}

func (m ExploreModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick, m.fetch(m.seq, m.input.Value()))
}

func (m ExploreModel) fetch(seq int, query string) tea.Cmd {
	ctx, search := m.ctx, m.search
	return func() tea.Msg {
		posts, err := search(ctx, query)
		return resultsMsg{seq: seq, query: query, posts: posts, err: err}
	}
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, exploreKeyMap.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, exploreKeyMap.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, exploreKeyMap.Down):
			if m.cursor < len(m.posts)-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, exploreKeyMap.Select):
			if len(m.posts) > 0 {
				m.selected = m.posts[m.cursor].ID
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}

		before := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() == before {
			return m, cmd
		}

		m.seq++
		seq := m.seq
		tick := tea.Tick(m.debounce, func(time.Time) tea.Msg { return debounceMsg{seq: seq} })
		return m, tea.Batch(cmd, tick)

	case debounceMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		m.loading = true
		return m, m.fetch(msg.seq, m.input.Value())

	case resultsMsg:
		if msg.seq != m.seq {
			// superseded by a newer keystroke
			return m, nil
		}
		m.loading = false
		m.query = msg.query
		m.err = msg.err
		if msg.err == nil {
			m.posts = msg.posts
			m.cursor = 0
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m ExploreModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Explore"))
	b.WriteString("\n\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " " + m.styles.Muted.Render("Searching..."))
		b.WriteString("\n")
	case m.err != nil:
		b.WriteString(RenderError(m.styles, m.err))
		b.WriteString("\n")
	case len(m.posts) == 0:
		b.WriteString(m.styles.Muted.Render("No posts found."))
		b.WriteString("\n")
	}

	if !m.loading {
		for i, p := range m.posts {
			marker := "  "
			title := m.styles.Subtitle.Render(p.Title)
			if i == m.cursor {
				marker = m.styles.Accent.Render("> ")
				title = m.styles.Accent.Render(p.Title)
			}
			b.WriteString(fmt.Sprintf("%s%s  %s\n", marker, title,
				m.styles.Muted.Render("by "+p.Author.DisplayName()+"  ♥ "+fmt.Sprint(len(p.Likes)))))
		}
	}

	b.WriteString(m.styles.Help.Render("↑/↓ move • enter open • esc quit"))
	return b.String()
}

// Selected returns the id of the post chosen with enter
func (m ExploreModel) Selected() (string, bool) {
	return m.selected, m.selected != ""
}

// Posts returns the results currently shown
func (m ExploreModel) Posts() []api.Post {
	return m.posts
}

// RunExplore runs the browser until the user quits and returns the
// selected post id, if any
func RunExplore(ctx context.Context, model ExploreModel) (string, error) {
	final, err := tea.NewProgram(model, tea.WithContext(ctx)).Run()
	if err != nil {
		return "", fmt.Errorf("explore browser: %w", err)
	}
	id, _ := final.(ExploreModel).Selected()
	return id, nil
}
