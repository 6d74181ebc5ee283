package detail

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/sync/errgroup"

	"github.com/shelfwatch/wantlist/internal/openlibrary"
)

// maxLookups bounds concurrent author lookups for one book.
const maxLookups = 4

// State is the loading state of the author panel.
type State int

// Panel states.
const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

// AuthorLookup fetches the best search hit for an author name.
type AuthorLookup func(ctx context.Context, name string) (*openlibrary.AuthorDoc, error)

// Author is the lookup outcome for one name.
type Author struct {
	Name string
	Doc  *openlibrary.AuthorDoc
	Err  error
}

// LoadedMsg carries the authors of the book identified by Key.
type LoadedMsg struct {
	Key     string
	Authors []Author
}

// Styles used by View. Zero styles render plain text.
type Styles struct {
	Header lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Error  lipgloss.Style
	Subtle lipgloss.Style
}

// Model is the author panel of the detail view.
type Model struct {
	ctx     context.Context
	lookup  AuthorLookup
	styles  Styles
	key     string
	names   []string
	state   State
	authors []Author
}

// New returns an idle panel. A nil lookup leaves the panel idle forever.
func New(ctx context.Context, lookup AuthorLookup, styles Styles) Model {
	return Model{ctx: ctx, lookup: lookup, styles: styles}
}

// Open starts loading the authors of the book key.
func (m Model) Open(key string, names []string) (Model, tea.Cmd) {
	m.key = key
	m.names = names
	m.authors = nil
	if m.lookup == nil || len(names) == 0 {
		m.state = StateIdle
		return m, nil
	}
	m.state = StateLoading
	return m, m.load()
}

// Close forgets the current book so late results are dropped.
func (m Model) Close() Model {
	m.key = ""
	m.state = StateIdle
	m.authors = nil
	return m
}

// State returns the panel state.
func (m Model) State() State {
	return m.state
}

// Authors returns the loaded authors.
func (m Model) Authors() []Author {
	return m.authors
}

// Update applies LoadedMsg for the open book and retries on 'r' after a failure.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case LoadedMsg:
		if msg.Key != m.key || m.state != StateLoading {
			return m, nil
		}
		m.authors = msg.Authors
		m.state = StateLoaded
		for _, a := range msg.Authors {
			if a.Err != nil {
				m.state = StateFailed
				break
			}
		}
	case tea.KeyMsg:
		if msg.String() == "r" && m.state == StateFailed {
			m.state = StateLoading
			return m, m.load()
		}
	}
	return m, nil
}

func (m Model) load() tea.Cmd {
	ctx, lookup, key := m.ctx, m.lookup, m.key
	names := append([]string(nil), m.names...)
	return func() tea.Msg {
		authors := make([]Author, len(names))
		var g errgroup.Group
		g.SetLimit(maxLookups)
		for i, name := range names {
			g.Go(func() error {
				doc, err := lookup(ctx, name)
				authors[i] = Author{Name: name, Doc: doc, Err: err}
				return nil
			})
		}
		_ = g.Wait()
		return LoadedMsg{Key: key, Authors: authors}
	}
}

// View renders the panel.
func (m Model) View() string {
	switch m.state {
	case StateIdle:
		return ""
	case StateLoading:
		return m.styles.Subtle.Render("Loading author details...")
	}

	var b strings.Builder
	b.WriteString(m.styles.Header.Render("AUTHORS"))
	b.WriteString("\n")
	for _, a := range m.authors {
		b.WriteString(m.styles.Value.Render("  " + a.Name))
		b.WriteString("\n")
		switch {
		case a.Err != nil:
			b.WriteString(m.styles.Error.Render("    lookup failed: " + a.Err.Error()))
			b.WriteString("\n")
		case a.Doc == nil:
			b.WriteString(m.styles.Subtle.Render("    no Open Library record"))
			b.WriteString("\n")
		default:
			m.field(&b, "Born", a.Doc.BirthDate)
			m.field(&b, "Died", a.Doc.DeathDate)
			m.field(&b, "Top work", a.Doc.TopWork)
			if a.Doc.WorkCount > 0 {
				m.field(&b, "Works", fmt.Sprintf("%d", a.Doc.WorkCount))
			}
			if len(a.Doc.TopSubjects) > 0 {
				m.field(&b, "Subjects", strings.Join(a.Doc.TopSubjects, ", "))
			}
		}
	}
	if m.state == StateFailed {
		b.WriteString(m.styles.Subtle.Render("Press 'r' to retry failed lookups"))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) field(b *strings.Builder, label, value string) {
	if value == "" {
		return
	}
	b.WriteString(m.styles.Label.Render(fmt.Sprintf("    %-9s ", label+":")))
	b.WriteString(m.styles.Value.Render(value))
	b.WriteString("\n")
}
