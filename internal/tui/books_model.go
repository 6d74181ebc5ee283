package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/shelfwatch/wantlist/internal/cli/pagination"
	"github.com/shelfwatch/wantlist/internal/engine"
	"github.com/shelfwatch/wantlist/internal/logging"
	"github.com/shelfwatch/wantlist/internal/tui/detail"
	listview "github.com/shelfwatch/wantlist/internal/tui/list"
)

// BooksLoadingProgressMsg reports assembled rows while loading.
type BooksLoadingProgressMsg struct {
	Loaded int
	Total  int
}

// BooksLoadedMsg ends the loading state. Err is set when the reading log could
// not be fetched or the load was aborted.
type BooksLoadedMsg struct {
	Result *engine.LoadResult
	Err    error
}

// BooksOptions configures a BooksModel.
type BooksOptions struct {
	User         string
	Shelf        string
	SortField    string
	SortOrder    string
	PageSize     int
	AuthorLookup detail.AuthorLookup
}

// column is one table column.
type column struct {
	field string
	title string
	// weight is the column's share of the available width.
	weight int
}

//nolint:gochecknoglobals // Fixed column layout.
var bookColumns = []column{
	{field: pagination.FieldTitle, title: "Title", weight: 5},
	{field: pagination.FieldFirstPublishYear, title: "First Publish Year", weight: 2},
	{field: pagination.FieldSubjects, title: "Subject", weight: 5},
	{field: pagination.FieldAuthorNames, title: "Author Name", weight: 3},
	{field: pagination.FieldAuthorBirthDates, title: "Author Birth Date", weight: 2},
	{field: pagination.FieldAuthorTopWorks, title: "Author Top Work", weight: 4},
}

const (
	minColumnWidth  = 6
	subjectsHeight  = 8
	columnSeparator = 2
)

// BooksModel is the interactive want-to-read table.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View interface methods.
type BooksModel struct {
	ctx   context.Context
	state ViewState
	user  string
	shelf string

	allRows []engine.BookRow // assembled rows in reading-log order
	rows    []engine.BookRow // filtered and sorted

	sorter    pagination.Sorter
	sortField string
	sortOrder string
	page      int // 1-based
	pageSize  int

	table      table.Model
	textInput  textinput.Model
	showFilter bool
	selected   int

	width  int
	height int

	loadingState *LoadingState
	loaded       int
	total        int
	progressMsg  string

	loadErrors []engine.FetchError
	warning    string
	err        error

	authors  detail.Model
	subjects *listview.VirtualListModel[string]
}

// NewBooksModel creates the model in its loading state.
func NewBooksModel(ctx context.Context, opts BooksOptions) (BooksModel, tea.Cmd) {
	sortField, sortOrder := opts.SortField, opts.SortOrder
	if !pagination.IsValidField(sortField) {
		sortField = pagination.DefaultSortField
	}
	if sortOrder != pagination.SortOrderDesc {
		sortOrder = pagination.SortOrderAsc
	}
	pageSize := opts.PageSize
	if !pagination.IsRowsPerPageOption(pageSize) {
		pageSize = pagination.DefaultPageSize
	}

	m := BooksModel{
		ctx:          ctx,
		state:        ViewStateLoading,
		user:         opts.User,
		shelf:        opts.Shelf,
		allRows:      []engine.BookRow{},
		rows:         []engine.BookRow{},
		sorter:       pagination.NewBookSorter(),
		sortField:    sortField,
		sortOrder:    sortOrder,
		page:         1,
		pageSize:     pageSize,
		textInput:    newTextInput(),
		width:        defaultWidth,
		height:       defaultHeight,
		loadingState: NewLoadingState(),
		authors: detail.New(ctx, opts.AuthorLookup, detail.Styles{
			Header: HeaderStyle,
			Label:  LabelStyle,
			Value:  ValueStyle,
			Error:  ErrorStyle,
			Subtle: SubtleStyle,
		}),
	}
	m.table = m.buildTable()
	return m, m.loadingState.Init()
}

func newTextInput() textinput.Model {
	ti := textinput.New()
	ti.Placeholder = "title or author"
	ti.CharLimit = 100
	ti.Width = 40
	return ti
}

// Init implements tea.Model.
func (m BooksModel) Init() tea.Cmd {
	if m.loadingState != nil {
		return m.loadingState.Init()
	}
	return nil
}

// Update implements tea.Model.
func (m BooksModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.rebuildTable()
		return m, nil
	case BooksLoadingProgressMsg:
		return m.handleProgress(msg), nil
	case BooksLoadedMsg:
		return m.handleLoaded(msg), nil
	case detail.LoadedMsg:
		var cmd tea.Cmd
		m.authors, cmd = m.authors.Update(msg)
		return m, cmd
	}

	if m.showFilter {
		return m.handleFilterInput(msg)
	}

	switch m.state {
	case ViewStateLoading:
		return m.handleLoadingUpdate(msg)
	case ViewStateList:
		return m.handleListUpdate(msg)
	case ViewStateDetail:
		return m.handleDetailUpdate(msg)
	case ViewStateQuitting, ViewStateError:
		if keyMsg, ok := msg.(tea.KeyMsg); ok && isQuitKey(keyMsg.String()) {
			return m, tea.Quit
		}
		return m, nil
	default:
		return m, nil
	}
}

func isQuitKey(k string) bool {
	return k == keyQuit || k == keyCtrlC || k == keyEsc
}

func (m BooksModel) handleLoadingUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		if k := keyMsg.String(); k == keyQuit || k == keyCtrlC {
			m.state = ViewStateQuitting
			return m, tea.Quit
		}
		return m, nil
	}
	return m, m.loadingState.Update(msg)
}

func (m BooksModel) handleProgress(msg BooksLoadingProgressMsg) BooksModel {
	// Lookups report concurrently, so counts may arrive out of order.
	m.loaded = max(m.loaded, msg.Loaded)
	m.total = max(m.total, msg.Total)
	percent := 0
	if m.total > 0 {
		percent = (m.loaded * 100) / m.total //nolint:mnd // Percentage calculation.
	}
	m.progressMsg = fmt.Sprintf("Loading: %d/%d books (%d%%)", m.loaded, m.total, percent)
	m.loadingState.SetMessage(m.progressMsg)
	return m
}

func (m BooksModel) handleLoaded(msg BooksLoadedMsg) BooksModel {
	m.progressMsg = ""
	if msg.Result != nil {
		m.allRows = msg.Result.Rows
		m.loadErrors = msg.Result.Errors
	}
	if m.allRows == nil {
		m.allRows = []engine.BookRow{}
	}

	switch {
	case msg.Err != nil && engine.IsReadingLogError(msg.Result):
		logging.FromContext(m.ctx).Warn().Ctx(m.ctx).Str("component", "tui").
			Err(msg.Err).Msg("showing empty table")
		m.warning = "Could not load reading log: " + msg.Err.Error()
	case msg.Err != nil:
		m.state = ViewStateError
		m.err = msg.Err
		return m
	case len(m.loadErrors) > 0:
		m.warning = fmt.Sprintf("%d lookups failed; affected cells are empty", len(m.loadErrors))
	}

	m.loaded = len(m.allRows)
	m.total = len(m.allRows)
	m.state = ViewStateList
	m.applyFilter(m.textInput.Value())
	return m
}

func (m BooksModel) handleFilterInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	if keyMsg, ok := msg.(tea.KeyMsg); ok {
		switch keyMsg.String() {
		case keyEnter, keyEsc:
			m.showFilter = false
			m.textInput.Blur()
			m.applyFilter(m.textInput.Value())
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m BooksModel) handleListUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(msg)
		return m, cmd
	}
	return m.handleListKeypress(keyMsg)
}

func (m BooksModel) handleListKeypress(keyMsg tea.KeyMsg) (tea.Model, tea.Cmd) {
	k := keyMsg.String()
	if col, ok := columnForKey(k); ok {
		m.ClickHeader(bookColumns[col].field)
		return m, nil
	}

	switch k {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyEnter:
		return m.openDetail()
	case keySlash:
		m.showFilter = true
		m.textInput.Focus()
		return m, textinput.Blink
	case keyS:
		m.cycleSortColumn()
		return m, nil
	case keyR:
		m.reverseSort()
		return m, nil
	case keyN, keyRight, keyPgDown:
		m.setPage(m.page + 1)
		return m, nil
	case keyP, keyLeft, keyPgUp:
		m.setPage(m.page - 1)
		return m, nil
	case keyPlus:
		m.pageSize = pagination.NextRowsPerPage(m.pageSize)
		m.page = 1
		m.rebuildTable()
		return m, nil
	case keyEsc:
		if m.textInput.Value() != "" {
			m.textInput.SetValue("")
			m.applyFilter("")
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.table, cmd = m.table.Update(keyMsg)
		return m, cmd
	}
}

// columnForKey maps "1".."6" to a column index.
func columnForKey(k string) (int, bool) {
	if len(k) != 1 || k[0] < '1' || k[0] > '9' {
		return 0, false
	}
	idx := int(k[0] - '1')
	return idx, idx < len(bookColumns)
}

func (m BooksModel) openDetail() (tea.Model, tea.Cmd) {
	m.selected = m.absoluteIndex(m.table.Cursor())
	if m.selected < 0 || m.selected >= len(m.rows) {
		return m, nil
	}
	row := m.rows[m.selected]
	m.state = ViewStateDetail
	m.subjects = listview.NewVirtualListModel(row.Subjects, subjectsHeight, m.width-borderPadding,
		func(subject string, selected bool) string {
			if selected {
				return TableSelectedStyle.Render("› " + subject)
			}
			return ValueStyle.Render("  " + subject)
		})

	var cmd tea.Cmd
	m.authors, cmd = m.authors.Open(rowKey(row), row.AuthorNames)
	return m, cmd
}

// rowKey identifies a row for async detail results.
func rowKey(row engine.BookRow) string {
	if row.WorkKey != "" {
		return row.WorkKey
	}
	return row.Title
}

func (m BooksModel) handleDetailUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch keyMsg.String() {
	case keyQuit, keyCtrlC:
		m.state = ViewStateQuitting
		return m, tea.Quit
	case keyEsc:
		m.state = ViewStateList
		m.authors = m.authors.Close()
		m.subjects = nil
		m.table.Focus()
		return m, nil
	case keyR:
		var cmd tea.Cmd
		m.authors, cmd = m.authors.Update(keyMsg)
		return m, cmd
	default:
		if m.subjects != nil {
			m.subjects.Update(keyMsg)
		}
		return m, nil
	}
}

// ClickHeader applies a header click on field and returns to the first page.
func (m *BooksModel) ClickHeader(field string) {
	m.sortField, m.sortOrder = pagination.NextSortState(m.sortField, m.sortOrder, field)
	m.page = 1
	m.refreshTable()
}

// cycleSortColumn moves to the next column, ascending.
func (m *BooksModel) cycleSortColumn() {
	fields := pagination.Fields()
	next := fields[0]
	for i, f := range fields {
		if f == m.sortField {
			next = fields[(i+1)%len(fields)]
			break
		}
	}
	m.sortField, m.sortOrder = next, pagination.SortOrderAsc
	m.page = 1
	m.refreshTable()
}

// reverseSort flips the order of the active column.
func (m *BooksModel) reverseSort() {
	if m.sortOrder == pagination.SortOrderAsc {
		m.sortOrder = pagination.SortOrderDesc
	} else {
		m.sortOrder = pagination.SortOrderAsc
	}
	m.page = 1
	m.refreshTable()
}

func (m *BooksModel) setPage(page int) {
	totalPages := m.params().TotalPages(len(m.rows))
	if page < 1 || page > max(totalPages, 1) {
		return
	}
	m.page = page
	m.rebuildTable()
}

func (m BooksModel) params() pagination.Params {
	return pagination.Params{
		Page:      m.page,
		PageSize:  m.pageSize,
		SortField: m.sortField,
		SortOrder: m.sortOrder,
	}
}

// applyFilter keeps rows whose title or any author contains the filter text,
// case-insensitively, then re-sorts and returns to the first page.
func (m *BooksModel) applyFilter(filterText string) {
	query := strings.ToLower(strings.TrimSpace(filterText))
	if query == "" {
		m.rows = m.allRows
	} else {
		filtered := []engine.BookRow{}
		for _, row := range m.allRows {
			if matchesFilter(row, query) {
				filtered = append(filtered, row)
			}
		}
		m.rows = filtered
	}
	m.page = 1
	m.refreshTable()
}

func matchesFilter(row engine.BookRow, query string) bool {
	if strings.Contains(strings.ToLower(row.Title), query) {
		return true
	}
	for _, name := range row.AuthorNames {
		if strings.Contains(strings.ToLower(name), query) {
			return true
		}
	}
	return false
}

// refreshTable re-sorts the filtered rows and rebuilds the table.
func (m *BooksModel) refreshTable() {
	m.rows = m.sorter.Sort(m.rows, m.sortField, m.sortOrder)
	m.rebuildTable()
}

func (m *BooksModel) rebuildTable() {
	m.table = m.buildTable()
}

func (m *BooksModel) visibleRows() []engine.BookRow {
	return pagination.Slice(m.params(), m.rows)
}

func (m BooksModel) absoluteIndex(cursor int) int {
	offset, _ := m.params().OffsetLimit()
	return offset + cursor
}

func (m *BooksModel) buildTable() table.Model {
	widths := columnWidths(m.width)
	columns := make([]table.Column, len(bookColumns))
	for i, c := range bookColumns {
		title := c.title
		if c.field == m.sortField {
			title += sortIndicator(m.sortOrder)
		}
		columns[i] = table.Column{Title: title, Width: widths[i]}
	}

	visible := m.visibleRows()
	rows := make([]table.Row, len(visible))
	for i, r := range visible {
		rows[i] = table.Row(RowCells(r))
	}

	availableHeight := max(m.height-summaryHeight-1, minHeight)
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(m.state != ViewStateDetail),
		table.WithHeight(availableHeight),
	)
	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)
	return t
}

func sortIndicator(order string) string {
	if order == pagination.SortOrderDesc {
		return " ▼"
	}
	return " ▲"
}

// columnWidths splits width across the columns by weight.
func columnWidths(width int) []int {
	totalWeight := 0
	for _, c := range bookColumns {
		totalWeight += c.weight
	}
	available := width - borderPadding - columnSeparator*len(bookColumns)
	widths := make([]int, len(bookColumns))
	for i, c := range bookColumns {
		widths[i] = max(available*c.weight/totalWeight, minColumnWidth)
	}
	return widths
}

// Rows returns the filtered, sorted rows.
func (m BooksModel) Rows() []engine.BookRow {
	return m.rows
}

// SortState returns the active sort column and order.
func (m BooksModel) SortState() (string, string) {
	return m.sortField, m.sortOrder
}

// Page returns the 1-based page and the page size.
func (m BooksModel) Page() (int, int) {
	return m.page, m.pageSize
}

// State returns the current view state.
func (m BooksModel) State() ViewState {
	return m.state
}
