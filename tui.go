package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"berlinstats/internal/analytics"
	"berlinstats/internal/export"
)

type view int

const (
	homeView view = iota
	districtsView
	filterView
	compareView
	trendView
	briefView
)

var filterLabels = map[string]string{
	analytics.FieldMinMosques:    "Min mosques",
	analytics.FieldMaxMosques:    "Max mosques",
	analytics.FieldMinChurches:   "Min churches",
	analytics.FieldMaxChurches:   "Max churches",
	analytics.FieldMinSynagogues: "Min synagogues",
	analytics.FieldMaxSynagogues: "Max synagogues",
}

type model struct {
	src    analytics.Source
	briefs *BriefService

	city   string
	year   int
	cities []string

	currentView   view
	width         int
	height        int
	viewport      viewport.Model
	viewportReady bool

	summary     analytics.Result[analytics.CitySummary]
	communities analytics.Result[[]analytics.Community]
	districts   analytics.Result[[]analytics.DistrictRecord]
	comparison  analytics.Result[analytics.Comparison]

	communityCursor int
	trend           *analytics.TrendDetail
	trendValues     []float64

	list          list.Model
	selection     *analytics.Selection
	filterInputs  []textinput.Model
	filterFocus   int
	criteria      analytics.FilterCriteria
	filtersActive bool

	briefDistrict *analytics.DistrictRecord
	brief         *DistrictBrief
	generating    bool

	status string
	err    error
}

type districtItem struct {
	district analytics.DistrictRecord
	selected bool
}

func (i districtItem) Title() string {
	mark := "[ ]"
	if i.selected {
		mark = "[x]"
	}
	return mark + " " + i.district.DisplayName()
}

func (i districtItem) Description() string {
	return fmt.Sprintf("Pop: %s | %s | Foreign: %s | Mosques: %s | Churches: %s | Synagogues: %s",
		analytics.FormatCount(i.district.Population),
		analytics.FormatArea(i.district.Area),
		analytics.FormatPercent(i.district.ForeignerPercentage),
		countOrUnknown(i.district.Mosques),
		countOrUnknown(i.district.Churches),
		countOrUnknown(i.district.Synagogues),
	)
}

func (i districtItem) FilterValue() string {
	return i.district.Name + " " + i.district.NameEn
}

type citiesMsg struct {
	cities []string
	err    error
}

type summaryMsg struct {
	city    string
	year    int
	summary analytics.CitySummary
	err     error
}

type communitiesMsg struct {
	city        string
	communities []analytics.Community
	err         error
}

type districtsMsg struct {
	city      string
	districts []analytics.DistrictRecord
	err       error
}

type comparisonMsg struct {
	comparison analytics.Comparison
	err        error
}

type briefMsg struct {
	brief *DistrictBrief
	err   error
}

type copyMsg struct {
	report export.Report
	err    error
}

func loadCities(src analytics.Source) tea.Cmd {
	return func() tea.Msg {
		cities, err := src.ListCities(context.Background())
		return citiesMsg{cities: cities, err: err}
	}
}

func loadSummary(src analytics.Source, city string, year int) tea.Cmd {
	return func() tea.Msg {
		summary, err := src.GetCitySummary(context.Background(), city, year)
		return summaryMsg{city: city, year: year, summary: summary, err: err}
	}
}

func loadCommunities(src analytics.Source, city string) tea.Cmd {
	return func() tea.Msg {
		communities, err := src.GetCommunityComposition(context.Background(), city)
		return communitiesMsg{city: city, communities: communities, err: err}
	}
}

func loadDistricts(src analytics.Source, city string) tea.Cmd {
	return func() tea.Msg {
		districts, err := src.ListDistricts(context.Background(), city)
		return districtsMsg{city: city, districts: districts, err: err}
	}
}

func loadComparison(src analytics.Source, ids []int) tea.Cmd {
	return func() tea.Msg {
		districts, err := analytics.DistrictsByIDs(context.Background(), src, ids)
		if err != nil {
			return comparisonMsg{err: err}
		}
		return comparisonMsg{comparison: analytics.BuildComparison(districts)}
	}
}

func generateBrief(briefs *BriefService, src analytics.Source, d analytics.DistrictRecord, year int, refresh bool) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		summary, err := src.GetCitySummary(ctx, d.City, year)
		if err != nil {
			// the brief can still be written from the district figures
			summary = analytics.CitySummary{}
		}
		var brief *DistrictBrief
		if refresh {
			brief, err = briefs.Regenerate(ctx, d, summary)
		} else {
			brief, err = briefs.Brief(ctx, d, summary)
		}
		return briefMsg{brief: brief, err: err}
	}
}

// copyReport writes the city report as CSV to the clipboard
func copyReport(city string, year int, summary analytics.Result[analytics.CitySummary], communities analytics.Result[[]analytics.Community]) tea.Cmd {
	return func() tea.Msg {
		report, err := export.BuildReport(city, year, summary, communities)
		if err != nil {
			return copyMsg{err: err}
		}
		var buf bytes.Buffer
		if err := export.WriteCSV(&buf, report); err != nil {
			return copyMsg{err: err}
		}
		if err := clipboard.WriteAll(buf.String()); err != nil {
			return copyMsg{err: fmt.Errorf("failed to copy to clipboard: %w", err)}
		}
		return copyMsg{report: report}
	}
}

func initialModel(src analytics.Source, briefs *BriefService, city string, year int) model {
	delegate := list.NewDefaultDelegate()
	delegate.SetHeight(2)

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Districts"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(false)
	l.Styles.Title = lipgloss.NewStyle().
		Background(colorAccent).
		Foreground(lipgloss.Color("230")).
		Padding(0, 1)

	inputs := make([]textinput.Model, len(analytics.FilterFields))
	for i, field := range analytics.FilterFields {
		ti := textinput.New()
		ti.Placeholder = "any"
		ti.CharLimit = 6
		ti.Width = 10
		ti.Prompt = fmt.Sprintf("%-16s", filterLabels[field]+":")
		inputs[i] = ti
	}

	vp := viewport.New(80, 20)
	vp.Style = lipgloss.NewStyle()

	if city == "" {
		city = analytics.DefaultCity
	}

	return model{
		src:          src,
		briefs:       briefs,
		city:         city,
		year:         year,
		currentView:  homeView,
		viewport:     vp,
		list:         l,
		selection:    analytics.NewSelection(),
		filterInputs: inputs,
	}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		loadCities(m.src),
		loadSummary(m.src, m.city, m.year),
		loadCommunities(m.src, m.city),
		loadDistricts(m.src, m.city),
	)
}

// reload discards everything tied to the current city or year
func (m model) reload() (model, tea.Cmd) {
	m.summary = analytics.Loading[analytics.CitySummary]()
	m.communities = analytics.Loading[[]analytics.Community]()
	m.districts = analytics.Loading[[]analytics.DistrictRecord]()
	m.selection.Clear()
	m.communityCursor = 0
	m.list.SetItems(nil)
	return m, tea.Batch(
		loadSummary(m.src, m.city, m.year),
		loadCommunities(m.src, m.city),
		loadDistricts(m.src, m.city),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width-4, msg.Height-8)

		// header line and help line
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 5
		m.viewportReady = true
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.currentView {
		case districtsView:
			return m.handleDistrictsKeys(msg)
		case filterView:
			return m.handleFilterKeys(msg)
		case compareView, trendView, briefView:
			return m.handleDetailKeys(msg)
		}
		return m.handleHomeKeys(msg)

	case tea.MouseMsg:
		if m.currentView == compareView || m.currentView == trendView || m.currentView == briefView {
			var cmd tea.Cmd
			m.viewport, cmd = m.viewport.Update(msg)
			return m, cmd
		}

	case citiesMsg:
		if msg.err != nil {
			if logger != nil {
				logger.Error("Failed to list cities", "error", msg.err)
			}
			return m, nil
		}
		m.cities = msg.cities
		return m, nil

	case summaryMsg:
		if msg.city != m.city || msg.year != m.year {
			return m, nil
		}
		m.summary = analytics.From(msg.summary, msg.err)
		if msg.err != nil && logger != nil {
			logger.Error("Failed to load city summary", "error", msg.err, "city", msg.city, "year", msg.year)
		}
		return m, nil

	case communitiesMsg:
		if msg.city != m.city {
			return m, nil
		}
		m.communities = analytics.From(msg.communities, msg.err)
		if msg.err != nil && logger != nil {
			logger.Error("Failed to load communities", "error", msg.err, "city", msg.city)
		}
		return m, nil

	case districtsMsg:
		if msg.city != m.city {
			return m, nil
		}
		m.districts = analytics.From(msg.districts, msg.err)
		if msg.err != nil {
			if logger != nil {
				logger.Error("Failed to load districts", "error", msg.err, "city", msg.city)
			}
			return m, nil
		}
		m.refreshDistrictList()
		return m, nil

	case comparisonMsg:
		m.comparison = analytics.From(msg.comparison, msg.err)
		if msg.err != nil && logger != nil {
			logger.Error("Failed to build comparison", "error", msg.err, "ids", m.selection.IDs())
		}
		m.refreshViewport()
		return m, nil

	case briefMsg:
		m.generating = false
		if msg.err != nil {
			m.err = fmt.Errorf("brief failed: %w", msg.err)
			return m, nil
		}
		m.brief = msg.brief
		m.err = nil
		m.refreshViewport()
		return m, nil

	case copyMsg:
		if msg.err != nil {
			m.err = msg.err
			m.status = ""
			return m, nil
		}
		m.err = nil
		m.status = "Copied " + export.FileName(msg.report) + " to clipboard"
		if logger != nil {
			logger.Info("Report copied to clipboard", "city", msg.report.City, "year", msg.report.Year)
		}
		return m, nil
	}

	if m.currentView == filterView {
		return m.updateFilterInputs(msg)
	}
	if m.currentView == districtsView {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) handleHomeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit

	case "up", "k":
		if m.communityCursor > 0 {
			m.communityCursor--
		}
		return m, nil

	case "down", "j":
		if n := len(m.communities.OrZero()); m.communityCursor < n-1 {
			m.communityCursor++
		}
		return m, nil

	case "enter":
		communities := m.communities.OrZero()
		if m.communityCursor < len(communities) {
			c := communities[m.communityCursor]
			detail := analytics.NewTrendDetail(c)
			m.trend = &detail
			m.trendValues = c.Populations()
			m.currentView = trendView
			m.viewport.GotoTop()
			m.refreshViewport()
		}
		return m, nil

	case "d":
		m.currentView = districtsView
		return m, nil

	case "c":
		if len(m.cities) < 2 {
			return m, nil
		}
		next := 0
		for i, c := range m.cities {
			if c == m.city {
				next = (i + 1) % len(m.cities)
				break
			}
		}
		m.city = m.cities[next]
		return m.reload()

	case "[":
		m.year--
		m.summary = analytics.Loading[analytics.CitySummary]()
		return m, loadSummary(m.src, m.city, m.year)

	case "]":
		m.year++
		m.summary = analytics.Loading[analytics.CitySummary]()
		return m, loadSummary(m.src, m.city, m.year)

	case "ctrl+y":
		return m, copyReport(m.city, m.year, m.summary, m.communities)
	}

	return m, nil
}

func (m model) handleDistrictsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch msg.String() {
	case "esc", "q":
		m.currentView = homeView
		return m, nil

	case " ":
		item, ok := m.list.SelectedItem().(districtItem)
		if !ok {
			return m, nil
		}
		if !m.selection.Toggle(item.district.ID) {
			m.status = fmt.Sprintf("At most %d districts can be compared", analytics.MaxComparison)
			return m, nil
		}
		m.refreshDistrictList()
		return m, nil

	case "enter":
		if !m.selection.CanCompare() {
			m.status = fmt.Sprintf("Select at least %d districts to compare", analytics.MinComparison)
			return m, nil
		}
		m.currentView = compareView
		m.comparison = analytics.Loading[analytics.Comparison]()
		m.viewport.GotoTop()
		m.refreshViewport()
		return m, loadComparison(m.src, m.selection.IDs())

	case "x":
		m.selection.Clear()
		m.refreshDistrictList()
		return m, nil

	case "f":
		m.currentView = filterView
		m.filterFocus = 0
		for i := range m.filterInputs {
			m.filterInputs[i].Blur()
		}
		m.filterInputs[0].Focus()
		return m, textinput.Blink

	case "b":
		item, ok := m.list.SelectedItem().(districtItem)
		if !ok {
			return m, nil
		}
		d := item.district
		m.briefDistrict = &d
		m.brief = nil
		m.err = nil
		m.currentView = briefView
		m.viewport.GotoTop()
		if m.briefs != nil {
			m.brief = m.briefs.Cached(d)
		}
		m.refreshViewport()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m model) handleFilterKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.err = nil
		m.currentView = districtsView
		return m, nil

	case tea.KeyTab, tea.KeyDown:
		return m.focusFilter((m.filterFocus + 1) % len(m.filterInputs))

	case tea.KeyShiftTab, tea.KeyUp:
		return m.focusFilter((m.filterFocus + len(m.filterInputs) - 1) % len(m.filterInputs))

	case tea.KeyEnter:
		values := make(map[string]string, len(analytics.FilterFields))
		for i, field := range analytics.FilterFields {
			values[field] = m.filterInputs[i].Value()
		}
		criteria, err := analytics.ParseFilterCriteria(func(field string) string { return values[field] })
		if err != nil {
			m.err = err
			return m, nil
		}
		m.err = nil
		m.criteria = criteria
		m.filtersActive = true
		m.currentView = districtsView
		m.refreshDistrictList()
		return m, nil

	case tea.KeyCtrlR:
		for i := range m.filterInputs {
			m.filterInputs[i].SetValue("")
		}
		m.criteria = analytics.FilterCriteria{}
		m.filtersActive = false
		m.err = nil
		m.refreshDistrictList()
		return m, nil
	}

	return m.updateFilterInputs(msg)
}

func (m model) focusFilter(i int) (tea.Model, tea.Cmd) {
	m.filterInputs[m.filterFocus].Blur()
	m.filterFocus = i
	m.filterInputs[i].Focus()
	return m, textinput.Blink
}

func (m model) updateFilterInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.filterInputs[m.filterFocus], cmd = m.filterInputs[m.filterFocus].Update(msg)
	return m, cmd
}

func (m model) handleDetailKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "esc", "q":
		m.err = nil
		if m.currentView == trendView {
			m.currentView = homeView
		} else {
			m.currentView = districtsView
		}
		m.viewport.GotoTop()
		return m, nil

	case "ctrl+a", "ctrl+r":
		if m.currentView != briefView || m.briefDistrict == nil || m.briefs == nil || m.generating {
			return m, nil
		}
		m.generating = true
		m.err = nil
		return m, generateBrief(m.briefs, m.src, *m.briefDistrict, m.year, msg.String() == "ctrl+r")

	case "up", "down", "pgup", "pgdown", "home", "end", "k", "j":
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	return m, nil
}

// visibleDistricts applies the criteria once the user has submitted them
func (m model) visibleDistricts() []analytics.DistrictRecord {
	all := m.districts.OrZero()
	if !m.filtersActive {
		return all
	}
	return analytics.FilterDistricts(all, m.criteria)
}

func (m *model) refreshDistrictList() {
	visible := m.visibleDistricts()
	items := make([]list.Item, len(visible))
	for i, d := range visible {
		items[i] = districtItem{district: d, selected: m.selection.Contains(d.ID)}
	}
	m.list.SetItems(items)
	m.list.Title = fmt.Sprintf("Districts of %s (%d/%d selected)", m.city, m.selection.Len(), analytics.MaxComparison)
}

func (m *model) refreshViewport() {
	if !m.viewportReady {
		return
	}
	switch m.currentView {
	case compareView:
		m.viewport.SetContent(m.compareContent())
	case trendView:
		m.viewport.SetContent(m.trendContent())
	case briefView:
		m.viewport.SetContent(m.briefContent())
	}
}

func (m model) View() string {
	switch m.currentView {
	case districtsView:
		return m.districtsRender()
	case filterView:
		return m.filterRender()
	case compareView, trendView, briefView:
		return m.detailRender()
	}
	return m.homeRender()
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	helpStyle  = lipgloss.NewStyle().Foreground(colorMuted).MarginTop(1)
	errorStyle = lipgloss.NewStyle().Foreground(colorDown).Bold(true)
	okStyle    = lipgloss.NewStyle().Foreground(colorUp).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
)

func (m model) statusLine() string {
	var b strings.Builder
	if m.status != "" {
		b.WriteString(okStyle.Render("✓ " + m.status))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(errorStyle.Render(fmt.Sprintf("❌ Error: %v", m.err)))
		b.WriteString("\n")
	}
	return b.String()
}

func (m model) homeRender() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(fmt.Sprintf("📊 Demographic Snapshot: %s %d", m.city, m.year)))
	b.WriteString("\n\n")
	b.WriteString(m.summaryCards())
	b.WriteString("\n\n")
	b.WriteString(m.communityTable())
	b.WriteString("\n")
	b.WriteString(m.statusLine())

	help := "↑/↓: Community | Enter: Trend | d: Districts | c: City | [/]: Year | Ctrl+Y: Copy CSV | q: Quit"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m model) summaryCards() string {
	switch {
	case m.summary.IsLoading():
		return mutedStyle.Render("Loading summary...")
	case m.summary.IsError():
		return errorStyle.Render(fmt.Sprintf("Could not load summary: %v", m.summary.Err))
	}

	s := m.summary.Data
	if s.Current == nil {
		return mutedStyle.Render("No figures for this year.")
	}

	var change *analytics.InfrastructureChange
	if s.Previous != nil {
		c := analytics.InfrastructureDeltas(s)
		change = &c
	}
	pick := func(f func(analytics.InfrastructureChange) float64) *float64 {
		if change == nil {
			return nil
		}
		v := f(*change)
		return &v
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		MetricCard("Population", analytics.FormatCount(s.Current.TotalPopulation), pick(func(c analytics.InfrastructureChange) float64 { return c.Population })),
		MetricCard("Mosques", analytics.FormatCount(s.Current.MosquesCount), pick(func(c analytics.InfrastructureChange) float64 { return c.Mosques })),
		MetricCard("Churches", analytics.FormatCount(s.Current.ChurchesCount), pick(func(c analytics.InfrastructureChange) float64 { return c.Churches })),
		MetricCard("Synagogues", analytics.FormatCount(s.Current.SynagoguesCount), pick(func(c analytics.InfrastructureChange) float64 { return c.Synagogues })),
	)
}

func (m model) communityTable() string {
	switch {
	case m.communities.IsLoading():
		return mutedStyle.Render("Loading communities...")
	case m.communities.IsError():
		return errorStyle.Render(fmt.Sprintf("Could not load communities: %v", m.communities.Err))
	}

	communities := m.communities.Data
	if len(communities) == 0 {
		return mutedStyle.Render("No community data.")
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Foreign communities"))
	b.WriteString("\n")
	b.WriteString(DistributionBar(communities, 60))
	b.WriteString("\n\n")

	nameStyle := lipgloss.NewStyle().Width(18)
	cursorStyle := lipgloss.NewStyle().Foreground(colorAccent).Bold(true)
	for i, c := range communities {
		detail := analytics.NewTrendDetail(c)
		cursor := "  "
		if i == m.communityCursor {
			cursor = cursorStyle.Render("▶ ")
		}
		spark := lipgloss.NewStyle().Foreground(TrendColor(detail.Series.Direction())).Render(Sparkline(c.Populations()))
		fmt.Fprintf(&b, "%s%s %6s  %-8s %s\n",
			cursor,
			nameStyle.Render(c.Name),
			analytics.FormatPercent(c.LatestPercentage),
			spark,
			mutedStyle.Render(detail.Label),
		)
	}
	return b.String()
}

func (m model) districtsRender() string {
	var b strings.Builder

	switch {
	case m.districts.IsLoading():
		b.WriteString(mutedStyle.Render("Loading districts..."))
		b.WriteString("\n")
	case m.districts.IsError():
		b.WriteString(errorStyle.Render(fmt.Sprintf("Could not load districts: %v", m.districts.Err)))
		b.WriteString("\n")
	default:
		b.WriteString(m.list.View())
		b.WriteString("\n")
	}

	if m.filtersActive && !m.criteria.IsEmpty() {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("Filters active: showing %d of %d districts", len(m.visibleDistricts()), len(m.districts.OrZero()))))
		b.WriteString("\n")
	}
	b.WriteString(m.statusLine())

	help := "Space: Select | Enter: Compare | x: Clear selection | f: Filters | b: Brief | Esc: Back"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m model) filterRender() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("🔎 Filter districts"))
	b.WriteString("\n\n")

	inputStyle := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1)

	var fields strings.Builder
	for i := range m.filterInputs {
		fields.WriteString(m.filterInputs[i].View())
		fields.WriteString("\n")
	}
	b.WriteString(inputStyle.Render(strings.TrimSuffix(fields.String(), "\n")))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("Empty fields impose no bound. Unknown counts are treated as 0."))
	b.WriteString("\n")
	b.WriteString(m.statusLine())

	help := "Tab/↑/↓: Field | Enter: Apply | Ctrl+R: Clear all | Esc: Cancel"
	b.WriteString(helpStyle.Render(help))

	return b.String()
}

func (m model) detailRender() string {
	if !m.viewportReady {
		return "Loading..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteString("\n")

	if m.viewport.TotalLineCount() > m.viewport.Height {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("─── %d%% ───", int(m.viewport.ScrollPercent()*100))))
		b.WriteString("\n")
	}

	if m.generating {
		b.WriteString(lipgloss.NewStyle().Foreground(colorFlat).Bold(true).Render("⏳ Writing brief with Claude..."))
		b.WriteString("\n")
	}
	b.WriteString(m.statusLine())

	help := "↑/↓/PgUp/PgDn: Scroll | Esc: Back | Ctrl+C: Quit"
	if m.currentView == briefView && m.briefs != nil {
		help = "↑/↓/PgUp/PgDn: Scroll | Ctrl+A: Brief | Ctrl+R: Regenerate | Esc: Back | Ctrl+C: Quit"
	}
	b.WriteString(mutedStyle.Render(help))

	return b.String()
}

func (m model) compareContent() string {
	switch {
	case m.comparison.IsLoading():
		return "Loading comparison..."
	case m.comparison.IsError():
		if errors.Is(m.comparison.Err, analytics.ErrNotFound) {
			return errorStyle.Render("One of the selected districts no longer exists.")
		}
		return errorStyle.Render(fmt.Sprintf("Could not load comparison: %v", m.comparison.Err))
	}

	cmp := m.comparison.Data
	var b strings.Builder
	b.WriteString(titleStyle.Render("⚖️  District comparison"))
	b.WriteString("\n\n")

	cards := make([]string, len(cmp.Cards))
	for i, card := range cmp.Cards {
		d := card.District
		cards[i] = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(seriesColors[i%len(seriesColors)]).
			Padding(0, 1).
			Width(30).
			Render(fmt.Sprintf("%s\nPopulation: %s\nArea: %s\nDensity: %s/km²\nForeign: %s\nLargest: %s",
				lipgloss.NewStyle().Bold(true).Render(d.DisplayName()),
				analytics.FormatCount(d.Population),
				analytics.FormatArea(d.Area),
				analytics.FormatCount(card.Density),
				analytics.FormatPercent(d.ForeignerPercentage),
				d.DominantCommunity,
			))
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cards...))
	b.WriteString("\n\n")

	formats := map[string]func(float64) string{
		"Population": func(v float64) string { return analytics.FormatCount(int(v)) },
		"Area (km²)": analytics.FormatArea,
		"Foreign %":  analytics.FormatPercent,
	}
	for _, g := range cmp.Groups {
		format, ok := formats[g.Metric]
		if !ok {
			format = func(v float64) string { return fmt.Sprintf("%.1f", v) }
		}
		b.WriteString(ComparisonBars(g, 40, format))
		b.WriteString("\n")
	}

	return b.String()
}

func (m model) trendContent() string {
	if m.trend == nil {
		return "No community selected"
	}
	t := m.trend
	s := t.Series

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("📈 %s community in %s", t.Community, m.city)))
	b.WriteString("\n\n")

	if s.Empty {
		b.WriteString(mutedStyle.Render("No progression data."))
		return b.String()
	}

	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33")).Width(16)
	b.WriteString(labelStyle.Render("Current:") + " " + analytics.FormatCount(t.Current()) + "\n")
	b.WriteString(labelStyle.Render("Peak:") + " " + analytics.FormatCount(t.Peak()) + "\n")
	b.WriteString(labelStyle.Render("Lowest:") + " " + analytics.FormatCount(s.Min) + "\n")
	if s.HasProgression() {
		b.WriteString(labelStyle.Render("Change:") + " " + DeltaBadge(s.PercentChange) + " " + mutedStyle.Render(t.Label) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(lipgloss.NewStyle().Foreground(TrendColor(s.Direction())).Render(Sparkline(m.trendValues)))
	b.WriteString("\n\n")

	if len(s.Steps) > 0 {
		b.WriteString(titleStyle.Render("Year by year"))
		b.WriteString("\n")
		for _, step := range s.Steps {
			fmt.Fprintf(&b, "  %d → %d  %s\n", step.FromYear, step.ToYear, DeltaBadge(step.Percent))
		}
	}

	return b.String()
}

func (m model) briefContent() string {
	if m.briefDistrict == nil {
		return "No district selected"
	}
	d := m.briefDistrict

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("📝 %s, %s", d.DisplayName(), d.City)))
	b.WriteString("\n\n")
	b.WriteString(ShareBar("Foreign residents", d.ForeignerPercentage, 30))
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render(fmt.Sprintf("Density %s/km² | Mosques %s | Churches %s | Synagogues %s",
		analytics.FormatCount(d.Density()), countOrUnknown(d.Mosques), countOrUnknown(d.Churches), countOrUnknown(d.Synagogues))))
	b.WriteString("\n\n")

	switch {
	case m.briefs == nil:
		b.WriteString(mutedStyle.Render("Set ANTHROPIC_API_KEY to generate district briefs."))
	case m.brief == nil:
		b.WriteString(mutedStyle.Render("No brief yet. Press Ctrl+A to write one."))
	default:
		rendered, err := renderMarkdown(m.brief.MarkdownContent, m.width)
		if err != nil {
			rendered = m.brief.MarkdownContent
		}
		b.WriteString(rendered)
		source := "generated"
		if m.brief.Cached {
			source = "cached"
		}
		b.WriteString(mutedStyle.Render(fmt.Sprintf("%s %s", source, m.brief.GeneratedAt.Format("2006-01-02 15:04"))))
	}

	return b.String()
}
