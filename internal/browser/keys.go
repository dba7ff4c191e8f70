package browser

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	quit          key.Binding
	search        key.Binding
	nextMember    key.Binding
	prevMember    key.Binding
	nextWorksheet key.Binding
	prevWorksheet key.Binding
	nextSort      key.Binding
	prevSort      key.Binding
	sortColumn    key.Binding
	nextPage      key.Binding
	prevPage      key.Binding
	firstPage     key.Binding
	lastPage      key.Binding
	reload        key.Binding
	signIn        key.Binding
	clearFilters  key.Binding
	toggleHelp    key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		search: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "search"),
		),
		nextMember: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m/M", "member"),
		),
		prevMember: key.NewBinding(
			key.WithKeys("M"),
		),
		nextWorksheet: key.NewBinding(
			key.WithKeys("w"),
			key.WithHelp("w/W", "worksheet"),
		),
		prevWorksheet: key.NewBinding(
			key.WithKeys("W"),
		),
		nextSort: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s/S", "sort order"),
		),
		prevSort: key.NewBinding(
			key.WithKeys("S"),
		),
		sortColumn: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5", "6"),
			key.WithHelp("1-6", "sort by column"),
		),
		nextPage: key.NewBinding(
			key.WithKeys("n", "right", "pgdown"),
			key.WithHelp("n/→", "next page"),
		),
		prevPage: key.NewBinding(
			key.WithKeys("p", "left", "pgup"),
			key.WithHelp("p/←", "prev page"),
		),
		firstPage: key.NewBinding(
			key.WithKeys("g", "home"),
			key.WithHelp("g", "first page"),
		),
		lastPage: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G", "last page"),
		),
		reload: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "reload"),
		),
		signIn: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "sign in again"),
		),
		clearFilters: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "clear filters"),
		),
		toggleHelp: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.search, k.nextMember, k.nextWorksheet, k.nextSort, k.nextPage, k.prevPage, k.toggleHelp, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.search, k.nextMember, k.nextWorksheet, k.clearFilters},
		{k.sortColumn, k.nextSort},
		{k.nextPage, k.prevPage, k.firstPage, k.lastPage},
		{k.reload, k.signIn, k.toggleHelp, k.quit},
	}
}
