package styles

// DefaultTheme is the baseline dark palette.
var DefaultTheme = Theme{
	Name:        "default",
	BorderStyle: "rounded",
	Base: BaseColors{
		Background: "234",
		Foreground: "252",
		Muted:      "245",
		Accent:     "75",
		Border:     "240",
	},
	Status: StatusColors{
		Loading: "220",
		Error:   "203",
		Ready:   "41",
	},
	Chrome: ChromeColors{
		Header:     "111",
		Footer:     "110",
		Title:      "75",
		SortMarker: "214",
	},
	Table: TableColors{
		Heading: "147",
		Link:    "81",
		Owner:   "245",
	},
}
