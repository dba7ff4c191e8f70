package styles

// HighContrastTheme favors legibility on low-quality terminals.
var HighContrastTheme = Theme{
	Name:        "high-contrast",
	BorderStyle: "sharp",
	Base: BaseColors{
		Background: "16",
		Foreground: "231",
		Muted:      "250",
		Accent:     "51",
		Border:     "231",
	},
	Status: StatusColors{
		Loading: "226",
		Error:   "196",
		Ready:   "46",
	},
	Chrome: ChromeColors{
		Header:     "117",
		Footer:     "159",
		Title:      "51",
		SortMarker: "229",
	},
	Table: TableColors{
		Heading: "231",
		Link:    "87",
		Owner:   "250",
	},
}
