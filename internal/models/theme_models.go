package models

// Theme vocabulary shared by every bank's rule table.
const (
	ThemeAccountAccess   = "Account Access Issues"
	ThemeTransactions    = "Transaction Performance"
	ThemeUserInterface   = "User Interface & Experience"
	ThemeCustomerSupport = "Customer Support"
	ThemeFeatureRequests = "Feature Requests"
	ThemeOther           = "Other"
)

// ThemeKeywords is one theme bucket of a ThemeMap.
type ThemeKeywords struct {
	Theme    string   `json:"theme"`
	Keywords []string `json:"keywords"`
}

// ThemeMap holds the keyword buckets of one bank for one run. Order matters:
// earlier themes win when a review matches several.
type ThemeMap struct {
	Bank   string          `json:"bank"`
	Themes []ThemeKeywords `json:"themes"`
}

// Keywords returns the keywords of theme, or nil when the theme is absent.
func (m ThemeMap) Keywords(theme string) []string {
	for _, t := range m.Themes {
		if t.Theme == theme {
			return t.Keywords
		}
	}
	return nil
}

// Names lists the themes in map order.
func (m ThemeMap) Names() []string {
	names := make([]string, 0, len(m.Themes))
	for _, t := range m.Themes {
		names = append(names, t.Theme)
	}
	return names
}
