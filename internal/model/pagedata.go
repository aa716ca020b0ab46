package model

import "html/template"

// Link is an anchor rendered by the navbar, footer or sidebar.
type Link struct {
	Label    string
	Href     string
	External bool
	Active   bool
}

// NavItem is one resolved navbar entry. Locale dropdowns carry their
// choices in Children.
type NavItem struct {
	Link
	Position string
	Dropdown bool
	Children []Link
}

// FooterGroup is a titled column of footer links.
type FooterGroup struct {
	Title string
	Items []Link
}

// Alternate is the same page in another locale.
type Alternate struct {
	Locale string
	Href   string
}

// PageData is the data handed to a page layout.
type PageData struct {
	Site        SiteMetadata
	Locale      string
	LocaleBase  string
	Title       string
	Description string

	// Path is the page path relative to the locale base, "" for the homepage.
	Path       string
	Canonical  string
	Alternates []Alternate

	Keywords       string
	SiteDesc       string
	SocialImage    string
	Favicon        string
	LogoSrc        string
	LogoAlt        string
	NavTitle       string
	NavLeft        []NavItem
	NavRight       []NavItem
	FooterStyle    string
	Footer         []FooterGroup
	Copyright      string
	PrismLanguages []string
	PrismTheme     string
	PrismDarkTheme string
	Mermaid        bool

	Item    *ContentItem
	Sidebar []Link
	Content template.HTML
}
