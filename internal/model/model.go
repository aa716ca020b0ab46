package model

import (
	"html/template"
)

// VisualKind tells which of the two visual cases a feature card uses.
type VisualKind int

const (
	// VisualIcon is an inline vector icon, inlined into the page markup.
	VisualIcon VisualKind = iota + 1
	// VisualImage is a raster image shown with a zoom affordance.
	VisualImage
)

func (k VisualKind) String() string {
	switch k {
	case VisualIcon:
		return "icon"
	case VisualImage:
		return "image"
	default:
		return "unknown"
	}
}

// Visual is the picture of a feature card. It is either an icon or an
// image; use IconVisual or ImageVisual to build one.
type Visual struct {
	Kind VisualKind
	// Ref is the icon path inside the embedded assets for VisualIcon, or
	// the site-relative image path for VisualImage.
	Ref string
}

// IconVisual references an SVG icon that is inlined at render time.
func IconVisual(ref string) Visual {
	return Visual{Kind: VisualIcon, Ref: ref}
}

// ImageVisual references a raster image under the site's static files.
func ImageVisual(src string) Visual {
	return Visual{Kind: VisualImage, Ref: src}
}

// Message is a piece of translatable copy. Default is the source-language
// text used when the active locale has no entry for ID.
type Message struct {
	ID      string
	Default string
}

// FeatureRecord is one card of the homepage feature grid.
type FeatureRecord struct {
	Title       string
	Visual      Visual
	Description Message
}

// SiteMetadata holds the global descriptive fields of the site.
type SiteMetadata struct {
	Title     string
	Tagline   string
	URL       string
	BaseURL   string
	GitHubURL string
}

// ContentItem represents a single rendered Markdown document.
type ContentItem struct {
	ID              string
	Title           string
	Description     string
	SidebarLabel    string
	SidebarPosition float64
	Slug            string
	SourcePath      string
	Locale          string
	// Permalink is relative to the locale base path, e.g. "docs/intro/".
	Permalink   string
	ContentHTML template.HTML
	Frontmatter map[string]interface{}
	// Links holds the locale-relative internal links found in the body.
	Links []string
	// Assets holds the static files the body links to or embeds, relative
	// to the site base.
	Assets []string
}

// Label is the text shown for the item in sidebars.
func (c *ContentItem) Label() string {
	if c.SidebarLabel != "" {
		return c.SidebarLabel
	}
	return c.Title
}
