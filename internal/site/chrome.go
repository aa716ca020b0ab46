package site

import (
	"io/fs"
	"strconv"
	"strings"

	"github.com/tkmfujise/redscribe-docs/internal/assets"
	"github.com/tkmfujise/redscribe-docs/internal/config"
	"github.com/tkmfujise/redscribe-docs/internal/i18n"
	"github.com/tkmfujise/redscribe-docs/internal/model"
)

// chrome holds the per-locale parts shared by every page: navbar, footer
// and head metadata.
type chrome struct {
	cfg     config.Config
	locale  i18n.Locale
	locales []i18n.Locale
	static  fs.FS
	tr      *i18n.Translator
	year    int
	// docsEntry is the locale-relative path the docSidebar item opens.
	docsEntry string
}

// internalLinks lists the targets of navbar and footer links for
// broken-link checking: page links relative to the locale base and
// static files relative to the site base.
func (c *chrome) internalLinks() (pages, files []string) {
	add := func(to string) {
		target := strings.TrimPrefix(to, "/")
		if c.isStatic(target) {
			files = append(files, target)
		} else {
			pages = append(pages, target)
		}
	}
	for _, item := range c.cfg.Theme.Navbar.Items {
		if item.Type == "" && item.To != "" {
			add(item.To)
		}
	}
	for _, group := range c.cfg.Theme.Footer.Links {
		for _, item := range group.Items {
			if item.To != "" {
				add(item.To)
			}
		}
	}
	return pages, files
}

func (c *chrome) isStatic(target string) bool {
	return c.static != nil && assets.IsFile(c.static, target)
}

func (c *chrome) href(to string) string {
	target := strings.TrimPrefix(to, "/")
	if c.isStatic(target) {
		return c.cfg.BaseURL + target
	}
	return c.locale.Base + target
}

func samePath(a, b string) bool {
	return strings.Trim(a, "/") == strings.Trim(b, "/")
}

func (c *chrome) navbar(pagePath string) (left, right []model.NavItem) {
	for _, item := range c.cfg.Theme.Navbar.Items {
		var nav model.NavItem
		switch item.Type {
		case "docSidebar":
			nav.Label = c.tr.Lookup("navbar.item.label."+item.Label, item.Label)
			nav.Href = c.href(c.docsEntry)
			nav.Active = strings.HasPrefix(pagePath, "docs/")
		case "localeDropdown":
			nav.Dropdown = true
			nav.Label = c.locale.Label
			for _, loc := range c.locales {
				nav.Children = append(nav.Children, model.Link{
					Label:  loc.Label,
					Href:   loc.Base + pagePath,
					Active: loc.Code == c.locale.Code,
				})
			}
		default:
			nav.Label = c.tr.Lookup("navbar.item.label."+item.Label, item.Label)
			if item.Href != "" {
				nav.Href = item.Href
				nav.External = true
			} else {
				nav.Href = c.href(item.To)
				nav.Active = samePath(item.To, pagePath)
			}
		}

		nav.Position = item.Position
		if item.Position == "right" {
			right = append(right, nav)
		} else {
			left = append(left, nav)
		}
	}
	return left, right
}

func (c *chrome) footer() []model.FooterGroup {
	groups := make([]model.FooterGroup, 0, len(c.cfg.Theme.Footer.Links))
	for _, g := range c.cfg.Theme.Footer.Links {
		group := model.FooterGroup{Title: c.tr.Lookup("footer.link.title."+g.Title, g.Title)}
		for _, item := range g.Items {
			link := model.Link{Label: c.tr.Lookup("footer.link.item.label."+item.Label, item.Label)}
			if item.Href != "" {
				link.Href = item.Href
				link.External = true
			} else {
				link.Href = c.href(item.To)
			}
			group.Items = append(group.Items, link)
		}
		groups = append(groups, group)
	}
	return groups
}

func (c *chrome) metadata(name string) string {
	for _, m := range c.cfg.Theme.Metadata {
		if m.Name == name {
			return c.tr.Lookup("metadata."+name, m.Content)
		}
	}
	return ""
}

// page returns the layout data of the page at pagePath, relative to the
// locale base.
func (c *chrome) page(pagePath, title, description string) model.PageData {
	cfg := c.cfg
	left, right := c.navbar(pagePath)

	p := model.PageData{
		Site:        cfg.Metadata(),
		Locale:      c.locale.Code,
		LocaleBase:  c.locale.Base,
		Title:       title,
		Description: description,

		Path:      pagePath,
		Canonical: cfg.URL + c.locale.Base + pagePath,

		Keywords:       c.metadata("keywords"),
		SiteDesc:       c.metadata("description"),
		NavTitle:       cfg.Theme.Navbar.Title,
		NavLeft:        left,
		NavRight:       right,
		FooterStyle:    cfg.Theme.Footer.Style,
		Footer:         c.footer(),
		Copyright:      strings.ReplaceAll(c.tr.Lookup("footer.copyright", cfg.Theme.Footer.Copyright), "{year}", strconv.Itoa(c.year)),
		PrismLanguages: cfg.Theme.Prism.AdditionalLanguages,
		PrismTheme:     cfg.Theme.Prism.Theme,
		PrismDarkTheme: cfg.Theme.Prism.DarkTheme,
		Mermaid:        cfg.Markdown.Mermaid,
	}
	if cfg.Theme.Image != "" {
		p.SocialImage = cfg.URL + cfg.BaseURL + strings.TrimPrefix(cfg.Theme.Image, "/")
	}
	if cfg.Favicon != "" {
		p.Favicon = cfg.BaseURL + strings.TrimPrefix(cfg.Favicon, "/")
	}
	if cfg.Theme.Navbar.Logo.Src != "" {
		p.LogoSrc = cfg.BaseURL + strings.TrimPrefix(cfg.Theme.Navbar.Logo.Src, "/")
		p.LogoAlt = cfg.Theme.Navbar.Logo.Alt
	}
	for _, loc := range c.locales {
		p.Alternates = append(p.Alternates, model.Alternate{
			Locale: loc.Code,
			Href:   cfg.URL + loc.Base + pagePath,
		})
	}
	return p
}
