package render

import (
	"io"

	"github.com/tkmfujise/redscribe-docs/internal/content"
	"github.com/tkmfujise/redscribe-docs/internal/i18n"
	"github.com/tkmfujise/redscribe-docs/internal/model"
)

// Hero is the banner on top of the homepage.
type Hero struct {
	Title         string
	Subtitle      string
	GitHubLabel   string
	GitHubHref    string
	TutorialLabel string
	TutorialHref  string
}

// HomeView is the data of home.html.
type HomeView struct {
	Page     model.PageData
	Hero     Hero
	Features []FeatureCard
}

// NewHero builds the banner of page. The metadata is used as is.
func NewHero(page model.PageData, tr *i18n.Translator) Hero {
	return Hero{
		Title:         page.Site.Title + ": " + page.Site.Tagline,
		Subtitle:      tr.T(content.Subtitle),
		GitHubLabel:   content.GitHubLabel,
		GitHubHref:    page.Site.GitHubURL,
		TutorialLabel: tr.T(content.TutorialLabel),
		TutorialHref:  page.LocaleBase + content.TutorialPath,
	}
}

// ComposeHomepage writes the homepage: hero banner above the feature grid.
func (r *Renderer) ComposeHomepage(w io.Writer, page model.PageData, features []model.FeatureRecord, tr *i18n.Translator) error {
	cards, err := r.Cards(features, tr)
	if err != nil {
		return err
	}
	return r.Execute(w, HomeLayout, HomeView{
		Page:     page,
		Hero:     NewHero(page, tr),
		Features: cards,
	})
}
