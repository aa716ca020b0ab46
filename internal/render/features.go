package render

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/tkmfujise/redscribe-docs/internal/assets"
	"github.com/tkmfujise/redscribe-docs/internal/i18n"
	"github.com/tkmfujise/redscribe-docs/internal/model"
)

// featureImageClass is shared by inline icons and raster thumbnails.
const featureImageClass = "featureImage"

// FeatureCard is the resolved view of one FeatureRecord. Exactly one of
// Icon and Image is set.
type FeatureCard struct {
	// Index is the position in the grid; it keys the card's zoom toggle.
	Index       int
	Title       string
	Icon        template.HTML
	Image       string
	Description string
}

// Cards resolves records into cards, keeping their order.
func (r *Renderer) Cards(features []model.FeatureRecord, tr *i18n.Translator) ([]FeatureCard, error) {
	cards := make([]FeatureCard, 0, len(features))
	for i, f := range features {
		card := FeatureCard{
			Index:       i,
			Title:       f.Title,
			Description: tr.T(f.Description),
		}
		switch f.Visual.Kind {
		case model.VisualIcon:
			icon, err := assets.Icon(r.assets, f.Visual.Ref, featureImageClass)
			if err != nil {
				return nil, fmt.Errorf("feature %q: %w", f.Title, err)
			}
			card.Icon = icon
		case model.VisualImage:
			if !isRemote(f.Visual.Ref) && !assets.IsFile(r.assets, f.Visual.Ref) {
				return nil, fmt.Errorf("feature %q: image %s: %w", f.Title, f.Visual.Ref, fs.ErrNotExist)
			}
			card.Image = r.assetURL(f.Visual.Ref)
		default:
			return nil, fmt.Errorf("feature %q: unknown visual kind %v", f.Title, f.Visual.Kind)
		}
		cards = append(cards, card)
	}
	return cards, nil
}

// RenderFeatures writes the feature grid: one card per record, in order.
func (r *Renderer) RenderFeatures(w io.Writer, features []model.FeatureRecord, tr *i18n.Translator) error {
	cards, err := r.Cards(features, tr)
	if err != nil {
		return err
	}
	return r.Execute(w, "features", cards)
}

func isRemote(ref string) bool {
	return strings.Contains(ref, "://")
}

func (r *Renderer) assetURL(ref string) string {
	if isRemote(ref) {
		return ref
	}
	return r.assetBase + strings.TrimPrefix(ref, "/")
}
