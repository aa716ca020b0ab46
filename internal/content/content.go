// Package content holds the homepage copy of the ReDScribe site.
package content

import "github.com/tkmfujise/redscribe-docs/internal/model"

// Hero copy.
var (
	Subtitle = model.Message{
		ID:      "homepage.subtitle",
		Default: "Let's re-describe your code as your own friendly domain-specific language.",
	}
	TutorialLabel = model.Message{ID: "homepage.tutorial", Default: "Tutorial"}
	GitHubLabel   = "GitHub"
	// TutorialPath is relative to the locale base path.
	TutorialPath = "docs/intro"
	// HomeDescription is the meta description of the homepage.
	HomeDescription = "Ruby-embedded DSL for Godot"
)

// Features returns the homepage feature cards in display order.
func Features() []model.FeatureRecord {
	return []model.FeatureRecord{
		{
			Title:  "Execution",
			Visual: model.IconVisual("img/logo.svg"),
			Description: model.Message{
				ID:      "feature.execution",
				Default: "You can execute mruby code (a lightweight Ruby) in Godot and emit signals from mruby to Godot.",
			},
		},
		{
			Title:  "Editing",
			Visual: model.ImageVisual("img/Editor_screenshot.png"),
			Description: model.Message{
				ID:      "feature.editing",
				Default: "You can write and edit Ruby files in the Godot Editor.",
			},
		},
		{
			Title:  "REPL",
			Visual: model.ImageVisual("img/REPL_screenshot.png"),
			Description: model.Message{
				ID:      "feature.repl",
				Default: "You can try out Ruby interactively in Godot.",
			},
		},
	}
}
