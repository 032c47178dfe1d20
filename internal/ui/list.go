package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
)

var _ list.Item = favoriteItem{}

// favoriteItem wraps [models.FavoriteEntry] to implement [list.Item].
type favoriteItem struct {
	index    int
	favorite models.FavoriteEntry
}

func (i favoriteItem) FilterValue() string { return i.Title() }

// Title is the saved prompt with terminal control sequences removed.
func (i favoriteItem) Title() string { return shared.EscapeText(i.favorite.Prompt) }
func (i favoriteItem) Description() string {
	desc := i.favorite.Timestamp
	if i.favorite.Filename != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.favorite.Filename)
	}
	return desc
}

func favoriteItems(favorites []models.FavoriteEntry) []list.Item {
	items := make([]list.Item, len(favorites))
	for i, f := range favorites {
		items[i] = favoriteItem{index: i, favorite: f}
	}
	return items
}
