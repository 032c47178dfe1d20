package repositories

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/desertthunder/tunesmith/internal/models"
	"github.com/desertthunder/tunesmith/internal/shared"
)

// FavoritesKey is the storage key holding the favorites JSON array.
const FavoritesKey = "favorites.v1"

// TimestampLayout formats the display timestamp stored on each favorite.
const TimestampLayout = "2006-01-02 15:04:05"

// EmptyFavoritesMessage is rendered when there are no favorites.
const EmptyFavoritesMessage = "No favorites yet. Save a track to see it here."

// FavoritesRepository persists the user's favorites as one JSON array, newest first.
//
// Every mutation reads the whole array and writes it back. Duplicates are allowed.
type FavoritesRepository struct {
	store Storage
	now   func() time.Time
}

// NewFavoritesRepository creates a FavoritesRepository over store.
func NewFavoritesRepository(store Storage) *FavoritesRepository {
	return &FavoritesRepository{store: store, now: time.Now}
}

// List returns all favorites, newest first. A missing key is an empty list.
func (r *FavoritesRepository) List() ([]models.FavoriteEntry, error) {
	raw, ok, err := r.store.Get(FavoritesKey)
	if err != nil {
		return nil, err
	}
	if !ok || raw == "" {
		return []models.FavoriteEntry{}, nil
	}

	var entries []models.FavoriteEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", shared.ErrCorruptData, FavoritesKey, err)
	}
	if entries == nil {
		entries = []models.FavoriteEntry{}
	}
	return entries, nil
}

// Add prepends a favorite built from track and returns it.
func (r *FavoritesRepository) Add(track models.Track) (models.FavoriteEntry, error) {
	if err := track.Validate(); err != nil {
		return models.FavoriteEntry{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	entries, err := r.List()
	if err != nil {
		return models.FavoriteEntry{}, err
	}

	entry := models.FavoriteEntry{
		Prompt:      track.Prompt,
		Timestamp:   r.now().Format(TimestampLayout),
		AudioURL:    track.AudioURL,
		DownloadURL: track.DownloadURL,
		Filename:    track.Filename,
	}

	entries = append([]models.FavoriteEntry{entry}, entries...)
	if err := r.save(entries); err != nil {
		return models.FavoriteEntry{}, err
	}
	return entry, nil
}

// Remove deletes the favorite at index. Out of range indexes remove nothing.
func (r *FavoritesRepository) Remove(index int) error {
	entries, err := r.List()
	if err != nil {
		return err
	}

	if index >= 0 && index < len(entries) {
		entries = append(entries[:index], entries[index+1:]...)
	}
	return r.save(entries)
}

// Clear removes every favorite.
func (r *FavoritesRepository) Clear() error {
	return r.store.Delete(FavoritesKey)
}

func (r *FavoritesRepository) save(entries []models.FavoriteEntry) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode favorites: %w", err)
	}
	return r.store.Set(FavoritesKey, string(data))
}
