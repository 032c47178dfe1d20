package models

import (
	"fmt"
	"time"
)

// Placeholder is shown for classification fields the backend did not return.
const Placeholder = "—"

// Classification describes the backend's reading of a prompt.
type Classification struct {
	Genre string `json:"genre"`
	Mood  string `json:"mood"`
	Tempo string `json:"tempo"`
}

// Track is a generated or harmonized audio result plus its metadata.
type Track struct {
	Prompt         string          `json:"prompt"`
	AudioURL       string          `json:"audio_url"`
	DownloadURL    string          `json:"download_url"`
	Filename       string          `json:"filename"`
	Classification *Classification `json:"classification,omitempty"`
}

// Validate reports whether the track can be played.
func (t Track) Validate() error {
	if t.AudioURL == "" {
		return fmt.Errorf("track has no audio URL")
	}
	return nil
}

// Genre returns the classified genre or [Placeholder].
func (t Track) Genre() string {
	if t.Classification == nil || t.Classification.Genre == "" {
		return Placeholder
	}
	return t.Classification.Genre
}

// Mood returns the classified mood or [Placeholder].
func (t Track) Mood() string {
	if t.Classification == nil || t.Classification.Mood == "" {
		return Placeholder
	}
	return t.Classification.Mood
}

// Tempo returns the classified tempo or [Placeholder].
func (t Track) Tempo() string {
	if t.Classification == nil || t.Classification.Tempo == "" {
		return Placeholder
	}
	return t.Classification.Tempo
}

// HistoryEntry records one submission and its outcome for the current session.
type HistoryEntry struct {
	ID        string    `json:"id"`
	Prompt    string    `json:"prompt"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// FavoriteEntry is a user-saved track.
type FavoriteEntry struct {
	Prompt      string `json:"prompt"`
	Timestamp   string `json:"timestamp"`
	AudioURL    string `json:"audio_url"`
	DownloadURL string `json:"download_url,omitempty"`
	Filename    string `json:"filename,omitempty"`
}

// Track rebuilds a playable [Track] from the favorite. Classification is not persisted.
func (f FavoriteEntry) Track() Track {
	return Track{
		Prompt:      f.Prompt,
		AudioURL:    f.AudioURL,
		DownloadURL: f.DownloadURL,
		Filename:    f.Filename,
	}
}
