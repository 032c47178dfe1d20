// Package models defines the domain types shared by the player, the request orchestrator and the stores.
//
// A [Track] is produced by a successful backend response and is replaced, never mutated, by the next result.
// [HistoryEntry] values live only for the session; [FavoriteEntry] values are persisted as a JSON array.
package models
