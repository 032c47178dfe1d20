// Package repositories implements client-local persistence: favorites, the theme preference and the session history.
//
// Persistent values go through the [Storage] port, a small key/value interface with two implementations:
//   - [KVStore] : SQLite table created by the embedded migrations in package shared
//   - [MemoryStore] : map-backed store for tests and for running without a database
//
// Keys carry a version suffix ([FavoritesKey], [ThemeKey]). A change to a stored value's shape gets a new key
// and a SQL migration that rewrites the old one.
//
// Key Implementations:
//   - [FavoritesRepository] : JSON array of [models.FavoriteEntry], newest first, removable by position
//   - [ThemeRepository] : "light" or "dark"
//   - [History] : in-memory, newest first, never persisted
package repositories
