package repositories

import "fmt"

// ThemeKey is the storage key holding the selected theme name.
const ThemeKey = "theme.v1"

const (
	ThemeDark  = "dark"
	ThemeLight = "light"
)

// ThemeRepository persists the light/dark theme preference.
type ThemeRepository struct {
	store Storage
}

// NewThemeRepository creates a ThemeRepository over store.
func NewThemeRepository(store Storage) *ThemeRepository {
	return &ThemeRepository{store: store}
}

// Get returns the persisted theme, or [ThemeDark] when unset or unrecognized.
func (r *ThemeRepository) Get() (string, error) {
	v, ok, err := r.store.Get(ThemeKey)
	if err != nil {
		return ThemeDark, err
	}
	if !ok || (v != ThemeLight && v != ThemeDark) {
		return ThemeDark, nil
	}
	return v, nil
}

// Set persists theme, which must be [ThemeLight] or [ThemeDark].
func (r *ThemeRepository) Set(theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return fmt.Errorf("unknown theme %q", theme)
	}
	return r.store.Set(ThemeKey, theme)
}

// Toggle switches between light and dark, persists the result and returns it.
func (r *ThemeRepository) Toggle() (string, error) {
	current, err := r.Get()
	if err != nil {
		return current, err
	}

	next := ThemeLight
	if current == ThemeLight {
		next = ThemeDark
	}
	if err := r.Set(next); err != nil {
		return current, err
	}
	return next, nil
}
