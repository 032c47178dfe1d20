package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunesmith/internal/repositories"
	"github.com/desertthunder/tunesmith/internal/shared"
	"github.com/urfave/cli/v3"
)

// ThemeShow prints the persisted theme.
func (r *Runner) ThemeShow(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.theme()
	if err != nil {
		return err
	}
	theme, err := repo.Get()
	if err != nil {
		return err
	}
	return r.writePlain("%s\n", theme)
}

// ThemeToggle switches between light and dark.
func (r *Runner) ThemeToggle(ctx context.Context, cmd *cli.Command) error {
	repo, err := r.theme()
	if err != nil {
		return err
	}
	theme, err := repo.Toggle()
	if err != nil {
		return err
	}
	r.logger.Debug("theme toggled", "theme", theme)
	return r.writePlain("%s\n", theme)
}

// ThemeSet stores a theme by name.
func (r *Runner) ThemeSet(ctx context.Context, cmd *cli.Command) error {
	name := cmd.StringArg("name")
	if name == "" {
		return fmt.Errorf("%w: theme name is required", shared.ErrMissingArgument)
	}

	if name != repositories.ThemeLight && name != repositories.ThemeDark {
		return fmt.Errorf("%w: theme must be %s or %s, got %q", shared.ErrInvalidArgument,
			repositories.ThemeLight, repositories.ThemeDark, name)
	}

	repo, err := r.theme()
	if err != nil {
		return err
	}
	if err := repo.Set(name); err != nil {
		return err
	}
	return r.writePlain("%s\n", name)
}
