package app

import (
	"context"
	"errors"

	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/zerr"
)

// Login opens a registry session. A token from the settings is used as is;
// otherwise the user is asked for credentials until the registry accepts them
// or the attempts run out.
func (a *App) Login(ctx context.Context) (*domain.Session, error) {
	if a.settings.Token != "" {
		return domain.NewSession("", a.settings.Token, a.settings.RegistryURL), nil
	}

	for attempt := 1; attempt <= a.loginAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, zerr.Wrap(err, "login cancelled")
		}

		email, err := a.prompter.Prompt("Email: ")
		if err != nil {
			return nil, err
		}
		password, err := a.prompter.PromptSecret("Password: ")
		if err != nil {
			return nil, err
		}

		session, err := a.registry.Login(ctx, email, password)
		if err == nil {
			a.logger.Debug("logged in", "email", email, "registry", session.Registry)
			return session, nil
		}
		if !errors.Is(err, domain.ErrLoginFailed) {
			return nil, err
		}
		a.logger.Debug("login rejected", "email", email, "attempt", attempt)
		if attempt < a.loginAttempts {
			a.logger.Warn("invalid email or password, try again")
		}
	}
	return nil, domain.Fail(domain.ErrLoginFailed, "too many failed attempts", "attempts", a.loginAttempts)
}

// Logout ends a session.
func (a *App) Logout(session *domain.Session) {
	session.Invalidate()
}

// Push publishes an archive and returns the registry's message.
func (a *App) Push(ctx context.Context, archivePath string) (string, error) {
	archivePath, err := a.abs(archivePath)
	if err != nil {
		return "", err
	}
	spec, err := a.unpacker.Inspect(archivePath)
	if err != nil {
		return "", err
	}

	session, err := a.Login(ctx)
	if err != nil {
		return "", err
	}
	defer a.Logout(session)

	a.logger.Debug("pushing package", "package", spec.String(), "archive", archivePath)
	return a.registry.Push(ctx, session, archivePath)
}

// Yank hides a published version from new resolutions. With undo set it makes
// the version available again.
func (a *App) Yank(ctx context.Context, name, version string, undo bool) (string, error) {
	v, err := domain.ParseVersion(version)
	if err != nil {
		return "", err
	}

	session, err := a.Login(ctx)
	if err != nil {
		return "", err
	}
	defer a.Logout(session)

	if undo {
		return a.registry.Unyank(ctx, session, name, v)
	}
	return a.registry.Yank(ctx, session, name, v)
}
