package registry

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"go.trai.ch/parcel/internal/core/domain"
)

// packageResponse is the body of GET /packages/{name}.
type packageResponse struct {
	Name     string            `json:"name"`
	Versions []versionResponse `json:"versions"`
}

type versionResponse struct {
	Version  string `json:"version"`
	Platform string `json:"platform"`
	Yanked   bool   `json:"yanked,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

// Search returns the published, non-yanked identities of name.
func (c *Client) Search(ctx context.Context, name string) (*domain.PackageIndex, error) {
	endpoint := c.endpoint("packages", name)
	resp, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
		if err == nil {
			req.Header.Set("Accept", "application/json")
		}
		return req, err
	})
	if err != nil {
		return nil, err
	}

	idx := domain.NewPackageIndex()
	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		_ = serverMessage(resp)
		return idx, nil
	default:
		return nil, statusError(resp, "failed to search registry", "package", name)
	}

	var body packageResponse
	if err := decodeJSON(resp, &body); err != nil {
		return nil, err
	}
	for _, v := range body.Versions {
		if v.Yanked {
			continue
		}
		version, err := domain.ParseVersion(v.Version)
		if err != nil {
			return nil, domain.Fail(domain.ErrRegistryParseFailed, "registry listed an invalid version",
				"package", name, "version", v.Version)
		}
		platform := v.Platform
		if platform == "" {
			platform = domain.PlatformAny
		}
		idx.Add(domain.IndexEntry{Name: name, Version: version, Platform: platform})
	}
	return idx, nil
}

// Download opens the archive stream of id.
func (c *Client) Download(ctx context.Context, id domain.PackageID) (io.ReadCloser, error) {
	platform := id.Platform
	if platform == "" {
		platform = domain.PlatformAny
	}
	endpoint := c.endpoint("packages", id.Name, id.Version.String(), platform, "archive")
	resp, err := c.do(ctx, func() (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp, "failed to download package", "package", id.String())
	}
	return resp.Body, nil
}

// Push uploads the archive at archivePath.
func (c *Client) Push(ctx context.Context, session *domain.Session, archivePath string) (string, error) {
	if err := requireSession(session); err != nil {
		return "", err
	}
	if _, err := os.Stat(archivePath); err != nil {
		return "", domain.Fail(domain.ErrNotFound, "archive not found", "path", archivePath, "cause", err.Error())
	}

	endpoint := c.endpoint("packages")
	resp, err := c.do(ctx, func() (*http.Request, error) {
		//nolint:gosec // path is provided by the user
		f, err := os.Open(archivePath)
		if err != nil {
			return nil, domain.Fail(domain.ErrPermission, "failed to open archive", "path", archivePath, "cause", err.Error())
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, f)
		if err != nil {
			_ = f.Close()
			return nil, err
		}
		if info, err := f.Stat(); err == nil {
			req.ContentLength = info.Size()
		}
		req.Header.Set("Content-Type", archiveContentType)
		req.Header.Set("X-Parcel-Filename", filepath.Base(archivePath))
		authorize(req, session)
		return req, nil
	})
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", statusError(resp, "failed to push package", "path", archivePath)
	}

	var body messageResponse
	if err := decodeJSON(resp, &body); err != nil {
		return "", err
	}
	return body.Message, nil
}

// Yank hides name@version from new resolutions.
func (c *Client) Yank(ctx context.Context, session *domain.Session, name string, version domain.Version) (string, error) {
	return c.yank(ctx, session, http.MethodDelete, name, version)
}

// Unyank makes name@version resolvable again. Unyanking an available version succeeds.
func (c *Client) Unyank(ctx context.Context, session *domain.Session, name string, version domain.Version) (string, error) {
	return c.yank(ctx, session, http.MethodPut, name, version)
}

func (c *Client) yank(ctx context.Context, session *domain.Session, method, name string, version domain.Version) (string, error) {
	if err := requireSession(session); err != nil {
		return "", err
	}

	endpoint := c.endpoint("packages", name, version.String(), "yank")
	resp, err := c.do(ctx, func() (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, method, endpoint, http.NoBody)
		if err == nil {
			authorize(req, session)
		}
		return req, err
	})
	if err != nil {
		return "", err
	}

	id := name + "@" + version.String()
	switch {
	case resp.StatusCode == http.StatusConflict && method == http.MethodPut:
		_ = serverMessage(resp)
		return id + " is not yanked", nil
	case resp.StatusCode != http.StatusOK:
		return "", statusError(resp, "failed to change yank state", "package", id)
	}

	var body messageResponse
	if err := decodeJSON(resp, &body); err != nil {
		return "", err
	}
	return body.Message, nil
}
