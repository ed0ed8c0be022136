// Package registrytest provides an in-memory registry server for tests.
package registrytest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"slices"
	"strings"
	"sync"

	"go.trai.ch/parcel/internal/adapters/archive"
	"go.trai.ch/parcel/internal/core/domain"
)

// Credentials accepted by a Server unless changed.
const (
	Email    = "dev@example.com"
	Password = "correct horse"
	Token    = "test-token"
)

// Release is one published archive.
type Release struct {
	Version  string
	Platform string
	Yanked   bool
	Archive  []byte
}

// Server is a registry backed by memory.
type Server struct {
	*httptest.Server

	mu        sync.Mutex
	packages  map[string][]*Release
	downloads map[string]int
	logins    int
	failNext  int
}

// New starts a server. The caller closes it.
func New() *Server {
	s := &Server{
		packages:  make(map[string][]*Release),
		downloads: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/packages/{name}", s.handleSearch)
	mux.HandleFunc("GET /api/v1/packages/{name}/{version}/{platform}/archive", s.handleDownload)
	mux.HandleFunc("POST /api/v1/sessions", s.handleLogin)
	mux.HandleFunc("POST /api/v1/packages", s.handlePush)
	mux.HandleFunc("DELETE /api/v1/packages/{name}/{version}/yank", s.handleYank(true))
	mux.HandleFunc("PUT /api/v1/packages/{name}/{version}/yank", s.handleYank(false))

	s.Server = httptest.NewServer(s.failing(mux))
	return s
}

// Publish adds a release. The archive may be nil for index-only tests.
func (s *Server) Publish(name, version, platform string, archiveData []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if platform == "" {
		platform = domain.PlatformAny
	}
	s.packages[name] = append(s.packages[name], &Release{
		Version:  domain.MustParseVersion(version).String(),
		Platform: platform,
		Archive:  archiveData,
	})
}

// PublishFile publishes the archive at path under the identity it declares.
func (s *Server) PublishFile(path string) (domain.PackageSpec, error) {
	spec, err := archive.New().Inspect(path)
	if err != nil {
		return domain.PackageSpec{}, err
	}
	//nolint:gosec // test helper
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.PackageSpec{}, err
	}
	s.Publish(spec.Name(), spec.Version().String(), spec.Platform(), data)
	return spec, nil
}

// Downloads returns how often the archive of name@version was served.
func (s *Server) Downloads(name, version string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.downloads[name+"@"+domain.MustParseVersion(version).String()]
}

// TotalDownloads returns how many archives were served.
func (s *Server) TotalDownloads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, c := range s.downloads {
		n += c
	}
	return n
}

// Logins returns the number of login attempts.
func (s *Server) Logins() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.logins
}

// Yanked reports whether name@version is yanked.
func (s *Server) Yanked(name, version string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.packages[name] {
		if r.Version == domain.MustParseVersion(version).String() {
			return r.Yanked
		}
	}
	return false
}

// FailNext makes the next n requests fail with 503.
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext = n
}

func (s *Server) failing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		fail := s.failNext > 0
		if fail {
			s.failNext--
		}
		s.mu.Unlock()
		if fail {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"message": "try again later"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	s.mu.Lock()
	releases, ok := s.packages[name]
	type version struct {
		Version  string `json:"version"`
		Platform string `json:"platform"`
		Yanked   bool   `json:"yanked,omitempty"`
	}
	body := struct {
		Name     string    `json:"name"`
		Versions []version `json:"versions"`
	}{Name: name}
	for _, rel := range releases {
		body.Versions = append(body.Versions, version{Version: rel.Version, Platform: rel.Platform, Yanked: rel.Yanked})
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no such package"})
		return
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	name, version, platform := r.PathValue("name"), r.PathValue("version"), r.PathValue("platform")

	s.mu.Lock()
	var found *Release
	for _, rel := range s.packages[name] {
		if rel.Version == version && rel.Platform == platform {
			found = rel
		}
	}
	if found != nil {
		s.downloads[name+"@"+version]++
	}
	s.mu.Unlock()

	if found == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "no such release"})
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	_, _ = w.Write(found.Archive)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.logins++
	s.mu.Unlock()

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "malformed request"})
		return
	}
	if body.Email != Email || body.Password != Password {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid email or password"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"token": Token})
}

func (s *Server) handlePush(w http.ResponseWriter, r *http.Request) {
	if !authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
		return
	}

	tmp, err := os.CreateTemp("", "registrytest-*.pkg")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	_, err = io.Copy(tmp, r.Body)
	_ = tmp.Close()
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": err.Error()})
		return
	}

	spec, err := archive.New().Inspect(tmp.Name())
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": err.Error()})
		return
	}

	s.mu.Lock()
	exists := slices.ContainsFunc(s.packages[spec.Name()], func(rel *Release) bool {
		return rel.Version == spec.Version().String() && rel.Platform == spec.Platform()
	})
	s.mu.Unlock()
	if exists {
		writeJSON(w, http.StatusConflict, map[string]string{"message": spec.String() + " is already published"})
		return
	}

	if _, err := s.PublishFile(tmp.Name()); err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "published " + spec.String()})
}

func (s *Server) handleYank(yank bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !authorized(r) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "invalid token"})
			return
		}
		name, version := r.PathValue("name"), r.PathValue("version")

		s.mu.Lock()
		var found *Release
		for _, rel := range s.packages[name] {
			if rel.Version == version {
				found = rel
			}
		}
		var status int
		var msg string
		switch {
		case found == nil:
			status, msg = http.StatusNotFound, "no such release"
		case !yank && !found.Yanked:
			status, msg = http.StatusConflict, "not yanked"
		default:
			found.Yanked = yank
			status = http.StatusOK
			if yank {
				msg = "yanked " + name + "@" + version
			} else {
				msg = "restored " + name + "@" + version
			}
		}
		s.mu.Unlock()
		writeJSON(w, status, map[string]string{"message": msg})
	}
}

func authorized(r *http.Request) bool {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ") == Token
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
