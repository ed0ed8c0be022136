// Package report renders command results for the terminal.
package report

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"go.trai.ch/parcel/internal/app"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/engine/installer"
	"go.trai.ch/parcel/internal/ui/output"
	"go.trai.ch/parcel/internal/ui/style"
)

// Printer writes one line per reported item.
type Printer struct {
	w       io.Writer
	name    lipgloss.Style
	version lipgloss.Style
	muted   lipgloss.Style
	ok      lipgloss.Style
	fail    lipgloss.Style
}

// New creates a Printer using the color profile of the environment.
func New(w io.Writer) *Printer {
	return NewWithProfile(w, output.ColorProfile)
}

// NewWithProfile creates a Printer with a custom profile selector.
func NewWithProfile(w io.Writer, profileFn func() termenv.Profile) *Printer {
	r := lipgloss.NewRenderer(w)
	r.SetColorProfile(profileFn())
	return &Printer{
		w:       w,
		name:    r.NewStyle().Inherit(style.Name),
		version: r.NewStyle().Inherit(style.Version),
		muted:   r.NewStyle().Inherit(style.Muted),
		ok:      r.NewStyle().Foreground(style.Green),
		fail:    r.NewStyle().Foreground(style.Red),
	}
}

func (p *Printer) line(format string, args ...any) {
	_, _ = fmt.Fprintf(p.w, format+"\n", args...)
}

func (p *Printer) spec(spec domain.PackageSpec) string {
	s := p.name.Render(spec.Name()) + " " + p.version.Render(spec.Version().String())
	if spec.Platform() != domain.PlatformAny {
		s += " " + p.muted.Render("("+spec.Platform()+")")
	}
	return s
}

// Installs reports each install request on its own line, in request order.
func (p *Printer) Installs(results []installer.Result) {
	for _, r := range results {
		root, ok := r.Root()
		if !ok {
			p.line("%s %s: %s", p.fail.Render(style.Cross), p.name.Render(r.Request.Name), r.Err)
			continue
		}
		s := fmt.Sprintf("%s %s", p.ok.Render(style.Check), p.spec(root))
		if n := len(r.Specs) - 1; n > 0 {
			s += " " + p.muted.Render("with "+plural(n, "dependency", "dependencies"))
		}
		p.line("%s", s)
	}
}

// Versions reports the known versions of each package, highest first.
func (p *Printer) Versions(listing map[string][]domain.Version) {
	names := make([]string, 0, len(listing))
	for name := range listing {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		p.versions(name, listing[name])
	}
}

// Listings reports each listed package on its own line, in request order.
func (p *Printer) Listings(listings []app.Listing) {
	for _, l := range listings {
		if l.Err != nil {
			p.line("%s %s: %s", p.fail.Render(style.Cross), p.name.Render(l.Name), l.Err)
			continue
		}
		p.versions(l.Name, l.Versions)
	}
}

func (p *Printer) versions(name string, versions []domain.Version) {
	rendered := make([]string, len(versions))
	for i, v := range versions {
		rendered[i] = p.version.Render(v.String())
	}
	p.line("%s (%s)", p.name.Render(name), strings.Join(rendered, ", "))
}

// Archive reports a built package.
func (p *Printer) Archive(pkg *domain.PackageArchive) {
	p.line("%s built %s %s %s", p.ok.Render(style.Check), p.spec(pkg.Spec), style.Arrow, pkg.Path)
}

// Unpacked reports an extracted package.
func (p *Printer) Unpacked(u app.Unpacked) {
	p.line("%s unpacked %s %s %s", p.ok.Render(style.Check), p.spec(u.Spec), style.Arrow, u.Dir)
}

// Sync reports installed requests followed by a summary of the unpacked packages.
func (p *Printer) Sync(report *app.SyncReport) {
	p.Installs(report.Results)
	if len(report.Unpacked) == 0 {
		p.line("%s", p.muted.Render("nothing to sync"))
		return
	}
	p.line("%s synced %s into %s", p.ok.Render(style.Check),
		plural(len(report.Unpacked), "package", "packages"), report.Target)
}

// Problems lists every problem of a failed validation.
func (p *Printer) Problems(err *domain.ValidationError) {
	p.line("%s %s", p.fail.Render(style.Cross), domain.ErrValidation.Error())
	for _, problem := range err.Problems {
		p.line("  %s %s", p.muted.Render("-"), problem)
	}
}

// Message reports a successful operation.
func (p *Printer) Message(msg string) {
	p.line("%s %s", p.ok.Render(style.Check), msg)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}
