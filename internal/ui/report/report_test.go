package report_test

import (
	"bytes"
	"testing"

	"github.com/muesli/termenv"
	"github.com/sebdah/goldie/v2"
	"go.trai.ch/parcel/internal/app"
	"go.trai.ch/parcel/internal/core/domain"
	"go.trai.ch/parcel/internal/engine/installer"
	"go.trai.ch/parcel/internal/ui/report"
)

func plain() termenv.Profile { return termenv.Ascii }

func spec(name, version, platform string) domain.PackageSpec {
	return domain.NewPackageSpec(name, domain.MustParseVersion(version), platform, nil)
}

func installed() installer.Result {
	return installer.Result{
		Request: installer.Request{Name: "foo"},
		Specs:   []domain.PackageSpec{spec("bar", "2.0", ""), spec("foo", "1.0", "")},
	}
}

func TestPrinter_Installs(t *testing.T) {
	buf := &bytes.Buffer{}
	report.NewWithProfile(buf, plain).Installs([]installer.Result{
		installed(),
		{
			Request: installer.Request{Name: "baz"},
			Err:     domain.Fail(domain.ErrUnresolved, "cannot resolve baz >= 0"),
		},
		{
			Request: installer.Request{Name: "qux"},
			Specs:   []domain.PackageSpec{spec("qux", "1.2", "linux-amd64")},
		},
	})

	goldie.New(t).Assert(t, "installs", buf.Bytes())
}

func TestPrinter_Versions(t *testing.T) {
	buf := &bytes.Buffer{}
	report.NewWithProfile(buf, plain).Versions(map[string][]domain.Version{
		"foo": {domain.MustParseVersion("1.1"), domain.MustParseVersion("1.0")},
		"bar": {domain.MustParseVersion("2.0")},
	})

	goldie.New(t).Assert(t, "versions", buf.Bytes())
}

func TestPrinter_Listings(t *testing.T) {
	buf := &bytes.Buffer{}
	report.NewWithProfile(buf, plain).Listings([]app.Listing{
		{Name: "foo", Versions: []domain.Version{domain.MustParseVersion("1.1"), domain.MustParseVersion("1.0")}},
		{Name: "nosuch", Err: domain.Fail(domain.ErrNotFound, "no published versions", "package", "nosuch")},
		{Name: "bar", Versions: []domain.Version{domain.MustParseVersion("2.0")}},
	})

	goldie.New(t).Assert(t, "listings", buf.Bytes())
}

func TestPrinter_Problems(t *testing.T) {
	buf := &bytes.Buffer{}
	report.NewWithProfile(buf, plain).Problems(&domain.ValidationError{Problems: []string{
		"name is required",
		`version "x" is not a valid version`,
	}})

	goldie.New(t).Assert(t, "problems", buf.Bytes())
}

func TestPrinter_Sync(t *testing.T) {
	buf := &bytes.Buffer{}
	p := report.NewWithProfile(buf, plain)
	p.Sync(&app.SyncReport{
		Target:  "/work/.parcel/deps",
		Results: []installer.Result{installed()},
		Unpacked: []app.Unpacked{
			{Spec: spec("bar", "2.0", ""), Dir: "/work/.parcel/deps/bar-2.0.0"},
			{Spec: spec("foo", "1.0", ""), Dir: "/work/.parcel/deps/foo-1.0.0"},
		},
	})
	p.Sync(&app.SyncReport{Target: "/work/.parcel/deps"})

	goldie.New(t).Assert(t, "sync", buf.Bytes())
}

func TestPrinter_Operations(t *testing.T) {
	buf := &bytes.Buffer{}
	p := report.NewWithProfile(buf, plain)
	p.Archive(&domain.PackageArchive{Path: "/work/foo-1.0.0.pkg", Spec: spec("foo", "1.0", "")})
	p.Unpacked(app.Unpacked{Spec: spec("foo", "1.0", ""), Dir: "/work/out/foo-1.0.0"})
	p.Message("published foo@1.0.0")

	goldie.New(t).Assert(t, "operations", buf.Bytes())
}
