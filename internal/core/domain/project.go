package domain

// Project is a directory tree rooted at a parcel.yaml.
type Project struct {
	// Root is the absolute directory holding the manifest.
	Root     string
	Manifest *Manifest
}

// Dependencies parses the dependency list of the project manifest in declaration order.
func (p *Project) Dependencies() ([]Dependency, error) {
	deps := make([]Dependency, 0, len(p.Manifest.Dependencies))
	for _, d := range p.Manifest.Dependencies {
		c, err := ParseConstraint(d.Version)
		if err != nil {
			return nil, Fail(ErrInvalidManifest, "invalid dependency constraint",
				"dependency", d.Name, "cause", err.Error())
		}
		deps = append(deps, Dependency{Name: d.Name, Constraint: c})
	}
	return deps, nil
}
