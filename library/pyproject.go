package library

import (
	"github.com/BurntSushi/toml"
	"github.com/Masterminds/semver/v3"

	"github.com/teranos/libref/errors"
)

// Pyproject is the part of pyproject.toml libref reads.
type Pyproject struct {
	Project struct {
		Name    string `toml:"name"`
		Version string `toml:"version"`
	} `toml:"project"`
	Tool struct {
		Poetry struct {
			Name    string `toml:"name"`
			Version string `toml:"version"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

// Name returns the package name, PEP 621 first, then Poetry.
func (p Pyproject) Name() string {
	if p.Project.Name != "" {
		return p.Project.Name
	}
	return p.Tool.Poetry.Name
}

// Version returns the package version, PEP 621 first, then Poetry.
func (p Pyproject) Version() string {
	if p.Project.Version != "" {
		return p.Project.Version
	}
	return p.Tool.Poetry.Version
}

// ReadPyproject decodes pyproject.toml at path.
func ReadPyproject(path string) (Pyproject, error) {
	var p Pyproject
	if _, err := toml.DecodeFile(path, &p); err != nil {
		return Pyproject{}, errors.Wrapf(err, "parse %s", path)
	}
	return p, nil
}

// CheckVersion reads the library version from pyproject.toml and verifies
// it satisfies constraint. An empty constraint only reads the version.
func CheckVersion(path, constraint string) (string, error) {
	p, err := ReadPyproject(path)
	if err != nil {
		return "", err
	}
	raw := p.Version()
	if constraint == "" {
		return raw, nil
	}
	if raw == "" {
		return "", errors.WithHintf(errors.Newf("%s declares no version", path),
			"remove library.version_constraint or point library.pyproject at the right file")
	}

	v, err := semver.NewVersion(raw)
	if err != nil {
		return "", errors.Wrapf(err, "invalid library version %s", raw)
	}
	c, err := semver.NewConstraint(constraint)
	if err != nil {
		return "", errors.Wrapf(err, "invalid version constraint %s", constraint)
	}
	if !c.Check(v) {
		return "", errors.WithHintf(
			errors.Newf("library version %s does not satisfy %s", raw, constraint),
			"update the library checkout or library.version_constraint")
	}
	return raw, nil
}
