package endpoint

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// profileFile is the on-disk shape of an endpoint profile table.
type profileFile struct {
	Local  *Profile `yaml:"local"`
	Hosted *Profile `yaml:"hosted"`
}

// LoadProfiles reads a YAML profile table and overlays it onto defaults.
// Fields missing from the file keep their default values.
func LoadProfiles(path string, defaults map[Environment]Profile) (map[Environment]Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read endpoints file: %w", err)
	}

	content := os.ExpandEnv(string(data))

	var pf profileFile
	if err := yaml.Unmarshal([]byte(content), &pf); err != nil {
		return nil, fmt.Errorf("parse endpoints file: %w", err)
	}

	out := make(map[Environment]Profile, 2)
	for env, p := range defaults {
		out[env] = copyProfile(p)
	}
	overlay(out, EnvLocal, pf.Local)
	overlay(out, EnvHosted, pf.Hosted)

	for env, p := range out {
		for op := range p.Paths {
			if !knownOperation(op) {
				return nil, fmt.Errorf("endpoints file: %s: unknown operation %q", env, op)
			}
		}
	}

	return out, nil
}

func overlay(dst map[Environment]Profile, env Environment, src *Profile) {
	if src == nil {
		return
	}
	p := dst[env]
	if p.Paths == nil {
		p.Paths = make(map[Operation]string)
	}
	if src.BaseURL != "" {
		p.BaseURL = src.BaseURL
	}
	for op, path := range src.Paths {
		p.Paths[op] = path
	}
	dst[env] = p
}

func copyProfile(p Profile) Profile {
	out := Profile{BaseURL: p.BaseURL, Paths: make(map[Operation]string, len(p.Paths))}
	for k, v := range p.Paths {
		out.Paths[k] = v
	}
	return out
}

func knownOperation(op Operation) bool {
	for _, known := range Operations {
		if op == known {
			return true
		}
	}
	return false
}
