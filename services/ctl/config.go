// Package ctl holds configuration loading for the provctl command line
// tool: a YAML file of named provisioner instances with environment
// overrides on top.
package ctl

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where provctl looks for its configuration unless told
// otherwise.
const DefaultPath = "/etc/provsync/config.yaml"

// File is the on-disk configuration shape.
type File struct {
	DefaultInstance string              `yaml:"default_instance"`
	Instances       map[string]Instance `yaml:"instances"`
}

// Instance describes one provisioner endpoint.
type Instance struct {
	URL       string `yaml:"url"`
	Token     string `yaml:"token"`
	Interface string `yaml:"interface"`
}

// Config is the resolved configuration for a single invocation.
type Config struct {
	URL       string
	Token     string
	Interface string
}

// Load resolves configuration for the named instance. Precedence, lowest
// to highest: config file, then PROVSYNC_URL / PROVSYNC_TOKEN /
// PROVSYNC_INTERFACE. A missing file at DefaultPath is fine as long as the
// environment supplies a URL and token; an explicitly given path must
// exist.
func Load(path, instance string) (Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}

	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		file, err := parse(data)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", path, err)
		}
		cfg, err = file.resolve(instance)
		if err != nil {
			return Config{}, err
		}
	case os.IsNotExist(err) && !explicit:
		if instance != "" {
			return Config{}, fmt.Errorf("instance %q requested but %s does not exist", instance, path)
		}
	default:
		return Config{}, fmt.Errorf("read %s: %w", path, err)
	}

	if v := strings.TrimSpace(os.Getenv("PROVSYNC_URL")); v != "" {
		cfg.URL = v
	}
	if v := strings.TrimSpace(os.Getenv("PROVSYNC_TOKEN")); v != "" {
		cfg.Token = v
	}
	if v := strings.TrimSpace(os.Getenv("PROVSYNC_INTERFACE")); v != "" {
		cfg.Interface = v
	}

	if cfg.URL == "" {
		return Config{}, errors.New("no provisioner url configured (config file or PROVSYNC_URL)")
	}
	if cfg.Token == "" {
		return Config{}, errors.New("no provisioner token configured (config file or PROVSYNC_TOKEN)")
	}
	return cfg, nil
}

func parse(data []byte) (File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, err
	}
	return file, nil
}

// resolve picks an instance: the requested one, the file's default, or the
// sole entry when the file defines exactly one.
func (f File) resolve(instance string) (Config, error) {
	if len(f.Instances) == 0 {
		if instance != "" {
			return Config{}, fmt.Errorf("unknown instance %q, config file defines none", instance)
		}
		return Config{}, nil
	}

	name := instance
	if name == "" {
		name = f.DefaultInstance
	}
	if name == "" && len(f.Instances) == 1 {
		for only := range f.Instances {
			name = only
		}
	}
	if name == "" {
		return Config{}, fmt.Errorf("multiple instances defined (%s), pick one with --instance or default_instance", strings.Join(f.names(), ", "))
	}

	inst, ok := f.Instances[name]
	if !ok {
		return Config{}, fmt.Errorf("unknown instance %q (have: %s)", name, strings.Join(f.names(), ", "))
	}
	return Config{URL: inst.URL, Token: inst.Token, Interface: inst.Interface}, nil
}

func (f File) names() []string {
	names := make([]string, 0, len(f.Instances))
	for name := range f.Instances {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
