package scaffold

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/compose-spec/compose-go/v2/loader"
	"github.com/compose-spec/compose-go/v2/types"
	"gopkg.in/yaml.v3"

	"github.com/djboot/djboot/internal/config"
	"github.com/djboot/djboot/internal/core"
	"github.com/djboot/djboot/internal/errors"
	"github.com/djboot/djboot/internal/fs"
)

// ComposeFile is the typed model the compose artifacts are generated from.
// Only the subset of the compose schema djboot emits is modelled.
type ComposeFile struct {
	Services map[string]ComposeService `yaml:"services"`
	Volumes  map[string]*ComposeVolume `yaml:"volumes,omitempty"`
}

// ComposeService is a single service definition.
type ComposeService struct {
	Build       string            `yaml:"build,omitempty"`
	Image       string            `yaml:"image,omitempty"`
	Command     string            `yaml:"command,omitempty"`
	Volumes     []string          `yaml:"volumes,omitempty"`
	Ports       []string          `yaml:"ports,omitempty"`
	EnvFile     []string          `yaml:"env_file,omitempty"`
	Environment map[string]string `yaml:"environment,omitempty"`
	DependsOn   []string          `yaml:"depends_on,omitempty"`
	Restart     string            `yaml:"restart,omitempty"`
}

// ComposeVolume is a named volume spec. djboot only emits default volumes, so
// entries are nil and render as `name: null`.
type ComposeVolume struct{}

// DevCompose models docker-compose.yml: source tree mounted into the
// container, Django development server, no restart policy.
func DevCompose(projectName string, cfg config.Config) ComposeFile {
	port := cfg.Server.DevPort
	return ComposeFile{
		Services: map[string]ComposeService{
			"web": {
				Build:     ".",
				Command:   fmt.Sprintf("python manage.py runserver 0.0.0.0:%d", port),
				Volumes:   []string{".:/app"},
				Ports:     []string{fmt.Sprintf("%d:%d", port, port)},
				EnvFile:   []string{"envs/.env"},
				DependsOn: []string{"db"},
			},
			"db": dbService(projectName, cfg, ""),
		},
		Volumes: map[string]*ComposeVolume{
			"postgres_data": nil,
		},
	}
}

// ProdCompose models docker-compose.prod.yml: no source mount, static/media
// volumes, production WSGI server, restart policy on both services.
func ProdCompose(projectName string, cfg config.Config) ComposeFile {
	port := cfg.Server.DevPort
	return ComposeFile{
		Services: map[string]ComposeService{
			"web": {
				Build:   ".",
				Command: fmt.Sprintf("gunicorn config.wsgi:application --bind 0.0.0.0:%d", port),
				Volumes: []string{
					"static_volume:/app/static",
					"media_volume:/app/media",
				},
				Ports:     []string{fmt.Sprintf("%d:%d", port, port)},
				EnvFile:   []string{"envs/.env"},
				DependsOn: []string{"db"},
				Restart:   "always",
			},
			"db": dbService(projectName, cfg, "always"),
		},
		Volumes: map[string]*ComposeVolume{
			"postgres_data": nil,
			"static_volume": nil,
			"media_volume":  nil,
		},
	}
}

func dbService(projectName string, cfg config.Config, restart string) ComposeService {
	return ComposeService{
		Image: cfg.Database.Image,
		Environment: map[string]string{
			"POSTGRES_DB":       core.DatabaseName(projectName),
			"POSTGRES_USER":     cfg.Database.User,
			"POSTGRES_PASSWORD": cfg.Database.Password,
		},
		Volumes: []string{"postgres_data:/var/lib/postgresql/data"},
		Restart: restart,
	}
}

// MarshalCompose renders the model as YAML.
func MarshalCompose(f ComposeFile) ([]byte, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, errors.Wrap(errors.EComposeInvalid, "failed to marshal compose file", err)
	}
	return data, nil
}

// ValidateCompose round-trips the emitted YAML through compose-go's loader.
// Generation bugs surface here instead of at the user's first
// `docker compose up`.
func ValidateCompose(ctx context.Context, yamlContent []byte) error {
	var dict map[string]interface{}
	if err := yaml.Unmarshal(yamlContent, &dict); err != nil {
		return errors.Wrap(errors.EComposeInvalid, "emitted compose file is not valid YAML", err)
	}

	_, err := loader.LoadWithContext(ctx, types.ConfigDetails{
		ConfigFiles: []types.ConfigFile{
			{
				Content: yamlContent,
				Config:  dict,
			},
		},
	}, func(opts *loader.Options) {
		opts.SetProjectName("djboot-validate", false)
		opts.SkipValidation = false
		opts.SkipInterpolation = false
		// In-memory validation; nothing to resolve on disk.
		opts.SkipNormalization = true
		opts.SkipExtends = true
	})
	if err != nil {
		return errors.Wrap(errors.EComposeInvalid, "emitted compose file failed validation", err)
	}
	return nil
}

// WriteComposeFiles generates, validates, and writes both compose files.
func WriteComposeFiles(ctx context.Context, fsys fs.FS, projectDir, projectName string, cfg config.Config) error {
	artifacts := []struct {
		name  string
		model ComposeFile
	}{
		{"docker-compose.yml", DevCompose(projectName, cfg)},
		{"docker-compose.prod.yml", ProdCompose(projectName, cfg)},
	}
	for _, a := range artifacts {
		data, err := MarshalCompose(a.model)
		if err != nil {
			return err
		}
		if err := ValidateCompose(ctx, data); err != nil {
			return err
		}
		path := filepath.Join(projectDir, a.name)
		if err := fs.WriteFileAtomic(fsys, path, data, 0644); err != nil {
			return errors.Wrap(errors.EArtifactFailed, "failed to write "+a.name, err)
		}
	}
	return nil
}
