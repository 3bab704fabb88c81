package scaffold

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/djboot/djboot/internal/config"
	"github.com/djboot/djboot/internal/core"
	"github.com/djboot/djboot/internal/errors"
	"github.com/djboot/djboot/internal/fs"
)

// EnvValues holds the nine keys written to envs/.env.
type EnvValues struct {
	SecretKey          string
	Debug              bool
	AllowedHosts       string
	CorsAllowAllOrigin bool
	DatabaseName       string
	DatabaseUser       string
	DatabasePassword   string
	DatabaseHost       string
	DatabasePort       int
}

// DefaultEnvValues builds the env values for a fresh project from the tool
// configuration and a generated secret.
func DefaultEnvValues(projectName, secretKey string, cfg config.Config) EnvValues {
	return EnvValues{
		SecretKey:          secretKey,
		Debug:              true,
		AllowedHosts:       "localhost,127.0.0.1",
		CorsAllowAllOrigin: true,
		DatabaseName:       core.DatabaseName(projectName),
		DatabaseUser:       cfg.Database.User,
		DatabasePassword:   cfg.Database.Password,
		DatabaseHost:       cfg.Database.Host,
		DatabasePort:       cfg.Database.Port,
	}
}

func (v EnvValues) toMap() map[string]string {
	return map[string]string{
		"SECRET_KEY":             v.SecretKey,
		"DEBUG":                  pyBool(v.Debug),
		"ALLOWED_HOSTS":          v.AllowedHosts,
		"CORS_ALLOW_ALL_ORIGINS": pyBool(v.CorsAllowAllOrigin),
		"DATABASE_NAME":          v.DatabaseName,
		"DATABASE_USER":          v.DatabaseUser,
		"DATABASE_PASSWORD":      v.DatabasePassword,
		"DATABASE_HOST":          v.DatabaseHost,
		"DATABASE_PORT":          strconv.Itoa(v.DatabasePort),
	}
}

// example returns the same key set with the secret and password replaced by
// placeholders. .env.example is meant to be committed, so it must never carry
// the generated secret; the key sets stay identical.
func (v EnvValues) example() map[string]string {
	m := v.toMap()
	m["SECRET_KEY"] = "your-secret-key"
	m["DATABASE_PASSWORD"] = "change-me"
	return m
}

// pyBool renders a bool the way the generated settings compare it: the exact
// string "True" enables, anything else disables.
func pyBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// WriteEnvFiles writes envs/.env and envs/.env.example.
func WriteEnvFiles(fsys fs.FS, projectDir string, v EnvValues) error {
	envsDir := filepath.Join(projectDir, "envs")
	if err := fsys.MkdirAll(envsDir, 0755); err != nil {
		return errors.Wrap(errors.EEnvWriteFailed, "failed to create envs directory", err)
	}

	files := []struct {
		name   string
		values map[string]string
		perm   os.FileMode
	}{
		{".env", v.toMap(), 0600},
		{".env.example", v.example(), 0644},
	}
	for _, f := range files {
		content, err := godotenv.Marshal(f.values)
		if err != nil {
			return errors.Wrap(errors.EEnvWriteFailed, "failed to serialize "+f.name, err)
		}
		path := filepath.Join(envsDir, f.name)
		if err := fs.WriteFileAtomic(fsys, path, []byte(content+"\n"), f.perm); err != nil {
			return errors.Wrap(errors.EEnvWriteFailed, "failed to write "+f.name, err)
		}
	}
	return nil
}
