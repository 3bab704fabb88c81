package scaffold

import (
	"path/filepath"

	"github.com/djboot/djboot/internal/errors"
	"github.com/djboot/djboot/internal/fs"
)

// DockerfileTemplate is the build file for generated projects. Dependencies
// install before the source copy so the layer caches across code changes.
const DockerfileTemplate = `FROM python:3.12-slim

ENV PYTHONDONTWRITEBYTECODE=1
ENV PYTHONUNBUFFERED=1

WORKDIR /app

RUN apt-get update \
    && apt-get install -y --no-install-recommends libpq5 \
    && rm -rf /var/lib/apt/lists/*

COPY requirements.txt .
RUN pip install --no-cache-dir -r requirements.txt

COPY . .

EXPOSE 8000
`

// WriteDockerfile writes the Dockerfile into the project root.
func WriteDockerfile(fsys fs.FS, projectDir string) error {
	path := filepath.Join(projectDir, "Dockerfile")
	if err := fs.WriteFileAtomic(fsys, path, []byte(DockerfileTemplate), 0644); err != nil {
		return errors.Wrap(errors.EArtifactFailed, "failed to write Dockerfile", err)
	}
	return nil
}
