// Package scaffold generates the files that make up a djboot project: the
// layered settings package, env files, entry-point rewrites, and container
// artifacts. Everything is produced from templates/models rather than by
// patching generator output, so upstream format drift cannot silently corrupt
// the result.
package scaffold

import (
	"bytes"
	"os"
	"path/filepath"
	"text/template"

	"github.com/djboot/djboot/internal/errors"
	"github.com/djboot/djboot/internal/fs"
)

// SettingsModel feeds the base settings template.
type SettingsModel struct {
	ProjectName string
}

// baseSettingsTemplate is the shared settings module. It carries the full
// outcome of the settings transformation: env loading from envs/.env, root
// path computed for the settings/ nesting depth, config.* dotted paths,
// env-sourced SECRET_KEY/DEBUG/ALLOWED_HOSTS, REST framework + CORS + common
// apps, CORS middleware ahead of CommonMiddleware, mutually exclusive CORS
// origin settings, and apps/ on the module search path.
const baseSettingsTemplate = `"""
Django settings for the {{ .ProjectName }} project.

Shared base; environment-specific values live in dev.py and prod.py.
Generated by djboot.
"""

import os
import sys
from pathlib import Path

from dotenv import load_dotenv

# This file lives at <project>/config/settings/base.py
BASE_DIR = Path(__file__).resolve().parent.parent.parent

load_dotenv(os.path.join(BASE_DIR, 'envs', '.env'))

SECRET_KEY = os.environ.get('SECRET_KEY')

DEBUG = os.environ.get('DEBUG') == 'True'

ALLOWED_HOSTS = os.environ.get('ALLOWED_HOSTS', 'localhost').split(',')

INSTALLED_APPS = [
    'django.contrib.admin',
    'django.contrib.auth',
    'django.contrib.contenttypes',
    'django.contrib.sessions',
    'django.contrib.messages',
    'django.contrib.staticfiles',
    'rest_framework',
    'corsheaders',
    'common',
]

MIDDLEWARE = [
    'django.middleware.security.SecurityMiddleware',
    'django.contrib.sessions.middleware.SessionMiddleware',
    'corsheaders.middleware.CorsMiddleware',
    'django.middleware.common.CommonMiddleware',
    'django.middleware.csrf.CsrfViewMiddleware',
    'django.contrib.auth.middleware.AuthenticationMiddleware',
    'django.contrib.messages.middleware.MessageMiddleware',
    'django.middleware.clickjacking.XFrameOptionsMiddleware',
]

ROOT_URLCONF = 'config.urls'

TEMPLATES = [
    {
        'BACKEND': 'django.template.backends.django.DjangoTemplates',
        'DIRS': [],
        'APP_DIRS': True,
        'OPTIONS': {
            'context_processors': [
                'django.template.context_processors.request',
                'django.contrib.auth.context_processors.auth',
                'django.contrib.messages.context_processors.messages',
            ],
        },
    },
]

WSGI_APPLICATION = 'config.wsgi.application'

DATABASES = {
    'default': {
        'ENGINE': 'django.db.backends.sqlite3',
        'NAME': BASE_DIR / 'db.sqlite3',
    }
}

AUTH_PASSWORD_VALIDATORS = [
    {
        'NAME': 'django.contrib.auth.password_validation.UserAttributeSimilarityValidator',
    },
    {
        'NAME': 'django.contrib.auth.password_validation.MinimumLengthValidator',
    },
    {
        'NAME': 'django.contrib.auth.password_validation.CommonPasswordValidator',
    },
    {
        'NAME': 'django.contrib.auth.password_validation.NumericPasswordValidator',
    },
]

LANGUAGE_CODE = 'en-us'

TIME_ZONE = 'UTC'

USE_I18N = True

USE_TZ = True

STATIC_URL = 'static/'
STATIC_ROOT = os.path.join(BASE_DIR, 'static')

MEDIA_URL = 'media/'
MEDIA_ROOT = os.path.join(BASE_DIR, 'media')

DEFAULT_AUTO_FIELD = 'django.db.models.BigAutoField'

# When allow-all is on, the explicit origin list is forced empty; the two are
# never both active.
CORS_ALLOW_ALL_ORIGINS = os.environ.get('CORS_ALLOW_ALL_ORIGINS') == 'True'
CORS_ALLOWED_ORIGINS = [] if CORS_ALLOW_ALL_ORIGINS else [
    origin for origin in os.environ.get('CORS_ALLOWED_ORIGINS', '').split(',') if origin
]

# Feature apps under apps/ import as top-level packages.
sys.path.insert(0, os.path.join(BASE_DIR, 'apps'))
`

// DevSettings overrides exactly: DEBUG, ALLOWED_HOSTS, CORS flag, DATABASES.
const DevSettings = `from .base import *  # noqa: F401,F403

DEBUG = True

ALLOWED_HOSTS = ['*']

CORS_ALLOW_ALL_ORIGINS = True

DATABASES = {
    'default': {
        'ENGINE': 'django.db.backends.sqlite3',
        'NAME': BASE_DIR / 'db.sqlite3',
    }
}
`

// ProdSettings overrides the same four keys with production values. No default
// for ALLOWED_HOSTS: an unset variable must fail loudly, not serve traffic.
const ProdSettings = `from .base import *  # noqa: F401,F403

DEBUG = False

ALLOWED_HOSTS = os.environ.get('ALLOWED_HOSTS').split(',')

CORS_ALLOW_ALL_ORIGINS = False

DATABASES = {
    'default': {
        'ENGINE': 'django.db.backends.postgresql',
        'NAME': os.environ.get('DATABASE_NAME'),
        'USER': os.environ.get('DATABASE_USER'),
        'PASSWORD': os.environ.get('DATABASE_PASSWORD'),
        'HOST': os.environ.get('DATABASE_HOST'),
        'PORT': os.environ.get('DATABASE_PORT'),
    }
}
`

var baseTmpl = template.Must(template.New("base.py").Parse(baseSettingsTemplate))

// RenderBaseSettings renders base.py for the given model.
func RenderBaseSettings(m SettingsModel) (string, error) {
	var buf bytes.Buffer
	if err := baseTmpl.Execute(&buf, m); err != nil {
		return "", errors.Wrap(errors.ESettingsFailed, "failed to render base settings", err)
	}
	return buf.String(), nil
}

// WriteSettings replaces the generator's monolithic config/settings.py with the
// config/settings/ package: __init__.py, base.py, dev.py, prod.py.
// The monolithic file must exist (generator postcondition) and is removed.
func WriteSettings(fsys fs.FS, projectDir string, m SettingsModel) error {
	configDir := filepath.Join(projectDir, "config")
	monolith := filepath.Join(configDir, "settings.py")

	if _, err := fsys.Stat(monolith); err != nil {
		if os.IsNotExist(err) {
			return errors.New(errors.ESkeletonInvalid, "config/settings.py not found; generator output is incomplete")
		}
		return errors.Wrap(errors.ESettingsFailed, "failed to check config/settings.py", err)
	}

	settingsDir := filepath.Join(configDir, "settings")
	if err := fsys.MkdirAll(settingsDir, 0755); err != nil {
		return errors.Wrap(errors.ESettingsFailed, "failed to create settings package", err)
	}

	base, err := RenderBaseSettings(m)
	if err != nil {
		return err
	}

	files := []struct {
		name    string
		content string
	}{
		{"__init__.py", ""},
		{"base.py", base},
		{"dev.py", DevSettings},
		{"prod.py", ProdSettings},
	}
	for _, f := range files {
		path := filepath.Join(settingsDir, f.name)
		if err := fs.WriteFileAtomic(fsys, path, []byte(f.content), 0644); err != nil {
			return errors.Wrap(errors.ESettingsFailed, "failed to write "+f.name, err)
		}
	}

	if err := fsys.Remove(monolith); err != nil {
		return errors.Wrap(errors.ESettingsFailed, "failed to remove config/settings.py", err)
	}
	return nil
}
