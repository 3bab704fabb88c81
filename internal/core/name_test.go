package core

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/djboot/djboot/internal/errors"
)

func TestValidateProjectName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantCode errors.Code
	}{
		{"simple", "blog", ""},
		{"underscore", "my_blog", ""},
		{"leading underscore", "_internal", ""},
		{"mixed case", "MyBlog", ""},
		{"digits after first", "blog2", ""},
		{"empty", "", errors.EEmptyName},
		{"leading digit", "2blog", errors.EInvalidName},
		{"hyphen", "my-blog", errors.EInvalidName},
		{"space", "my blog", errors.EInvalidName},
		{"dot", "my.blog", errors.EInvalidName},
		{"unicode", "блог", errors.EInvalidName},
		{"reserved config", "config", errors.EInvalidName},
		{"reserved django", "django", errors.EInvalidName},
		{"reserved test", "test", errors.EInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProjectName(tt.input)
			if tt.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			assert.Equal(t, tt.wantCode, errors.GetCode(err))
		})
	}
}

func TestDockerName(t *testing.T) {
	assert.Equal(t, "my_blog", DockerName("my_blog"))
	assert.Equal(t, "myblog", DockerName("MyBlog"))
}

func TestDatabaseName(t *testing.T) {
	assert.Equal(t, "blog_db", DatabaseName("blog"))
	assert.Equal(t, "my_blog_db", DatabaseName("my_blog"))
}
