package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func summaryTime(t *testing.T, value string) *time.Time {
	t.Helper()
	ts, err := time.Parse(time.RFC3339, value)
	require.NoError(t, err)
	return &ts
}

func TestWriteLSJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	summaries := []ProjectSummary{
		{
			Name:          "blog",
			Path:          "/work/blog",
			CreatedAt:     summaryTime(t, "2026-03-14T12:00:00Z"),
			PythonVersion: "3.12.4",
			Docker:        true,
			Present:       true,
		},
	}

	require.NoError(t, WriteLSJSON(&buf, summaries))

	var env LSJSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	assert.Equal(t, "1.0", env.SchemaVersion)
	require.Len(t, env.Data, 1)
	assert.Equal(t, "blog", env.Data[0].Name)
	assert.True(t, env.Data[0].Docker)
}

func TestWriteLSJSONEmptyIsArray(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLSJSON(&buf, nil))
	assert.Contains(t, buf.String(), `"data": []`)
}

func TestWriteLSHumanTable(t *testing.T) {
	var buf bytes.Buffer
	now := time.Date(2026, 3, 14, 14, 0, 0, 0, time.UTC)
	summaries := []ProjectSummary{
		{Name: "blog", Path: "/work/blog", CreatedAt: summaryTime(t, "2026-03-14T12:00:00Z"),
			PythonVersion: "3.12.4", Present: true},
		{Name: "shop", Path: "/work/shop", CreatedAt: summaryTime(t, "2026-03-13T12:00:00Z"),
			PythonVersion: "3.11.9", Present: false},
	}

	require.NoError(t, WriteLSHuman(&buf, summaries, now))

	out := buf.String()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "NAME"))
	assert.Contains(t, lines[1], "2 hours ago")
	assert.Contains(t, lines[2], "/work/shop (missing)")
	assert.Contains(t, lines[2], "1 day ago")
}

func TestWriteLSHumanEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteLSHuman(&buf, nil, time.Now()))
	assert.Contains(t, buf.String(), "no projects")
}

func TestFormatRelativeTime(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)
	tests := []struct {
		ago  time.Duration
		want string
	}{
		{30 * time.Second, "just now"},
		{time.Minute, "1 min ago"},
		{5 * time.Minute, "5 mins ago"},
		{time.Hour, "1 hour ago"},
		{26 * time.Hour, "1 day ago"},
		{40 * 24 * time.Hour, "2026-02-02"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, formatRelativeTime(now.Add(-tt.ago), now), tt.want)
	}
}
