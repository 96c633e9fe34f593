package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"unicode"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnv(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "run.env")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRun_PrintsThreeLines(t *testing.T) {
	for _, k := range []string{"RANDOM_FACTOR_MAX", "RANDOM_SYMBOL_MIN", "RANDOM_SYMBOL_MAX", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}

	var out bytes.Buffer
	require.NoError(t, run(&out, CLI{EnvFile: []string{writeEnv(t, "")}, LogLevel: "error"}))

	lines := strings.Split(strings.TrimSuffix(out.String(), "\n"), "\n")
	require.Len(t, lines, 3, "output: %q", out.String())

	for _, i := range []int{0, 2} {
		n, err := strconv.Atoi(lines[i])
		require.NoError(t, err, lines[i])
		assert.GreaterOrEqual(t, n, 1)
		assert.LessOrEqual(t, n, 10_000)
	}

	require.Equal(t, 1, utf8.RuneCountInString(lines[1]), "symbol line %q", lines[1])
	r, _ := utf8.DecodeRuneInString(lines[1])
	assert.GreaterOrEqual(t, int(r), 10_000)
	assert.Less(t, int(r), 100_000)
	assert.True(t, unicode.IsPrint(r))
}

func TestRun_InvalidConfigFails(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, CLI{EnvFile: []string{filepath.Join(t.TempDir(), "missing.env")}})
	require.Error(t, err)
	assert.Empty(t, out.String())
}

func TestRun_InvalidLogLevelFails(t *testing.T) {
	var out bytes.Buffer
	err := run(&out, CLI{EnvFile: []string{writeEnv(t, "")}, LogLevel: "loud"})
	require.Error(t, err)
	assert.Empty(t, out.String())
}
