package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCLI(t *testing.T, input string, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(context.Background(), args, strings.NewReader(input), &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func outputLines(out string) []string {
	return strings.Split(strings.TrimRight(out, "\n"), "\n")
}

func TestRunDefaults(t *testing.T) {
	input := "@cee:{\"event\":\"login\",\"user\":\"alice\"}\nplain text line\r\n@cee:[1,2]\n"
	out, _, err := runCLI(t, input)
	require.NoError(t, err)

	lines := outputLines(out)
	require.Len(t, lines, 3)
	assert.Equal(t, `{"msg":"@cee:{\"event\":\"login\",\"user\":\"alice\"}","parsesuccess":true,"$!":{"event":"login","user":"alice"}}`, lines[0])
	assert.Equal(t, `{"msg":"plain text line","parsesuccess":false,"$!":{"msg":"plain text line"}}`, lines[1])
	assert.Equal(t, `{"msg":"@cee:[1,2]","parsesuccess":false,"$!":{"msg":"[1,2]"}}`, lines[2])
}

func TestRunNestedFieldFlags(t *testing.T) {
	input := `{"log":"{\"message\":\"hi\",\"empty\":\"\"}","stream":"stdout"}` + "\n"
	out, _, err := runCLI(t, input,
		"-cookie=",
		"-message-field", "log",
		"-alt-message-field", "raw",
		"-compact",
		"-container", "$!parsed",
	)
	require.NoError(t, err)
	assert.Equal(t,
		`{"msg":"{\"log\":\"{\\\"message\\\":\\\"hi\\\",\\\"empty\\\":\\\"\\\"}\",\"stream\":\"stdout\"}","parsesuccess":true,"$!":{"parsed":{"stream":"stdout","message":"hi","raw":"{\"message\":\"hi\",\"empty\":\"\"}"}}}`,
		strings.TrimSpace(out))
}

func TestRunLocalContainer(t *testing.T) {
	out, _, err := runCLI(t, "@cee:{\"a\":1}\n", "-container", "$.tmp")
	require.NoError(t, err)
	assert.Equal(t, `{"msg":"@cee:{\"a\":1}","parsesuccess":true,"$.":{"tmp":{"a":1}}}`, strings.TrimSpace(out))
}

func TestRunCompactedToEmpty(t *testing.T) {
	out, _, err := runCLI(t, "@cee:{\"a\":\"\"}\n", "-compact")
	require.NoError(t, err)
	assert.Equal(t, `{"msg":"@cee:{\"a\":\"\"}","parsesuccess":true}`, strings.TrimSpace(out))
}

func TestRunConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "logjson.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cookie: \"@json:\"\ncompact: true\nworkers: 2\n"), 0o600))

	out, _, err := runCLI(t, "@json:{\"a\":\"\",\"b\":1}\n", "-config", path)
	require.NoError(t, err)
	assert.Equal(t, `{"msg":"@json:{\"a\":\"\",\"b\":1}","parsesuccess":true,"$!":{"b":1}}`, strings.TrimSpace(out))

	out, _, err = runCLI(t, "@json:{\"a\":\"\",\"b\":1}\n", "-config", path, "-compact=false")
	require.NoError(t, err)
	assert.Contains(t, out, `"$!":{"a":"","b":1}`, "flags override the config file")
}

func TestRunInputFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "input.log")

	var sb strings.Builder
	for i := 0; i < batchSize+10; i++ {
		fmt.Fprintf(&sb, "@cee:{\"i\":%d}\n", i)
	}
	require.NoError(t, os.WriteFile(path, []byte(sb.String()), 0o600))

	out, _, err := runCLI(t, "", "-input", path, "-workers", "3")
	require.NoError(t, err)

	lines := outputLines(out)
	require.Len(t, lines, batchSize+10)
	for i, line := range lines {
		assert.Contains(t, line, fmt.Sprintf(`"$!":{"i":%d}`, i), "order is preserved")
	}
}

func TestRunUUIDAndStats(t *testing.T) {
	out, errOut, err := runCLI(t, "@cee:{}\nline\n", "-uuid", "-stats")
	require.NoError(t, err)

	lines := outputLines(out)
	require.Len(t, lines, 2)
	assert.Regexp(t, `"uuid":"[0-9A-F]{32}"`, lines[0])
	assert.Contains(t, errOut, "2 total (1 structured, 1 unstructured")
}

func TestRunErrors(t *testing.T) {
	t.Run("InvalidContainer", func(t *testing.T) {
		_, _, err := runCLI(t, "", "-container", "nowhere")
		assert.ErrorContains(t, err, "invalid container name")
	})

	t.Run("InvalidLogLevel", func(t *testing.T) {
		_, _, err := runCLI(t, "", "-log-level", "loud")
		assert.ErrorContains(t, err, "invalid log level")
	})

	t.Run("MissingInput", func(t *testing.T) {
		_, _, err := runCLI(t, "", "-input", filepath.Join(t.TempDir(), "missing.log"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("MissingExplicitEnvFile", func(t *testing.T) {
		_, _, err := runCLI(t, "", "-env", filepath.Join(t.TempDir(), "missing.env"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("UnknownFlag", func(t *testing.T) {
		_, errOut, err := runCLI(t, "", "-bogus")
		assert.Error(t, err)
		assert.Contains(t, errOut, "flag provided but not defined")
	})

	t.Run("Help", func(t *testing.T) {
		_, _, err := runCLI(t, "", "-h")
		assert.ErrorIs(t, err, flag.ErrHelp)
	})
}

func TestRunEnvFile(t *testing.T) {
	// register cleanup for variables the env file will set
	t.Setenv("LOGJSON_LOG_LEVEL", "unset")
	require.NoError(t, os.Unsetenv("LOGJSON_LOG_LEVEL"))

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("LOGJSON_LOG_LEVEL=chatty\n"), 0o600))

	_, _, err := runCLI(t, "", "-env", path)
	assert.ErrorContains(t, err, `invalid log level "chatty"`)

	_, _, err = runCLI(t, "", "-env", path, "-log-level", "debug")
	assert.NoError(t, err, "flags win over the environment")
}

func TestRunWorkersFromEnvironment(t *testing.T) {
	t.Setenv("LOGJSON_WORKERS", "many")
	_, _, err := runCLI(t, "")
	assert.ErrorContains(t, err, "LOGJSON_WORKERS")

	_, _, err = runCLI(t, "", "-workers", "2")
	assert.NoError(t, err)
}
