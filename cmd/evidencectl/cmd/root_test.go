package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/evidencekit/evidence/config"
)

const testKeyHex = "000102030405060708090a0b0c0d0e0f"

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestGenerateDecode(t *testing.T) {
	t.Setenv(config.EnvKeyHex, "")
	dir := t.TempDir()
	metricsFile := filepath.Join(t.TempDir(), "evidence.prom")

	out, _, err := run(t, "generate", "--dir", dir, "--key", testKeyHex,
		"--type", "device", "--device-id", "host1", "--chunk", "ping", "--chunk", "pong")
	require.NoError(t, err)

	fields := strings.Fields(out)
	require.Len(t, fields, 3)
	name := fields[0]
	assert.Equal(t, "device", fields[1])
	assert.FileExists(t, filepath.Join(dir, name))

	out, _, err = run(t, "decode", "--dir", dir, "--key", testKeyHex, "--metrics-file", metricsFile, name)
	require.NoError(t, err)

	var decoded decodedRecord
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, name, decoded.Name)
	assert.Equal(t, "device", decoded.Type)
	assert.Equal(t, "0x0240", decoded.TypeID)
	assert.Equal(t, "pingpong", decoded.Content)
	assert.Equal(t, "host1", decoded.Info["device_id"])

	prom, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `evidence_records_parsed_total{type="device"} 1`)
}

func TestGenerateCall(t *testing.T) {
	t.Setenv(config.EnvKeyHex, testKeyHex)
	dir := t.TempDir()

	out, _, err := run(t, "generate", "--dir", dir, "--type", "call",
		"--set", "callee=alice", "--set", "caller=bob", "--set", "channel=2", "--set", "incoming=true")
	require.NoError(t, err)
	name := strings.Fields(out)[0]

	out, _, err = run(t, "decode", "--dir", dir, name)
	require.NoError(t, err)

	var decoded decodedRecord
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "call", decoded.Type)
	assert.Equal(t, "alice", decoded.Info["callee"])
	assert.Equal(t, "bob", decoded.Info["caller"])
	assert.Equal(t, 2, decoded.Info["channel"])
	assert.Equal(t, true, decoded.Info["incoming"])
}

func TestDecodeWrongKey(t *testing.T) {
	t.Setenv(config.EnvKeyHex, "")
	dir := t.TempDir()

	out, _, err := run(t, "generate", "--dir", dir, "--key", testKeyHex, "--type", "info", "--text", "note")
	require.NoError(t, err)
	name := strings.Fields(out)[0]

	_, stderr, err := run(t, "decode", "--dir", dir, "--key", strings.Repeat("ff", 16), name, "missing")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 of 2 records failed")
	assert.Contains(t, stderr, "mismatching version")
}

func TestGenerateRequiresKey(t *testing.T) {
	t.Setenv(config.EnvKeyHex, "")
	_, _, err := run(t, "generate", "--dir", t.TempDir(), "--type", "device")
	assert.Error(t, err)
}

func TestGenerateRejectsKeyForSuite(t *testing.T) {
	t.Setenv(config.EnvKeyHex, "")
	_, _, err := run(t, "generate", "--dir", t.TempDir(), "--key", testKeyHex, "--cipher", "aes-xts", "--type", "device")
	assert.Error(t, err)
}

func TestTypes(t *testing.T) {
	t.Setenv(config.EnvKeyHex, "")
	out, _, err := run(t, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "0x0140")
	assert.Contains(t, out, "call")
	assert.Contains(t, out, "device")
	assert.Contains(t, out, "info")
}

func TestApplyFields(t *testing.T) {
	info := map[string]any{}
	require.NoError(t, applyFields(info, []string{"channel=3", "incoming=false", "callee=alice"}))
	assert.Equal(t, uint32(3), info["channel"])
	assert.Equal(t, false, info["incoming"])
	assert.Equal(t, "alice", info["callee"])

	assert.Error(t, applyFields(info, []string{"novalue"}))
	assert.Error(t, applyFields(info, []string{"=x"}))
}
