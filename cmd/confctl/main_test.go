package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonwraymond/layerconf/config"
)

func writeConfig(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, config.DefaultSourceDir), 0o755); err != nil {
		t.Fatal(err)
	}
	for name, body := range files {
		path := filepath.Join(dir, config.DefaultSourceDir, name)
		if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--dir", dir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

var sampleFiles = map[string]string{
	"default.properties": "confctl.url=http://default\nconfctl.retries=3\nconfctl.verbose=TRUE\ndb.password=from-file\n",
	"qa.yaml":            "confctl:\n  url: http://qa\n",
}

func TestGet_FromFile(t *testing.T) {
	dir := writeConfig(t, sampleFiles)

	out, err := run(t, dir, "get", "--explain", "confctl.url")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != "http://default\t(file)\n" {
		t.Errorf("out = %q", out)
	}
}

func TestGet_EnvironmentFileViaDefine(t *testing.T) {
	dir := writeConfig(t, sampleFiles)

	out, err := run(t, dir, "-D", "env=qa", "get", "confctl.url")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != "http://qa\n" {
		t.Errorf("out = %q", out)
	}
}

func TestGet_DefineWins(t *testing.T) {
	dir := writeConfig(t, sampleFiles)
	t.Setenv("CONFCTL_URL", "http://env")

	out, err := run(t, dir, "-D", "confctl.url=http://flag", "get", "--explain", "confctl.url")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != "http://flag\t(override)\n" {
		t.Errorf("out = %q", out)
	}
}

func TestGet_EnvironmentVariable(t *testing.T) {
	dir := writeConfig(t, sampleFiles)
	t.Setenv("CONFCTL_URL", "http://env")

	out, err := run(t, dir, "get", "--explain", "confctl.url")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != "http://env\t(environment)\n" {
		t.Errorf("out = %q", out)
	}
}

func TestGet_EnvFileMergedBeforeDefines(t *testing.T) {
	dir := writeConfig(t, sampleFiles)
	envFile := filepath.Join(t.TempDir(), "ci.env")
	if err := os.WriteFile(envFile, []byte("env=qa\nconfctl.retries=7\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, dir, "--env-file", envFile, "-D", "confctl.retries=9", "get", "confctl.retries")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != "9\n" {
		t.Errorf("retries = %q, want define to win over env file", out)
	}

	out, err = run(t, dir, "--env-file", envFile, "get", "confctl.url")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != "http://qa\n" {
		t.Errorf("url = %q, want env file to select qa", out)
	}
}

func TestGet_MissingKey(t *testing.T) {
	dir := writeConfig(t, sampleFiles)

	_, err := run(t, dir, "get", "confctl.nope")
	if !errors.Is(err, config.ErrKeyNotFound) {
		t.Fatalf("err = %v, want ErrKeyNotFound", err)
	}
}

func TestGet_InvalidDefine(t *testing.T) {
	dir := writeConfig(t, sampleFiles)

	_, err := run(t, dir, "-D", "novalue", "get", "confctl.url")
	if err == nil || !strings.Contains(err.Error(), "want key=value") {
		t.Fatalf("err = %v", err)
	}
}

func TestGet_SensitiveRedactedUnlessRevealed(t *testing.T) {
	dir := writeConfig(t, sampleFiles)

	out, err := run(t, dir, "get", "db.password")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != "[REDACTED]\n" {
		t.Errorf("out = %q", out)
	}

	out, err = run(t, dir, "get", "--reveal", "db.password")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != "from-file\n" {
		t.Errorf("revealed = %q", out)
	}
}

func TestGet_DirVault(t *testing.T) {
	dir := writeConfig(t, sampleFiles)
	secrets := t.TempDir()
	if err := os.WriteFile(filepath.Join(secrets, "db.password"), []byte("from-vault\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	out, err := run(t, dir, "--vault", "dir", "--vault-dir", secrets, "get", "--reveal", "--explain", "db.password")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if out != "from-vault\t(secret)\n" {
		t.Errorf("out = %q", out)
	}
}

func TestHealth_DirVaultWithRateLimit(t *testing.T) {
	dir := writeConfig(t, sampleFiles)
	secrets := t.TempDir()

	out, err := run(t, dir, "--vault", "dir", "--vault-dir", secrets, "--vault-rate", "5", "health")
	if err != nil {
		t.Fatalf("health: %v\n%s", err, out)
	}
	if !strings.Contains(out, "secrets\thealthy\tvault reachable") {
		t.Errorf("output:\n%s", out)
	}
}

func TestGet_UnknownVault(t *testing.T) {
	dir := writeConfig(t, sampleFiles)

	if _, err := run(t, dir, "--vault", "hsm", "get", "confctl.url"); err == nil {
		t.Fatal("expected error for unknown vault")
	}
}

func TestGetInt(t *testing.T) {
	dir := writeConfig(t, sampleFiles)

	out, err := run(t, dir, "get-int", "confctl.retries")
	if err != nil {
		t.Fatalf("get-int: %v", err)
	}
	if out != "3\n" {
		t.Errorf("out = %q", out)
	}

	if _, err := run(t, dir, "get-int", "confctl.url"); !errors.Is(err, config.ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}

	out, err = run(t, dir, "get-int", "--default", "11", "confctl.nope")
	if err != nil {
		t.Fatalf("get-int --default: %v", err)
	}
	if out != "11\n" {
		t.Errorf("default = %q", out)
	}
}

func TestGetBool(t *testing.T) {
	dir := writeConfig(t, sampleFiles)

	out, err := run(t, dir, "get-bool", "confctl.verbose")
	if err != nil {
		t.Fatalf("get-bool: %v", err)
	}
	if out != "true\n" {
		t.Errorf("out = %q", out)
	}

	out, err = run(t, dir, "get-bool", "--default", "confctl.nope")
	if err != nil {
		t.Fatalf("get-bool --default: %v", err)
	}
	if out != "true\n" {
		t.Errorf("default = %q", out)
	}
}

func TestEnvCommand(t *testing.T) {
	dir := writeConfig(t, sampleFiles)

	out, err := run(t, dir, "-D", "env=qa", "env")
	if err != nil {
		t.Fatalf("env: %v", err)
	}
	for _, want := range []string{"environment: qa\n", "loaded: qa\n", "source: config/default.properties\n", "source: config/qa.yaml\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSensitiveCommand(t *testing.T) {
	out, err := run(t, t.TempDir(), "sensitive", "db.password", "app.url")
	if err != nil {
		t.Fatalf("sensitive: %v", err)
	}
	if out != "db.password\ttrue\napp.url\tfalse\n" {
		t.Errorf("out = %q", out)
	}
}

func TestKeysCommand(t *testing.T) {
	dir := writeConfig(t, sampleFiles)

	out, err := run(t, dir, "keys")
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 5 {
		t.Fatalf("got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "KEY") {
		t.Errorf("header = %q", lines[0])
	}
	if strings.Contains(out, "from-file") {
		t.Error("sensitive value printed in clear")
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Error("sensitive value not redacted")
	}
}

func TestHealthCommand(t *testing.T) {
	dir := writeConfig(t, sampleFiles)

	out, err := run(t, dir, "health")
	if err != nil {
		t.Fatalf("health: %v\n%s", err, out)
	}
	for _, want := range []string{"config\thealthy", "secrets\thealthy", "overall\thealthy"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
