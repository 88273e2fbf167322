package main

import (
	"bytes"
	"os"
	"testing"

	"go.uber.org/zap/zaptest"
)

func unsetenv(t *testing.T, keys ...string) {
	t.Helper()

	for _, key := range keys {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func TestRunResolvesDefaultsAgainstEnvironment(t *testing.T) {
	unsetenv(t, "CONVIG_FORMAT", "CONVIG_DEBUG", "CONVIG_DIAGNOSTICS", "DEBUG", "CONVIG_ENV", "APP_ENV", "CONVIG_TEST_HOSTS")
	t.Setenv("CONVIG_TEST_PORT", "9000")

	var out bytes.Buffer
	args := []string{
		"--default", "CONVIG_TEST_PORT=8080",
		"--default", "CONVIG_TEST_HOSTS=[a, b]",
		"-d", "CONVIG_TEST_DEBUG=false",
		"--set", "CONVIG_TEST_DEBUG=yes",
	}
	if err := run(args, &out, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	want := "CONVIG_TEST_PORT: 9000\nCONVIG_TEST_HOSTS:\n  - a\n  - b\nCONVIG_TEST_DEBUG: true\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestRunJSONWithoutEnvironment(t *testing.T) {
	unsetenv(t, "CONVIG_FORMAT", "CONVIG_USE_ENV", "CONVIG_SPLIT")
	t.Setenv("CONVIG_TEST_LIST", "ignored")

	var out bytes.Buffer
	args := []string{
		"--format", "json",
		"--no-env",
		"--split", ";",
		"-d", "CONVIG_TEST_LIST=[x]",
		"-s", "CONVIG_TEST_LIST=a;b",
	}
	if err := run(args, &out, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("run returned error: %v", err)
	}

	want := "{\n  \"CONVIG_TEST_LIST\": [\n    \"a\",\n    \"b\"\n  ]\n}\n"
	if out.String() != want {
		t.Fatalf("unexpected output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestRunErrors(t *testing.T) {
	unsetenv(t, "CONVIG_FORMAT")

	tests := []struct {
		name string
		args []string
	}{
		{name: "UnknownFlag", args: []string{"--bogus"}},
		{name: "BadFormat", args: []string{"--format", "toml", "-d", "a=1"}},
		{name: "NoDefaults", args: nil},
		{name: "BadDefault", args: []string{"-d", "novalue"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := run(tc.args, &bytes.Buffer{}, zaptest.NewLogger(t)); err == nil {
				t.Fatalf("expected error for %v", tc.args)
			}
		})
	}
}
