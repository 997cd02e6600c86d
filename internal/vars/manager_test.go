package vars

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestResolveStringSubstitutesVariables(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "http-client.env.json", `{
  "dev": {"API_URL": "https://api.example.com", "VERSION": "v1", "PORT": 8080, "DEBUG": true}
}`)

	m := NewManager()
	if err := m.LoadEnvFile(path); err != nil {
		t.Fatalf("load env: %v", err)
	}

	if got := m.ResolveString("dev", "{{API_URL}}/{{VERSION}}/users"); got != "https://api.example.com/v1/users" {
		t.Fatalf("unexpected substitution %q", got)
	}
	if got, ok := m.ResolveVariable("dev", "PORT"); !ok || got != "8080" {
		t.Fatalf("numbers should stringify, got %q %v", got, ok)
	}
	if got, ok := m.ResolveVariable("dev", "DEBUG"); !ok || got != "true" {
		t.Fatalf("bools should stringify, got %q %v", got, ok)
	}
}

func TestUnknownVariablePassesThrough(t *testing.T) {
	m := NewManager()
	if got := m.ResolveString("dev", "{{UNKNOWN}}/users"); got != "{{UNKNOWN}}/users" {
		t.Fatalf("unknown variables must remain intact, got %q", got)
	}
}

func TestLaterEnvFileWinsPerVariable(t *testing.T) {
	dir := t.TempDir()
	private := writeFile(t, dir, "http-client.private.env.json", `{"dev": {"TOKEN": "secret", "HOST": "private"}}`)
	public := writeFile(t, dir, "http-client.env.json", `{"dev": {"HOST": "public"}}`)

	m := NewManager()
	if err := m.LoadEnvFile(private); err != nil {
		t.Fatalf("load private: %v", err)
	}
	if err := m.LoadEnvFile(public); err != nil {
		t.Fatalf("load public: %v", err)
	}

	if got, _ := m.ResolveVariable("dev", "HOST"); got != "public" {
		t.Fatalf("later file should win per key, got %q", got)
	}
	if got, _ := m.ResolveVariable("dev", "TOKEN"); got != "secret" {
		t.Fatalf("unrelated keys must survive the merge, got %q", got)
	}
}

func TestMissingEnvFileIsNotAnError(t *testing.T) {
	m := NewManager()
	if err := m.LoadEnvFile(filepath.Join(t.TempDir(), "nope.json")); err != nil {
		t.Fatalf("missing file should be ignored: %v", err)
	}
}

func TestSSLConfigSection(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "env.json", `{
  "dev": {
    "API_URL": "https://x",
    "ssl_config": {"client_certificate": "cert.pem", "verify_host_certificate": false}
  }
}`)

	m := NewManager()
	if err := m.LoadEnvFile(path); err != nil {
		t.Fatalf("load env: %v", err)
	}
	ssl := m.SSLConfig("dev")
	if ssl == nil {
		t.Fatalf("expected ssl config")
	}
	if ssl.ClientCertificate == nil || ssl.ClientCertificate.Path != "cert.pem" {
		t.Fatalf("bare string certificate ref not accepted: %+v", ssl.ClientCertificate)
	}
	if ssl.VerifyHostCertificate == nil || *ssl.VerifyHostCertificate {
		t.Fatalf("verify flag lost")
	}
	if _, ok := m.ResolveVariable("dev", "ssl_config"); ok {
		t.Fatalf("ssl_config must not leak into variables")
	}
}

func TestDotEnvOverlayIsLowestPriority(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, "env.json", `{"dev": {"HOST": "from-json"}}`)
	dotPath := writeFile(t, dir, ".env", "HOST=from-dotenv\nEXTRA=overlay\n")

	m := NewManager()
	if err := m.LoadEnvFile(envPath); err != nil {
		t.Fatalf("load env: %v", err)
	}
	if err := m.LoadDotEnv(dotPath); err != nil {
		t.Fatalf("load dotenv: %v", err)
	}

	if got, _ := m.ResolveVariable("dev", "HOST"); got != "from-json" {
		t.Fatalf("env file must shadow dotenv, got %q", got)
	}
	if got, _ := m.ResolveVariable("dev", "EXTRA"); got != "overlay" {
		t.Fatalf("dotenv values should fill gaps, got %q", got)
	}
}

func TestDynamicVariables(t *testing.T) {
	m := NewManager()
	uuidRe := regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)
	if got := m.ResolveString("dev", "{{$uuid}}"); !uuidRe.MatchString(got) {
		t.Fatalf("expected uuid, got %q", got)
	}
	if got := m.ResolveString("dev", "{{$timestamp}}"); got == "{{$timestamp}}" || strings.Contains(got, "{{") {
		t.Fatalf("timestamp not resolved: %q", got)
	}
}
