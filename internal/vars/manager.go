package vars

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math/big"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/earthfall/RestClient/internal/errdef"
)

const DefaultEnvironment = "default"

// Manager holds the environments loaded from http-client.env.json style
// files. It is effectively immutable after loading, so the sequential runner
// can share one instance across every request.
type Manager struct {
	environments map[string]*environment
	dotenv       map[string]string
}

type environment struct {
	variables map[string]json.RawMessage
	ssl       *SSLConfig
}

// SSLConfig mirrors the per-environment "ssl_config" section of the env file.
type SSLConfig struct {
	ClientCertificate     *CertificateRef `json:"client_certificate,omitempty"`
	ClientCertificateKey  *CertificateRef `json:"client_certificate_key,omitempty"`
	VerifyHostCertificate *bool           `json:"verify_host_certificate,omitempty"`
}

// CertificateRef accepts both spellings the format allows: a bare path string
// or an object with path and format fields.
type CertificateRef struct {
	Path   string `json:"path"`
	Format string `json:"format,omitempty"`
}

func (c *CertificateRef) UnmarshalJSON(data []byte) error {
	var path string
	if err := json.Unmarshal(data, &path); err == nil {
		c.Path = path
		return nil
	}
	type alias CertificateRef
	var detailed alias
	if err := json.Unmarshal(data, &detailed); err != nil {
		return err
	}
	*c = CertificateRef(detailed)
	return nil
}

func NewManager() *Manager {
	return &Manager{environments: map[string]*environment{}}
}

const sslConfigKey = "ssl_config"

// LoadEnvFile merges the environments of one file into the manager. Later
// files win per variable, which is how the env file pair has always layered.
// A missing file is not an error; callers probe for the default names.
func (m *Manager) LoadEnvFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errdef.Wrap(errdef.CodeFilesystem, err, "read env file %s", path)
	}

	var file map[string]map[string]json.RawMessage
	if err := json.Unmarshal(data, &file); err != nil {
		return errdef.Wrap(errdef.CodeEnv, err, "parse env file %s", path)
	}

	for name, entries := range file {
		env := m.environments[name]
		if env == nil {
			env = &environment{variables: map[string]json.RawMessage{}}
			m.environments[name] = env
		}
		for key, value := range entries {
			if key == sslConfigKey {
				var ssl SSLConfig
				if err := json.Unmarshal(value, &ssl); err != nil {
					return errdef.Wrap(errdef.CodeEnv, err, "parse ssl config for %s", name)
				}
				env.ssl = &ssl
				continue
			}
			env.variables[key] = value
		}
	}
	return nil
}

// LoadDotEnv overlays a .env file as the lowest-priority lookup tier shared
// by every environment.
func (m *Manager) LoadDotEnv(path string) error {
	values, err := readDotEnv(path)
	if err != nil {
		return err
	}
	if m.dotenv == nil {
		m.dotenv = map[string]string{}
	}
	for k, v := range values {
		m.dotenv[k] = v
	}
	return nil
}

func (m *Manager) SSLConfig(envName string) *SSLConfig {
	if env := m.environments[envName]; env != nil {
		return env.ssl
	}
	return nil
}

// ResolveVariable looks a name up in one environment. JSON strings, numbers,
// and bools stringify; arrays and objects do not resolve.
func (m *Manager) ResolveVariable(envName, name string) (string, bool) {
	if env := m.environments[envName]; env != nil {
		if raw, ok := env.variables[name]; ok {
			if value, ok := scalarString(raw); ok {
				return value, true
			}
		}
	}
	if value, ok := m.dotenv[name]; ok {
		return value, true
	}
	return "", false
}

var templatePattern = regexp.MustCompile(`\{\{([^}]+)\}\}`)

// ResolveString substitutes every {{VAR}} occurrence. Unknown variables stay
// in place untouched, so a half-configured environment still produces a
// request the server can reject visibly instead of one with empty holes.
func (m *Manager) ResolveString(envName, text string) string {
	return templatePattern.ReplaceAllStringFunc(text, func(match string) string {
		sub := templatePattern.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		name := strings.TrimSpace(sub[1])
		if name == "" {
			return match
		}
		if strings.HasPrefix(name, "$") {
			if value, ok := resolveDynamic(name); ok {
				return value
			}
		}
		if value, ok := m.ResolveVariable(envName, name); ok {
			return value
		}
		return match
	})
}

func scalarString(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return fmt.Sprintf("%t", b), true
	}
	return "", false
}

func resolveDynamic(name string) (string, bool) {
	switch strings.ToLower(name) {
	case "$uuid", "$guid":
		return uuid.NewString(), true
	case "$timestamp":
		return fmt.Sprintf("%d", time.Now().Unix()), true
	case "$timestampiso8601":
		return time.Now().UTC().Format(time.RFC3339), true
	case "$randomint":
		n, _ := rand.Int(rand.Reader, big.NewInt(1<<31))
		return n.String(), true
	default:
		return "", false
	}
}
