package adb

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"gopkg.in/yaml.v2"
)

// DefaultServerAddr is the adb server's default listen address (spec.md §6).
const DefaultServerAddr = "127.0.0.1:5037"

// DefaultReadTimeout matches spec.md §4.2/§5: "A read timeout (default 3 s)
// is applied to every connection".
const DefaultReadTimeout = 3 * time.Second

// ServerConfig configures how an Adb client reaches the adb server and
// recovers if it isn't running (spec.md §4.2/§6).
type ServerConfig struct {
	// Host defaults to "127.0.0.1".
	Host string
	// Port defaults to 5037.
	Port int
	// PathToAdb overrides PATH lookup for the adb binary used to run
	// "start-server". ADBUTILS_ADB_PATH, if set,
	// takes precedence over this field.
	PathToAdb string
	// ReadTimeout overrides DefaultReadTimeout for every connection opened
	// through this config. Zero means DefaultReadTimeout.
	ReadTimeout time.Duration
}

func (c ServerConfig) addr() string {
	host := c.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := c.Port
	if port == 0 {
		port = 5037
	}
	return fmt.Sprintf("%s:%d", host, port)
}

func (c ServerConfig) readTimeout() time.Duration {
	if c.ReadTimeout > 0 {
		return c.ReadTimeout
	}
	return DefaultReadTimeout
}

// resolveAdbPath implements spec.md §4.2/§6's lookup order: ADBUTILS_ADB_PATH
// env var, then config.PathToAdb, then PATH.
func (c ServerConfig) resolveAdbPath() (string, error) {
	if p := os.Getenv("ADBUTILS_ADB_PATH"); p != "" {
		return p, nil
	}
	if c.PathToAdb != "" {
		return c.PathToAdb, nil
	}
	return exec.LookPath("adb")
}

// yamlServerConfig mirrors ServerConfig's exported fields for optional
// config-file loading; kept distinct so ServerConfig itself needn't carry
// yaml struct tags that would bleed into godoc for API consumers who never
// touch YAML.
type yamlServerConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	PathToAdb   string `yaml:"path_to_adb"`
	ReadTimeout string `yaml:"read_timeout"`
}

// LoadServerConfig reads a YAML file (e.g. ".adbkit.yaml") into a
// ServerConfig. This is additive convenience on top of spec.md's
// ServerConfig{}; a caller who never calls it gets exactly the zero-value
// defaults spec.md §4.2/§6 describes.
func LoadServerConfig(path string) (ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ServerConfig{}, err
	}
	var y yamlServerConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return ServerConfig{}, err
	}
	cfg := ServerConfig{Host: y.Host, Port: y.Port, PathToAdb: y.PathToAdb}
	if y.ReadTimeout != "" {
		d, err := time.ParseDuration(y.ReadTimeout)
		if err != nil {
			return ServerConfig{}, err
		}
		cfg.ReadTimeout = d
	}
	return cfg, nil
}
