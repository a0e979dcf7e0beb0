// SPDX-FileCopyrightText: 2025 OAuth2 Policy Go contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package env loads the configuration of the OAuth2 policy from a YAML file and the environment.
package env

import (
	"bytes"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv          = "OAUTH2_POLICY_CONFIG_PATH"
	propagateAuthHeaderEnv = "OAUTH2_POLICY_PROPAGATE_AUTH_HEADER"
	realmEnv               = "OAUTH2_POLICY_REALM"
	logLevelEnv            = "OAUTH2_POLICY_LOG_LEVEL"

	defaultK8sConfigPath = "/etc/secrets/oauth2-policy/config.yaml"
	defaultRealm         = "gateway"
	defaultLogLevel      = "info"
)

// ErrInvalidConfig is returned for configuration files and variables which cannot be applied
var ErrInvalidConfig = errors.New("invalid oauth2 policy configuration")

// PolicyConfig is the configuration of the OAuth2 policy
type PolicyConfig struct {
	// PropagateAuthHeader keeps the Authorization header on the request passed upstream. Default: true
	PropagateAuthHeader bool `yaml:"propagateAuthHeader"`
	// Realm is announced in the WWW-Authenticate header of 401 responses. Default: gateway
	Realm string `yaml:"realm"`
	// LogLevel is one of the zap levels (debug, info, warn, error, ...). Default: info
	LogLevel string `yaml:"logLevel"`
}

// DefaultPolicyConfig returns the configuration used when nothing is configured
func DefaultPolicyConfig() *PolicyConfig {
	return &PolicyConfig{
		PropagateAuthHeader: true,
		Realm:               defaultRealm,
		LogLevel:            defaultLogLevel,
	}
}

// ParsePolicyConfig parses the policy configuration from the file referenced by OAUTH2_POLICY_CONFIG_PATH.
// If the variable is not set, the platform default is used: on Kubernetes the mounted secret at
// /etc/secrets/oauth2-policy/config.yaml if it exists, nothing otherwise.
// OAUTH2_POLICY_PROPAGATE_AUTH_HEADER, OAUTH2_POLICY_REALM and OAUTH2_POLICY_LOG_LEVEL override file values.
func ParsePolicyConfig() (*PolicyConfig, error) {
	config := DefaultPolicyConfig()

	path, explicit := os.LookupEnv(configPathEnv)
	if !explicit && getPlatform() == kubernetes {
		path = defaultK8sConfigPath
	}
	if path != "" {
		err := readConfigFile(path, config)
		if err != nil && (explicit || !errors.Is(err, os.ErrNotExist)) {
			return nil, err
		}
	}

	if err := applyEnvOverrides(config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadPolicyConfig reads the configuration from the YAML file at path, starting from the defaults.
// Environment variables are not taken into account.
func LoadPolicyConfig(path string) (*PolicyConfig, error) {
	config := DefaultPolicyConfig()
	if err := readConfigFile(path, config); err != nil {
		return nil, err
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks that all values can be applied
func (c *PolicyConfig) Validate() error {
	if strings.TrimSpace(c.Realm) == "" || strings.ContainsAny(c.Realm, "\"\\\r\n") {
		return errors.Wrapf(ErrInvalidConfig, "realm %q must be non-empty and must not contain quotes, backslashes or line breaks", c.Realm)
	}
	if _, err := zap.ParseAtomicLevel(c.LogLevel); err != nil {
		return errors.Wrapf(ErrInvalidConfig, "log level: %v", err)
	}
	return nil
}

func readConfigFile(path string, config *PolicyConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "cannot read policy config file %s", path)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(config); err != nil && !errors.Is(err, io.EOF) { // empty file keeps the defaults
		return errors.Wrapf(ErrInvalidConfig, "cannot parse %s: %v", path, err)
	}
	return nil
}

func applyEnvOverrides(config *PolicyConfig) error {
	if v, ok := os.LookupEnv(propagateAuthHeaderEnv); ok {
		propagate, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.Wrapf(ErrInvalidConfig, "%s=%q is not a boolean", propagateAuthHeaderEnv, v)
		}
		config.PropagateAuthHeader = propagate
	}
	if v, ok := os.LookupEnv(realmEnv); ok {
		config.Realm = v
	}
	if v, ok := os.LookupEnv(logLevelEnv); ok {
		config.LogLevel = strings.TrimSpace(v)
	}
	return nil
}
