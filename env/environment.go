// SPDX-FileCopyrightText: 2025 OAuth2 Policy Go contributors
//
// SPDX-License-Identifier: Apache-2.0

package env

import (
	"os"
	"strings"
)

// Platform holds the type string of the platform the gateway runs on
type Platform string

const (
	kubernetes Platform = "KUBERNETES"
	unknown    Platform = "UNKNOWN"
)

func getPlatform() Platform {
	switch {
	case strings.TrimSpace(os.Getenv("KUBERNETES_SERVICE_HOST")) != "":
		return kubernetes
	default:
		return unknown
	}
}
