// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package client

import (
	"fmt"

	"github.com/strixun/edge-core/internal/config"
)

// productionURLPattern is the hard-coded fallback address of a fleet
// service when no explicit URL is configured.
const productionURLPattern = "https://%s.strixun.workers.dev"

// defaultLocalPort is used for localhost resolution when the caller does
// not name a port.
const defaultLocalPort = 8080

// ResolveServiceURL returns the base URL for one fleet service.
//
// Local-dev environments (test, development, dev, or unset) always
// resolve to localhost, taking precedence over the env-var override so a
// dev process can never accidentally reach production. Otherwise the
// override wins, then the hard-coded production address.
func ResolveServiceURL(serviceName, environment, envURL string, port int) string {
	if port <= 0 {
		port = defaultLocalPort
	}

	if (config.App{Environment: environment}).IsLocalDev() {
		return fmt.Sprintf("http://localhost:%d", port)
	}
	if envURL != "" {
		return envURL
	}
	return fmt.Sprintf(productionURLPattern, serviceName)
}
