// Package domain contains the core domain value types used by the gateway.
// These types represent the business concepts (caller credentials, reported
// coordinates) and are intentionally free of infrastructure concerns so they
// can be shared across packages.
package domain
