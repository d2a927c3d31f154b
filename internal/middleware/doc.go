// Package middleware holds the chi middleware stack of the dashboard server:
// request IDs, access logging, panic recovery, rate limiting, deadlines, CORS,
// security headers and OpenTelemetry spans with HTTP metrics.
package middleware
