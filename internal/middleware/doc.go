// Package middleware provides HTTP middleware for the lrcplayer server.
//
// It includes:
//   - Request IDs (X-Request-ID) and W3C Extended Log Format access logs
//   - Prometheus request metrics labelled by route template
//   - Gzip compression for JSON and text responses
package middleware
