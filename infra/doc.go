// Package infra holds the adapters behind the core interfaces: survey
// dataset loaders, metrics sinks, the MQTT client, Sentry monitoring and the
// zerolog logger. Core packages never import infra.
package infra
