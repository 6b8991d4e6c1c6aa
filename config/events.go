package config

import "strings"

// EventsConfig configures the RabbitMQ consumer that receives completion events
// published by the worker as an alternative to the HTTP callback.
type EventsConfig struct {
	URL         string `env:"URL"          envDefault:""`
	Queue       string `env:"QUEUE"        envDefault:"package.process.events"`
	Prefetch    int    `env:"PREFETCH"     envDefault:"16"`
	ConsumerTag string `env:"CONSUMER_TAG" envDefault:"tng-gtk-common"`
}

// Sanitize trims values and clamps prefetch.
func (e *EventsConfig) Sanitize() {
	e.URL = strings.TrimSpace(e.URL)
	e.Queue = strings.TrimSpace(e.Queue)
	if e.Queue == "" {
		e.Queue = "package.process.events"
	}
	if e.Prefetch < 1 {
		e.Prefetch = 1
	}
}

// IsConfigured reports whether a broker URL was supplied.
func (e *EventsConfig) IsConfigured() bool {
	return e.URL != ""
}
