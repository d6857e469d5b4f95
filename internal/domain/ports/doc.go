// Package ports defines the interfaces the services depend on, so persistence
// can be replaced by mocks in unit tests.
package ports
