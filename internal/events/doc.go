// Package events is the change feed of the backend: the server publishes one
// Event per successful create, update or remove on a websocket at Path, and
// clients follow it with Watch.
//
// Delivery is best effort. A subscriber that falls more than a few dozen
// events behind misses the overflow, and nothing is replayed on reconnect.
package events
