package events

import (
	"net/url"
	"strings"
	"time"
)

// Path is where the backend serves the change feed
const Path = "/events"

// Operations carried by an Event
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpRemove = "remove"
)

// Event announces a change made through the backend
type Event struct {
	Collection string    `json:"collection" yaml:"collection"`
	Operation  string    `json:"operation" yaml:"operation"`
	ID         int64     `json:"id" yaml:"id"`
	At         time.Time `json:"at" yaml:"at"`
}

// FeedURL turns a backend base URL into the websocket URL of its feed
func FeedURL(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path += Path
	return u.String(), nil
}
