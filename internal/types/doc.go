/*
Package types defines data structures shared across taskdeck.

Task and TaskInput mirror the backend's task schema:

	{
	  "id": 1,
	  "title": "Morning run",
	  "start": "07:00",
	  "end": "07:30",
	  "importance": 2,
	  "memo": null,
	  "type": "habit",
	  "done": false
	}

The request gateway does not use these types. It passes payloads through as untyped
JSON so that fields added on the server reach the caller unchanged.

Session is the shell state kept in ~/.taskdeck/.session.json: the navigation history
and the position within it, so that restarting the shell shows the same view.
*/
package types
