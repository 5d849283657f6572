/*
Package api is the request gateway between the application and the task backend.

# Overview

A Client performs exactly one HTTP call per operation against
{baseURL}/{collection}[/{id}] and normalizes the outcome:

  - List:   GET    /{collection}
  - Create: POST   /{collection}
  - Get:    GET    /{collection}/{id}
  - Update: PUT    /{collection}/{id}
  - Remove: DELETE /{collection}/{id}

Payloads are opaque. Request bodies are any JSON-serializable value and results are
whatever encoding/json produces for the response body (map[string]any, []any, ...).
An empty 2xx body yields a nil result.

# Errors

Every failure is returned as *Error:

  - 422: Message "input is invalid", Detail holds the server's "detail" field
  - 404: Message "resource not found"
  - other non-2xx: Message "server error (<status>)"
  - no status at all (DNS, refused connection, ...): Kind KindTransport, Status 0
  - 2xx with a body that is not JSON: Kind KindDecode

Decoding the body of a failed response is best effort. If it cannot be parsed the
error simply carries no Detail.

Use errors.Is with the sentinels (ErrNotFound, ErrValidation, ...) or StatusOf to
branch on the outcome:

	task, err := client.Get(ctx, "42")
	if api.IsNotFound(err) {
		// show "resource not found"
	}

# Collections

The default collection is "tasks". Habits and schedules are served the same way:

	habits := client.Collection(api.CollectionHabits)
	list, err := habits.List(ctx)

# Thread Safety

Clients hold no per-request state. Concurrent calls are independent and complete in
no particular order. The gateway never retries, caches or imposes a timeout.
*/
package api
