/*
Package proxy exposes vehicle state and climate commands over a local HTTP API.

The proxy owns the account session, logging in on demand and transparently
recovering from token expiry, so dashboards and home-automation hubs can poll
it without handling the identity hop themselves.

Endpoints:

	GET  /api/1/summary     Battery, mileage, climate, and position in one response.
	GET  /api/1/hvac        Live climate state plus the countdown of the last start command.
	POST /api/1/hvac/start  Start preconditioning. Body: {"temperature": 21}.
	POST /api/1/hvac/stop   Cancel preconditioning.

Responses use the envelope {"response": ..., "error": ..., "error_description": ...}.
*/
package proxy
