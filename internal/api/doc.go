// Package api provides the HTTP and WebSocket surface of pixeld.
//
// Two route groups share one listener. The control routes at the router
// root are path-compatible with the original pixel server clients
// (/init/neopixels, /fill/{stripID}, ...) and keep its response shape:
// {"success": true, ...} or {"success": false, "error": "..."}. The
// service routes under /api/v1 expose registry listings, the operation
// log, health, login, and the WebSocket event hub.
//
// Every control request is dispatched through the controller's actor,
// so handlers never touch registries directly.
//
// The server follows the same lifecycle pattern as the infrastructure
// components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
package api
