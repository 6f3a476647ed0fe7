// Package api serves the Minesweeper game service over HTTP.
//
// Routes (gorilla/mux):
//
// Sessions:
//   - POST /api/sessions                 create a session ({"config_id": "expert"})
//   - GET /api/sessions                  list sessions (?sort=created|accessed&order=asc|desc&limit=N&config=ID)
//   - GET /api/sessions/{id}             session info
//   - DELETE /api/sessions/{id}          delete a session
//
// Game:
//   - GET /api/sessions/{id}/state       current board (hidden tiles redacted)
//   - POST /api/sessions/{id}/start      Initialized -> Playing
//   - POST /api/sessions/{id}/reveal     {"x": 3, "y": 4}
//   - POST /api/sessions/{id}/mark       {"x": 3, "y": 4}
//   - POST /api/sessions/{id}/bulk       {"actions": [{"action": "reveal", "x": 0, "y": 0}], "reset": false}
//   - POST /api/sessions/{id}/reset      fresh board from the session's config
//   - GET /api/sessions/{id}/history     ?page=1&limit=20&order=desc
//
// Configuration:
//   - GET /api/configs                   list presets
//   - POST /api/configs                  save a preset
//   - GET /api/configs/{name}            load a preset
//
// Operations:
//   - GET /health
//   - GET /metrics                       Prometheus exposition
//   - GET /ws?session={id}               live updates, see package websocket
//
// Errors are JSON with a status derived from the error chain:
//
//	{"error": "reveal (9, 9): position out of range - (9, 9) - board (9, 9)", "code": 400}
//
// Unknown sessions and configs map to 404, invalid coordinates, configs and
// bodies to 400, commands on finished games or out-of-order starts to 409.
package api
