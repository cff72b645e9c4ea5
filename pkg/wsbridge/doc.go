// Package wsbridge carries remoteauth bridge calls over a WebSocket.
//
// The authentication service lives on the JavaScript side of the page; the
// Go side reaches it through the framework's interop channel. wsbridge
// implements that channel as JSON request/response frames with correlation
// IDs:
//
//	→ {"id": 1, "method": "signIn", "params": [{...}]}
//	← {"id": 1, "result": {"status": "success", ...}}
//	← {"id": 2, "error": "network error"}
//
// A Conn multiplexes concurrent in-flight calls over one connection and
// honors per-call context cancellation. Bridge adapts a Conn to the
// remoteauth.Bridge interface.
package wsbridge
