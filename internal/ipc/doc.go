// Package ipc exposes daemon control over JSON-RPC on a Unix domain
// socket. The CLI is the only intended consumer; the canvas frontend
// talks to the HTTP API instead.
package ipc
