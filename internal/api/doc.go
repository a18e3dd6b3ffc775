// Package api defines wire-format types and converters for the IPC and
// HTTP API layer. It translates internal graph and timeline models into
// transport-friendly DTOs the canvas frontend and CLI can render without
// coupling to internal types, and hosts the service that dispatches
// transport requests into the editing session.
//
// DTOs use camelCase JSON tags for JavaScript/TypeScript consumers.
// Internal enums (graph.Kind, timeline.ClipStatus) are exposed as
// lowercase strings.
package api
