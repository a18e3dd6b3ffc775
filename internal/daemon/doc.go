// Package daemon hosts the editing session behind an HTTP JSON API. The
// canvas frontend drives the session through pointer and key events plus
// node and timeline actions; assets ingested by file drop are served back
// under /assets/. The daemon owns the asset registry and the generation
// runner and shuts them down together.
package daemon
