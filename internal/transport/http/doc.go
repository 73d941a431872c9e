// Package http provides the HTTP transport for the report cleanup service:
// a multipart upload endpoint that runs the pipeline and streams the cleaned
// workbook back, plus health and metrics endpoints. The transport delivers
// complete, already-received bytes to the core and never exposes pipeline
// warnings as failures.
package http
