// Package reqctx carries per-request values (request metadata and the
// acting user) through context.Context without leaking HTTP types into
// the service layer.
package reqctx
