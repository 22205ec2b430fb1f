// Package api turns conversion requests into JSON envelopes.
//
// Pipeline is transport-neutral: it takes a method and a raw body and
// returns a status, headers and body. Server adapts it to net/http and
// adds the health, metrics and CORS preflight routes.
//
// Request flow:
//
//	validate -> render -> (html) done
//	                   -> (docx) build -> store -> done
//
// Any stage may fail with a *Failure, which maps to a fixed status and
// error code.
package api
