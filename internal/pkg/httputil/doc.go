// Package httputil holds the JSON response and request helpers shared by
// the admin handlers. Every error goes out as an ErrorResponse, with the
// failing fields under "details" for validation and constraint errors.
package httputil
