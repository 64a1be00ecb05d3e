// Package server holds the HTTP server configuration.
//
// The serve command reads the listen port, the optional API key and the
// request body limit from this Config; core/config embeds it under the
// "server" key.
package server
