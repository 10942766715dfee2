// Package server is the development preview surface: it serves a built
// tree as a full HTML document, accepts state writes over POST /state, and
// pushes rebuilt fragments to live websocket connections so the page
// updates in place.
package server
