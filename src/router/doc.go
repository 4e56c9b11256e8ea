// Package router maps front-end paths to named views.
//
// A Table is a read-only set of routes; Resolve is a pure function of the
// table and the path. A Navigator layers per-client state on top: the current
// location, history, scroll position and lazy view loading. Each navigation
// request takes a generation number and cancels the context of the one before
// it, so a late fetch result for an older request is never applied.
package router
