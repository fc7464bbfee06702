// Package watch reports changes to individual document files.
//
// fsnotify is pointed at each file's parent directory so that editors which
// save by writing a temporary file and renaming it over the original are
// still seen. Events for other files in those directories are dropped, and
// bursts of events for one file are debounced into a single Event whose Op
// combines everything that happened.
package watch
