// Package classify derives the mediaset key, the rendition role, and the
// content date from a probed media file.
package classify
