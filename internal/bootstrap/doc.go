// Package bootstrap resolves the first continuation token of a video's
// comment tree from the video's watch page.
//
// The watch page embeds its initial state as a script assignment
// ("var ytInitialData = {...};"). The resolver locates that script, cuts the
// JSON payload out of it and walks the engagement panels for a token. The
// marker and cut lengths change upstream from time to time and are
// configurable, the search order is not.
package bootstrap
