// Package main provides the entry point for the ucomment CLI.
//
// ucomment downloads every comment and reply of a video by walking the
// continuation tree the watch page exposes, and writes them to a CSV file
// per video.
//
// Usage:
//
//	ucomment crawl <video-id>...
//	ucomment history [video-id]
//
// See --help for all available options.
package main

func main() {
	Execute()
}
