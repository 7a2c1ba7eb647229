// Package pipeline runs crawl runs as a sequence of steps.
//
// A crawl run for one video id is three steps: create the CSV output with its
// header, resolve the bootstrap token from the watch page, and walk the
// comment tree from it. The Pipeline wraps the steps with the run's
// lifecycle: it stamps the start and finish times, derives the final status
// from the error that ended the run, closes steps that own resources, and
// records the run through an optional Recorder.
//
// BatchProcessor runs one pipeline per video id with bounded concurrency
// using errgroup.
package pipeline
