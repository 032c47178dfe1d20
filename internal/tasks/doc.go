// Package tasks sequences backend requests for the UI and the command line.
//
// # Request Orchestration
//
// [Orchestrator] runs the three generation operations through one lifecycle:
//
//  1. [Orchestrator.Begin] : accepts a submission on the UI loop
//     - Assigns the next sequence number
//     - Disables the control and shows the busy indicator
//     - Clears the player and prepends a "Generating..." history entry
//
//  2. [Orchestrator.Execute] : calls the backend, off the UI loop
//
//  3. [Orchestrator.Complete] : applies the outcome on the UI loop
//     - Always releases the in-flight slot and finalizes the request's history entry
//     - Only the latest request updates the status line and the player
//
// Failures never escape Complete; they become status text and a "Failed" history entry.
//
// # Downloads
//
// [BulkDownload] fetches every favorite with a bounded worker pool and a rate limiter, reporting
// [ProgressUpdate] values over a non-blocking channel and writing a JSON manifest when done.
package tasks
