// Package services implements the HTTP client for the music generation backend.
//
// [APIService] performs raw JSON requests and keeps the response body, status and decoded JSON.
// [MusicService] implements [Generator] on top of it for the three generation endpoints, which share one
// response shape:
//
//	{"success": true, "audio_url": "...", "download_url": "...", "filename": "...", "classification": {...}}
//	{"success": false, "error": "..."}
//
// # Error Handling
//
// Every failure is returned as a [*RequestError] whose Kind separates the failure classes the UI reports on:
//   - [KindTransport] : the request never produced a response ([shared.ErrAPIRequest])
//   - [KindStatus] : non-2xx response ([shared.ErrHTTPStatus])
//   - [KindDecode] : 2xx response with a body that is not the expected JSON ([shared.ErrDecodeResponse])
//   - [KindApplication] : success=false with a server message ([shared.ErrGeneration])
//
// No request is retried.
package services
