// Package ui implements the interactive terminal interface using bubbletea's Elm architecture.
//
// The [Model] shows one section at a time, chosen through a [Navigator]:
//  1. dashboard : prompt input, duration slider, player and spectrum visualizer
//  2. history : submissions of the current session with their outcome
//  3. favorites : saved tracks, playable and removable
//  4. settings : backend, theme and download settings
//
// Backend requests run as commands and come back as [MsgRequestComplete]. Player events are forwarded through
// the channel returned by [PlayerEvents] so the audio goroutines never touch the model directly. A [Backdrop]
// of drifting notes is stepped on every frame tick.
package ui
