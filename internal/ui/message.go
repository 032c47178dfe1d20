package ui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/desertthunder/tunesmith/internal/player"
	"github.com/desertthunder/tunesmith/internal/tasks"
)

// MsgKind enumerates all message types in the application.
type MsgKind int

// Msg represents all possible messages in the TUI (Elm-style message union).
type Msg struct {
	kind MsgKind
	data any
}

var (
	_ tea.Msg = Msg{}
)

const (
	MsgRequestComplete MsgKind = iota
	MsgPlayerEvent
	MsgFrame
	MsgDownloadComplete
	MsgBrowserOpened
)

// requestCompleteMsg is the constructor for [MsgRequestComplete]
func requestCompleteMsg(res tasks.Result) Msg {
	return Msg{kind: MsgRequestComplete, data: res}
}

// playerEventMsg is the constructor for [MsgPlayerEvent]
func playerEventMsg(ev player.Event) Msg {
	return Msg{kind: MsgPlayerEvent, data: ev}
}

// frameMsg is the constructor for [MsgFrame]
func frameMsg() Msg {
	return Msg{kind: MsgFrame}
}

type downloadResult struct {
	path  string
	bytes int64
	err   error
}

// downloadCompleteMsg is the constructor for [MsgDownloadComplete]
func downloadCompleteMsg(path string, n int64, err error) Msg {
	return Msg{kind: MsgDownloadComplete, data: downloadResult{path, n, err}}
}

// browserOpenedMsg is the constructor for [MsgBrowserOpened]
func browserOpenedMsg(url string, err error) Msg {
	return Msg{
		kind: MsgBrowserOpened,
		data: struct {
			url string
			err error
		}{url, err},
	}
}

// PlayerEvents returns a buffered channel for player events and the notify func that feeds it.
//
// Sends never block; events arriving while the buffer is full are dropped.
func PlayerEvents(size int) (chan player.Event, func(player.Event)) {
	ch := make(chan player.Event, size)
	notify := func(ev player.Event) {
		select {
		case ch <- ev:
		default:
		}
	}
	return ch, notify
}
