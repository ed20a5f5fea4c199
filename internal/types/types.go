// Package types holds the websocket wire frames.
//
// Client -> Server
//
//	say:     {"type":"say","text":"..."}
//
// Server -> Client
//
//	message: {"type":"message","channel":"...","id":"...","author":{...},"text":"..."}
//	edit:    {"type":"edit","channel":"...","id":"...","text":"..."}
//	delete:  {"type":"delete","channel":"...","id":"..."}
//	race:    {"type":"race","version":3,"race":{...}}
//	closed:  {"type":"closed","channel":"..."}
//	error:   {"type":"error","error":"..."}
package types

import "github.com/DoyleJ11/typrr/internal/engine"

const (
	FrameSay     = "say"
	FrameMessage = "message"
	FrameEdit    = "edit"
	FrameDelete  = "delete"
	FrameRace    = "race"
	FrameClosed  = "closed"
	FrameError   = "error"
)

type ClientFrame struct {
	Type string `json:"type" validate:"required,oneof=say"`
	Text string `json:"text" validate:"required,max=2000"`
}

type Author struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Bot  bool   `json:"bot,omitempty"`
}

type ServerFrame struct {
	Type    string        `json:"type"`
	Channel string        `json:"channel,omitempty"`
	ID      string        `json:"id,omitempty"`
	Author  *Author       `json:"author,omitempty"`
	Text    string        `json:"text,omitempty"`
	Version int           `json:"version,omitempty"`
	Race    *engine.State `json:"race,omitempty"`
	Error   string        `json:"error,omitempty"`
}
