package bot

import (
	"fmt"
	"strconv"
	"strings"
)

// callbackKind enumerates the closed set of inline-menu actions.
// Tokens are decoded once at the boundary; anything outside the set is
// rejected explicitly instead of falling through.
type callbackKind int

const (
	cbStatus callbackKind = iota
	cbPeers
	cbGraph
	cbSpeedtest
	cbApprove
	cbReject
)

// callbackCommand is a decoded inline-menu token
type callbackCommand struct {
	kind      callbackKind
	hours     int    // cbGraph
	requestID uint64 // cbApprove, cbReject
}

func parseCallback(data string) (callbackCommand, error) {
	switch {
	case data == "status":
		return callbackCommand{kind: cbStatus}, nil
	case data == "peers":
		return callbackCommand{kind: cbPeers}, nil
	case data == "speedtest":
		return callbackCommand{kind: cbSpeedtest}, nil

	case strings.HasPrefix(data, "graph_"):
		hours, err := strconv.Atoi(strings.TrimPrefix(data, "graph_"))
		if err != nil || hours <= 0 {
			return callbackCommand{}, fmt.Errorf("bad graph token: %q", data)
		}
		return callbackCommand{kind: cbGraph, hours: hours}, nil

	case strings.HasPrefix(data, "approve_"):
		id, err := strconv.ParseUint(strings.TrimPrefix(data, "approve_"), 10, 64)
		if err != nil {
			return callbackCommand{}, fmt.Errorf("bad approve token: %q", data)
		}
		return callbackCommand{kind: cbApprove, requestID: id}, nil

	case strings.HasPrefix(data, "reject_"):
		id, err := strconv.ParseUint(strings.TrimPrefix(data, "reject_"), 10, 64)
		if err != nil {
			return callbackCommand{}, fmt.Errorf("bad reject token: %q", data)
		}
		return callbackCommand{kind: cbReject, requestID: id}, nil

	default:
		return callbackCommand{}, fmt.Errorf("unrecognized callback token: %q", data)
	}
}
