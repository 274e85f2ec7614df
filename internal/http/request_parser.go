// Package http provides the analytics HTTP server and handlers.
//
// This file implements utilities for parsing and validating request
// parameters shared by the history, monthly and summary endpoints.

package http

import (
	"fmt"
	"net/url"
	"strings"

	"rampview/internal/core"
)

// ParseChannelParam extracts the transaction channel from query parameters.
// Absent means deposits, the dashboard's default tab.
func ParseChannelParam(query url.Values) (core.Channel, error) {
	v := strings.TrimSpace(query.Get("channel"))
	if v == "" {
		return core.ChannelDeposit, nil
	}

	channel, err := core.ParseChannel(v)
	if err != nil {
		return "", fmt.Errorf("invalid channel %q: %w", v, err)
	}
	return channel, nil
}

// ParseViewParam extracts the history view filter from query parameters.
// Absent means the unfiltered view.
func ParseViewParam(query url.Values) (core.View, error) {
	v := strings.ToLower(strings.TrimSpace(query.Get("view")))
	switch core.View(v) {
	case "":
		return core.ViewAll, nil
	case core.ViewAll, core.ViewPending, core.ViewCompleted:
		return core.View(v), nil
	}
	return "", fmt.Errorf("invalid view %q: must be all, pending or completed", v)
}
