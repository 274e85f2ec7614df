package http

import (
	"net/url"
	"testing"

	"rampview/internal/core"
)

func TestParseChannelParam(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    core.Channel
		wantErr bool
	}{
		{"default is deposit", "", core.ChannelDeposit, false},
		{"deposit", "channel=deposit", core.ChannelDeposit, false},
		{"on-ramp alias", "channel=on-ramp", core.ChannelDeposit, false},
		{"withdrawal", "channel=withdrawal", core.ChannelWithdrawal, false},
		{"off-ramp alias", "channel=off-ramp", core.ChannelWithdrawal, false},
		{"mixed case", "channel=Withdrawal", core.ChannelWithdrawal, false},
		{"unknown", "channel=transfer", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("bad test query: %v", err)
			}

			got, err := ParseChannelParam(query)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseChannelParam(%q) expected error", tt.query)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseChannelParam(%q) error: %v", tt.query, err)
			}
			if got != tt.want {
				t.Errorf("ParseChannelParam(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestParseViewParam(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		want    core.View
		wantErr bool
	}{
		{"default is all", "", core.ViewAll, false},
		{"all", "view=all", core.ViewAll, false},
		{"pending", "view=pending", core.ViewPending, false},
		{"completed", "view=completed", core.ViewCompleted, false},
		{"case insensitive", "view=Pending", core.ViewPending, false},
		{"unknown", "view=failed", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("bad test query: %v", err)
			}

			got, err := ParseViewParam(query)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseViewParam(%q) expected error", tt.query)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseViewParam(%q) error: %v", tt.query, err)
			}
			if got != tt.want {
				t.Errorf("ParseViewParam(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}
