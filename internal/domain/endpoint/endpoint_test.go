package endpoint_test

import (
	"testing"

	"github.com/Strob0t/scenariogen/internal/domain/endpoint"
)

func TestBasePath(t *testing.T) {
	tests := []struct {
		name  string
		alias string
		env   map[string]string
		want  string
	}{
		{"alias wins over url", "foo", map[string]string{"CARD_URL": "http://x/bar/"}, "/a2a/foo"},
		{"url path", "", map[string]string{"CARD_URL": "http://x/bar/"}, "/bar"},
		{"nested url path", "", map[string]string{"CARD_URL": "http://x:9009/a2a/tau2/"}, "/a2a/tau2"},
		{"url without path", "", map[string]string{"CARD_URL": "http://x:9009"}, ""},
		{"url root path", "", map[string]string{"CARD_URL": "http://x:9009/"}, ""},
		{"placeholder ignored", "", map[string]string{"CARD_URL": "${CARD_URL}"}, ""},
		{"relative value ignored", "", map[string]string{"CARD_URL": "bar/baz"}, ""},
		{"other keys ignored", "", map[string]string{"OTHER_URL": "http://x/bar"}, ""},
		{"nil env", "", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := endpoint.BasePath(tt.alias, tt.env); got != tt.want {
				t.Errorf("BasePath(%q, %v) = %q, want %q", tt.alias, tt.env, got, tt.want)
			}
		})
	}
}

func TestHealthPath(t *testing.T) {
	if got := endpoint.HealthPath(""); got != "/.well-known/agent-card.json" {
		t.Errorf("root health path = %q", got)
	}
	if got := endpoint.HealthPath("/a2a/foo"); got != "/a2a/foo/.well-known/agent-card.json" {
		t.Errorf("alias health path = %q", got)
	}
}
