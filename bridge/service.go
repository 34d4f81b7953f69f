// Package bridge exposes clipboard access and URL opening to browser
// extensions over the native messaging channel. Extension requests
// arrive as small JSON envelopes; Service routes each one to the
// matching operation and shapes the reply.
package bridge

import (
	"encoding/json"
	"fmt"
	"log"
	"runtime"
	"strings"

	"github.com/rupor-github/nmbridge/misc"
)

// Request is the envelope every extension message must carry. Data holds
// the operation-specific payload and stays unparsed until the operation
// claims it.
type Request struct {
	Type string          `json:"type"`
	ID   string          `json:"id,omitempty"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Response is the envelope for every reply. ID echoes the request ID so
// the extension can match replies to calls it has in flight.
type Response struct {
	Type string `json:"type"`
	ID   string `json:"id,omitempty"`
	Data any    `json:"data,omitempty"`
}

// Service implements the bridge operations. Handle satisfies nmsg.Handler
// and is meant to be passed straight to (*nmsg.Host).Run.
type Service struct {
	le      string
	blocked map[string]bool
}

// NewService initializes Service. le selects clipboard line ending
// normalization ("", "lf" or "crlf"); blockedSchemes extends the built-in
// URI scheme blocklist.
func NewService(le string, blockedSchemes []string) *Service {
	blocked := make(map[string]bool, len(blockedSchemes))
	for _, s := range blockedSchemes {
		blocked[strings.ToLower(s)] = true
	}
	return &Service{le: le, blocked: blocked}
}

// versionInfo is the data payload of the "version" reply.
type versionInfo struct {
	Version string `json:"version"`
	GitHash string `json:"git_hash"`
	Runtime string `json:"runtime"`
}

// Handle routes one decoded message to its operation. Errors returned
// here reach the extension as {"error": ...} frames.
func (s *Service) Handle(msg json.RawMessage) (any, error) {
	var req Request
	if err := json.Unmarshal(msg, &req); err != nil {
		return nil, fmt.Errorf("bad request envelope: %w", err)
	}
	log.Printf("Request %q received (id: %q)\n", req.Type, req.ID)

	switch req.Type {
	case "ping":
		return Response{Type: "pong", ID: req.ID}, nil
	case "version":
		return Response{Type: "version", ID: req.ID, Data: versionInfo{
			Version: misc.GetVersion(),
			GitHash: misc.GetGitHash(),
			Runtime: runtime.Version(),
		}}, nil
	case "copy":
		return s.copy(req)
	case "paste":
		return s.paste(req)
	case "open":
		return s.open(req)
	default:
		return nil, fmt.Errorf("unknown request type %q", req.Type)
	}
}
