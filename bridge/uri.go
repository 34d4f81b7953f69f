package bridge

import (
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strings"

	"github.com/skratchdot/open-golang/open"
)

// blockedSchemes lists URI schemes that are never passed to the OS opener,
// no matter what the configuration allows.
var blockedSchemes = map[string]bool{
	"file":       true,
	"data":       true,
	"javascript": true,
	"vbscript":   true,
}

// opener is the function used to open URIs. It defaults to open.Run and can
// be overridden in tests to avoid launching real applications.
var opener = open.Run

// uriData carries the target of "open" requests.
type uriData struct {
	URL string `json:"url"`
}

// open is the implementation of the "open" operation: the URL goes to the
// OS default handler once its scheme clears the blocklist.
func (s *Service) open(req Request) (any, error) {
	var data uriData
	if err := json.Unmarshal(req.Data, &data); err != nil {
		return nil, fmt.Errorf("open: bad payload: %w", err)
	}
	log.Printf("URI Open received: '%s'", data.URL)

	parsed, err := url.Parse(data.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid URI: %w", err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if blockedSchemes[scheme] || s.blocked[scheme] {
		return nil, fmt.Errorf("URI scheme %q is not allowed", scheme)
	}
	if err := opener(data.URL); err != nil {
		return nil, err
	}
	return Response{Type: "opened", ID: req.ID}, nil
}
