package bridge

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/atotto/clipboard"
)

// MaxClipboardSize is the maximum allowed clipboard payload size (1 MiB).
const MaxClipboardSize = 1 << 20

// Clipboard access points. Replaced in tests so test runs do not touch
// the real system clipboard.
var (
	clipWrite = clipboard.WriteAll
	clipRead  = clipboard.ReadAll
)

// textData carries the text payload of "copy" requests and "clipboard"
// replies.
type textData struct {
	Text string `json:"text"`
}

// copy is the implementation of the "copy" operation: the request text
// lands on the system clipboard, normalized to the configured line ending.
func (s *Service) copy(req Request) (any, error) {
	var data textData
	if err := json.Unmarshal(req.Data, &data); err != nil {
		return nil, fmt.Errorf("copy: bad payload: %w", err)
	}
	log.Printf("Copy request received len: %d\n", len(data.Text))
	if len(data.Text) > MaxClipboardSize {
		return nil, fmt.Errorf("clipboard payload size %d exceeds maximum %d", len(data.Text), MaxClipboardSize)
	}
	if err := clipWrite(ConvertLE(data.Text, s.le)); err != nil {
		return nil, err
	}
	return Response{Type: "copied", ID: req.ID}, nil
}

// paste is the implementation of the "paste" operation. The clipboard
// content comes back normalized the same way.
func (s *Service) paste(req Request) (any, error) {
	text, err := clipRead()
	log.Printf("Paste request received len: %d, error: '%+v'\n", len(text), err)
	if err != nil {
		return nil, err
	}
	return Response{Type: "clipboard", ID: req.ID, Data: textData{Text: ConvertLE(text, s.le)}}, nil
}
