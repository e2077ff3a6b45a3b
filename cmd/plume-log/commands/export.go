package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/plume-protocol/plume-go/pkg/log"
)

// exportedEvent is the JSONL export schema: enums become their names,
// payloads become strings.
type exportedEvent struct {
	Timestamp    time.Time `json:"ts"`
	ConnectionID string    `json:"conn_id,omitempty"`
	Direction    string    `json:"direction"`
	Layer        string    `json:"layer"`
	Category     string    `json:"category"`
	RemoteAddr   string    `json:"remote_addr,omitempty"`

	Verb      string `json:"verb,omitempty"`
	Size      int    `json:"size,omitempty"`
	Data      string `json:"data,omitempty"`
	Truncated bool   `json:"truncated,omitempty"`

	Control  string `json:"control,omitempty"`
	OldState string `json:"old_state,omitempty"`
	NewState string `json:"new_state,omitempty"`
	Reason   string `json:"reason,omitempty"`

	Error        string `json:"error,omitempty"`
	ErrorContext string `json:"error_context,omitempty"`
}

// RunExport writes events from a log file as JSON lines.
func RunExport(path string, filter log.Filter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	enc := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := enc.Encode(exportEvent(event)); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

func exportEvent(event log.Event) exportedEvent {
	out := exportedEvent{
		Timestamp:    event.Timestamp,
		ConnectionID: event.ConnectionID,
		Direction:    event.Direction.String(),
		Layer:        event.Layer.String(),
		Category:     event.Category.String(),
		RemoteAddr:   event.RemoteAddr,
	}

	if event.Line != nil {
		out.Verb = event.Line.Verb
		out.Size = event.Line.Size
		out.Data = string(event.Line.Data)
		out.Truncated = event.Line.Truncated
	}
	if event.Control != nil {
		out.Control = event.Control.Type.String()
	}
	if event.StateChange != nil {
		out.OldState = event.StateChange.OldState
		out.NewState = event.StateChange.NewState
		out.Reason = event.StateChange.Reason
	}
	if event.Error != nil {
		out.Error = event.Error.Message
		out.ErrorContext = event.Error.Context
	}

	return out
}
