package commands

import (
	"fmt"
	"strings"

	"github.com/plume-protocol/plume-go/pkg/log"
)

// ParseLayerFlag parses a -layer flag value.
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "protocol":
		return log.LayerProtocol, nil
	case "client":
		return log.LayerClient, nil
	default:
		return 0, fmt.Errorf("unknown layer %q (use: transport, protocol, client)", s)
	}
}

// ParseDirectionFlag parses a -direction flag value.
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "in":
		return log.DirectionIn, nil
	case "out":
		return log.DirectionOut, nil
	default:
		return 0, fmt.Errorf("unknown direction %q (use: in, out)", s)
	}
}

// ParseCategoryFlag parses a -category flag value.
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "message":
		return log.CategoryMessage, nil
	case "control":
		return log.CategoryControl, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("unknown category %q (use: message, control, state, error)", s)
	}
}
