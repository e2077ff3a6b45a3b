package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/plume-protocol/plume-go/pkg/log"
)

// RunFilter copies matching events from one log file to another.
func RunFilter(inPath, outPath string, filter log.Filter) (int, error) {
	reader, err := log.NewFilteredReader(inPath, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return 0, fmt.Errorf("failed to create output file: %w", err)
	}
	defer out.Close()

	enc := log.NewEncoder(out)
	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return count, nil
		}
		if err != nil {
			return count, fmt.Errorf("failed to read event: %w", err)
		}
		if err := enc.Encode(event); err != nil {
			return count, fmt.Errorf("failed to write event: %w", err)
		}
		count++
	}
}
