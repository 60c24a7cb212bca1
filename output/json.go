package output

import (
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/penwyp/rewindcat/models"
)

// WriteJSON serializes the stats model to w with no transformation: the
// engine's output model and the JSON contract are one and the same.
func WriteJSON(w io.Writer, stats *models.AggregateStats) error {
	data, err := sonic.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = w.Write([]byte("\n"))
	return err
}
