package jobqueue

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/AvaliaJa/AvaliaJa/internal/pkg/conversion"
)

// NewConversionProcessor wraps a conversion applier as a queue processor.
func NewConversionProcessor(applier *conversion.Applier) Processor {
	return func(ctx context.Context, job *Job) error {
		var payload ConversionPayload
		if err := json.Unmarshal(job.Payload, &payload); err != nil {
			return fmt.Errorf("decode conversion payload: %w", err)
		}
		if payload.ClickID == 0 {
			return fmt.Errorf("conversion payload missing click id")
		}
		return applier.Apply(ctx, payload.ClickID)
	}
}
