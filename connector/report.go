package connector

import (
	"context"
	"encoding/base64"
	"fmt"
	"time"
)

// Fixed failure texts preserved by both variants.
const (
	reportDownloadFailedMsg = "unknown error occurred during the download of the report"
	reportTimeExceededMsg   = "download time exceeded, the operation has been canceled"
)

type pollConfig struct {
	interval    time.Duration
	maxAttempts int
	sleep       SleepFunc
}

func sleepWithContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// pollReport drives one report job to completion. fetch performs a single
// status request and reports whether the job is ready. A fetch failure fails
// the job immediately; the original fault detail is intentionally discarded.
// Only the not-yet-ready condition is retried, bounded by cfg.maxAttempts.
func pollReport(ctx context.Context, cfg pollConfig, fetch func() (any, bool, error)) (any, error) {
	attempt := 0
	for {
		payload, ready, err := fetch()
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrReport, reportDownloadFailedMsg)
		}
		if ready {
			return payload, nil
		}

		if err := cfg.sleep(ctx, cfg.interval); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReport, err)
		}
		attempt++
		if attempt > cfg.maxAttempts {
			return nil, fmt.Errorf("%w: %s", ErrReport, reportTimeExceededMsg)
		}
	}
}

// truthy mirrors the loose state check of the wire payload: the state member
// is absent or falsy while the job renders and set once it is ready.
func truthy(v any) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case int:
		return val != 0
	case int64:
		return val != 0
	case float64:
		return val != 0
	default:
		return true
	}
}

// decodeReportData accepts the rendered document either as raw bytes or as a
// base64 text member, which is how the server ships binary over both wires.
func decodeReportData(v any) []byte {
	switch val := v.(type) {
	case nil:
		return nil
	case []byte:
		return val
	case string:
		if decoded, err := base64.StdEncoding.DecodeString(val); err == nil {
			return decoded
		}
		return []byte(val)
	default:
		return nil
	}
}

func reportFromPayload(payload map[string]any) *Report {
	rep := &Report{
		State: truthy(payload["state"]),
		Raw:   payload,
		Data:  decodeReportData(payload["result"]),
	}
	if format, ok := payload["format"].(string); ok {
		rep.Format = format
	}
	return rep
}
