package alert

import (
	"context"
	"strconv"

	"recordsync/internal/platform/logger"
	pnet "recordsync/internal/platform/net"
)

func requestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	return pnet.RequestID(ctx)
}

func jobID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := logger.JobID(ctx); ok {
		return strconv.FormatInt(id, 10)
	}
	return ""
}
