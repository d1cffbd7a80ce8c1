// File: status.go
// Title: Status Worker
// Description: Plain text health report for the running server.
// Author: msto63
// Version: v0.1.0
// Created: 2026-03-19
// Modified: 2026-03-19
//
// Change History:
// - 2026-03-19 v0.1.0: Initial implementation

package workers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/msto63/smartweb/internal/web"
	"github.com/msto63/smartweb/pkg/core/health"
)

// StatusWorker prints the health report as plain text. The status code is
// 503 when the report is unhealthy.
type StatusWorker struct {
	Health *health.Registry
}

func (w StatusWorker) ProcessRequest(rc *web.RequestContext) error {
	if w.Health == nil {
		return fmt.Errorf("status worker has no health registry")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	report := w.Health.Check(ctx)

	if err := rc.SetMimeType("text/plain"); err != nil {
		return err
	}
	if report.Status == health.StatusUnhealthy {
		if err := rc.SetStatus(503, "Service Unavailable"); err != nil {
			return err
		}
	}

	var sb strings.Builder
	sb.WriteString(report.String())
	sb.WriteString("\n")
	for _, c := range report.Checks {
		fmt.Fprintf(&sb, "%-12s %-10s %s\n", c.Name, c.Status, c.Message)
	}
	return rc.WriteText(sb.String())
}
