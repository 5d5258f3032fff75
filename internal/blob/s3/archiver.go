package s3blob

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/arbscan/arbscan/internal/domain"
)

// CycleArchiver implements domain.CycleArchiver by serializing each completed
// scan cycle to a JSON object and uploading it under a date-partitioned key.
// Cycles are append-only; nothing here ever deletes or rewrites an archive.
type CycleArchiver struct {
	writer *Writer
	prefix string
}

// NewCycleArchiver creates a CycleArchiver writing under the given key prefix
// (e.g. "cycles").
func NewCycleArchiver(c *Client, prefix string) *CycleArchiver {
	return &CycleArchiver{
		writer: NewWriter(c),
		prefix: strings.Trim(prefix, "/"),
	}
}

// cycleDocument is the archived shape of one scan cycle.
type cycleDocument struct {
	StartedAt     time.Time            `json:"started_at"`
	ArchivedAt    time.Time            `json:"archived_at"`
	Count         int                  `json:"count"`
	Opportunities []domain.Opportunity `json:"opportunities"`
}

// ArchiveCycle uploads the cycle's opportunities and returns the object key.
// Empty cycles are archived too; a gap in the partition would otherwise be
// indistinguishable from a scanner outage.
func (a *CycleArchiver) ArchiveCycle(ctx context.Context, startedAt time.Time, opps []domain.Opportunity) (string, error) {
	doc := cycleDocument{
		StartedAt:     startedAt.UTC(),
		ArchivedAt:    time.Now().UTC(),
		Count:         len(opps),
		Opportunities: opps,
	}

	payload, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("s3blob: encode cycle: %w", err)
	}

	key := a.cycleKey(doc.StartedAt)
	if err := a.writer.Put(ctx, key, bytes.NewReader(payload), "application/json"); err != nil {
		return "", err
	}
	return key, nil
}

// cycleKey builds a date-partitioned object key, e.g.
// "cycles/2026/08/28/cycle-20260828T120500Z.json".
func (a *CycleArchiver) cycleKey(startedAt time.Time) string {
	key := fmt.Sprintf("%s/cycle-%s.json",
		startedAt.Format("2006/01/02"),
		startedAt.Format("20060102T150405Z"),
	)
	if a.prefix != "" {
		key = a.prefix + "/" + key
	}
	return key
}

// Compile-time interface check.
var _ domain.CycleArchiver = (*CycleArchiver)(nil)
