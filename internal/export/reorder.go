package export

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/orglink/internal/fetcher"
)

// DefaultKeyColumn is the column rows are matched on when reordering.
const DefaultKeyColumn = "url"

// ReorderStats summarizes a Reorder call.
type ReorderStats struct {
	ReferenceRows int `json:"reference_rows"`
	TargetRows    int `json:"target_rows"`
	OutputRows    int `json:"output_rows"`
	MatchedKeys   int `json:"matched_keys"`
	ReferenceOnly int `json:"reference_only"`
	TargetOnly    int `json:"target_only"`
}

// Reorder sorts target's rows into the order their key first appears in
// reference. Rows sharing a key stay together in their original order.
// Rows whose key is absent from reference follow, in their original order.
// The output keeps target's header.
func Reorder(reference, target fetcher.Table, key string) (fetcher.Table, ReorderStats, error) {
	if key == "" {
		key = DefaultKeyColumn
	}
	refCol, tgtCol := reference.Column(key), target.Column(key)
	if refCol < 0 {
		return fetcher.Table{}, ReorderStats{}, eris.Errorf("export: reference has no %q column", key)
	}
	if tgtCol < 0 {
		return fetcher.Table{}, ReorderStats{}, eris.Errorf("export: target has no %q column", key)
	}

	byKey := make(map[string][]int)
	for i, row := range target.Rows {
		k := fetcher.Cell(row, tgtCol)
		byKey[k] = append(byKey[k], i)
	}

	stats := ReorderStats{ReferenceRows: len(reference.Rows), TargetRows: len(target.Rows)}
	out := fetcher.Table{Header: target.Header, Rows: make([][]string, 0, len(target.Rows))}
	placed := make([]bool, len(target.Rows))
	refKeys := make(map[string]bool, len(reference.Rows))

	for _, row := range reference.Rows {
		k := fetcher.Cell(row, refCol)
		if refKeys[k] {
			continue
		}
		refKeys[k] = true

		idxs, ok := byKey[k]
		if !ok {
			stats.ReferenceOnly++
			continue
		}
		stats.MatchedKeys++
		for _, i := range idxs {
			out.Rows = append(out.Rows, target.Rows[i])
			placed[i] = true
		}
	}

	for k := range byKey {
		if !refKeys[k] {
			stats.TargetOnly++
		}
	}
	for i, row := range target.Rows {
		if !placed[i] {
			out.Rows = append(out.Rows, row)
		}
	}
	stats.OutputRows = len(out.Rows)

	zap.L().Info("export: reorder complete",
		zap.String("key", key),
		zap.Int("reference_rows", stats.ReferenceRows),
		zap.Int("target_rows", stats.TargetRows),
		zap.Int("matched_keys", stats.MatchedKeys),
		zap.Int("reference_only", stats.ReferenceOnly),
		zap.Int("target_only", stats.TargetOnly),
	)
	return out, stats, nil
}
