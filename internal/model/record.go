package model

import (
	"time"

	"github.com/rotisserie/eris"
)

// QueryRecord is one input row to link against the directory.
type QueryRecord struct {
	Index    int    `json:"index"`
	Name     string `json:"name"`
	Location string `json:"location"`
	URL      string `json:"url"`
}

// Mode selects how a query record is matched to a candidate.
type Mode string

const (
	ModeAddress Mode = "address" // best location match only
	ModeName    Mode = "name"    // location match validated by company name
)

// ParseMode converts s to a Mode. An empty string yields ModeAddress.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeAddress:
		return ModeAddress, nil
	case ModeName:
		return ModeName, nil
	}
	return "", eris.Errorf("model: unknown mode %q (want address or name)", s)
}

// LinkResult is the outcome of linking one query record. When Matched is
// false the candidate columns are empty and Memo explains why.
type LinkResult struct {
	RunID       string      `json:"run_id"`
	Record      QueryRecord `json:"record"`
	SearchURL   string      `json:"search_url"`
	Tel         string      `json:"tel"`
	TelHyphen   string      `json:"tel_hyphen"`
	CompanyName string      `json:"company_name"`
	Location    string      `json:"location"`
	DetailURL   string      `json:"detail_url"`
	Score       float64     `json:"score"`
	Matched     bool        `json:"matched"`
	Memo        string      `json:"memo,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}
