package domain

import (
	"time"

	"github.com/google/uuid"
)

// RateRecord is one (code, description) line of the rate catalogue.
type RateRecord struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Code           string    `db:"code" json:"hsn_code"`
	Description    string    `db:"description" json:"description"`
	Keywords       Keywords  `db:"keywords" json:"keywords"`
	Rate           float64   `db:"rate" json:"gst_rate"`
	LastUpdated    time.Time `db:"last_updated" json:"last_updated"`
	SourceDocument string    `db:"source_document" json:"source_document"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// HistoryEntry records a single rate change on a RateRecord.
type HistoryEntry struct {
	ID             uuid.UUID `db:"id" json:"id"`
	RecordID       uuid.UUID `db:"record_id" json:"record_id"`
	Code           string    `db:"code" json:"hsn_code"`
	Description    string    `db:"description" json:"description"`
	OldRate        float64   `db:"old_rate" json:"old_rate"`
	NewRate        float64   `db:"new_rate" json:"new_rate"`
	ChangedAt      time.Time `db:"changed_at" json:"changed_at"`
	SourceDocument string    `db:"source_document" json:"source_document"`
	Reason         string    `db:"reason" json:"reason,omitempty"`
}

// CalculationLogEntry is the audit trail of a resolved calculation.
type CalculationLogEntry struct {
	ID                 uuid.UUID `db:"id" json:"id"`
	InputDescription   string    `db:"input_description" json:"input_description"`
	MatchedDescription string    `db:"matched_description" json:"matched_description"`
	Code               string    `db:"code" json:"hsn_code"`
	Rate               float64   `db:"rate" json:"gst_rate"`
	Price              float64   `db:"price" json:"price"`
	Inclusive          bool      `db:"inclusive" json:"inclusive"`
	Score              float64   `db:"score" json:"score"`
	Base               float64   `db:"base" json:"base"`
	Tax                float64   `db:"tax" json:"tax"`
	Total              float64   `db:"total" json:"total"`
	CalculatedAt       time.Time `db:"calculated_at" json:"calculated_at"`
}

// RateUpdate describes a conditional rate change and the history entry that
// must be written alongside it.
type RateUpdate struct {
	RecordID       uuid.UUID
	ExpectedRate   float64
	NewRate        float64
	SourceDocument string
	History        HistoryEntry
}

// CatalogueEntry is the projection of a RateRecord used at query time.
type CatalogueEntry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Code        string    `db:"code" json:"hsn_code"`
	Description string    `db:"description" json:"description"`
	Rate        float64   `db:"rate" json:"gst_rate"`
}

// Page is the per-page representation produced by a document source.
// Grid is preferred by the extractor when non-empty.
type Page struct {
	Number int
	Grid   [][]string
	Lines  []string
}

// ExtractedRow is a candidate triple produced by the extractor.
type ExtractedRow struct {
	Code        string  `json:"hsn_code"`
	Description string  `json:"description"`
	Rate        float64 `json:"gst_rate"`
}

// NormalizedRow is an ExtractedRow with cleaned description and keywords.
type NormalizedRow struct {
	ExtractedRow
	Keywords []string `json:"keywords"`
}

// RateChange reports what reconciliation did with one row.
type RateChange struct {
	Code        string       `json:"hsn_code"`
	Description string       `json:"description"`
	OldRate     *float64     `json:"old_rate"`
	NewRate     float64      `json:"new_rate"`
	Action      ChangeAction `json:"action"`
}

// ReconcileResult summarizes the reconciliation of one document.
type ReconcileResult struct {
	Changes   []RateChange `json:"changes"`
	Inserted  int          `json:"inserted"`
	Updated   int          `json:"updated"`
	Merged    int          `json:"merged"`
	Unchanged int          `json:"unchanged"`
}

// ScoredEntry is a catalogue entry with its similarity to a query.
type ScoredEntry struct {
	Entry CatalogueEntry `json:"entry"`
	Score float64        `json:"score"`
}

// Resolution is the outcome of resolving a query against the catalogue.
// When Matched is false, Suggestions holds the top ranked alternatives.
type Resolution struct {
	Query       string           `json:"query"`
	Matched     bool             `json:"matched"`
	Match       *CatalogueEntry  `json:"match,omitempty"`
	Score       float64          `json:"score"`
	Method      ResolutionMethod `json:"method"`
	Suggestions []ScoredEntry    `json:"suggestions,omitempty"`
}

// Breakdown is the monetary result of a tax calculation.
type Breakdown struct {
	Base          float64 `json:"base"`
	Tax           float64 `json:"tax"`
	Total         float64 `json:"total"`
	Rate          float64 `json:"rate"`
	EffectiveRate float64 `json:"effective_rate"`
	CGST          float64 `json:"cgst,omitempty"`
	SGST          float64 `json:"sgst,omitempty"`
	Split         bool    `json:"split"`
	Inclusive     bool    `json:"inclusive"`
}

// CalcOutcome is the result of a resolved calculation. AuditErr is set when
// the audit log append failed; it never invalidates the result.
type CalcOutcome struct {
	Resolution *Resolution `json:"resolution"`
	Breakdown  *Breakdown  `json:"breakdown,omitempty"`
	AuditErr   error       `json:"-"`
}

// IngestReport summarizes one ingested document.
type IngestReport struct {
	DocumentID     uuid.UUID    `json:"document_id"`
	FileName       string       `json:"file_name"`
	SourceDocument string       `json:"source_document"`
	UploadedBy     string       `json:"uploaded_by,omitempty"`
	Pages          int          `json:"pages"`
	ParsedRows     int          `json:"parsed_rows"`
	ValidRows      int          `json:"valid_rows"`
	Inserted       int          `json:"inserted"`
	Updated        int          `json:"updated"`
	Merged         int          `json:"merged"`
	Unchanged      int          `json:"unchanged"`
	Changes        []RateChange `json:"changes"`
}

// CatalogueStats counts records by origin.
type CatalogueStats struct {
	Total    int `json:"total"`
	Seed     int `json:"seed"`
	Uploaded int `json:"uploaded"`
}
