package domain

// ExportItem is one downloadable artifact in a batch export.
type ExportItem struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Data      []byte `json:"-"`
}

// ExportResult is either a single artifact (Name/ContentType/Data) or, when
// archive creation failed, the individual items to download sequentially.
type ExportResult struct {
	Name        string
	ContentType string
	Data        []byte
	Items       []ExportItem
}
