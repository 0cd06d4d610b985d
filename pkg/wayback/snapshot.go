package wayback

import (
	"encoding/json"
	"strconv"
)

// Snapshot describes one archived capture of a page, identified by its
// 14-digit timestamp (YYYYMMDDhhmmss) and the original URL it captured.
//
// Snapshots are produced only from index rows carrying both a timestamp and
// an original URL; rows missing either are dropped during decoding.
// Immutable once constructed.
type Snapshot struct {
	Timestamp   string `json:"timestamp"`
	OriginalURL string `json:"original_url"`
	MimeType    string `json:"mimetype,omitempty"`
	StatusCode  *int   `json:"status_code"` // nil when the index row has no parseable status
	Digest      string `json:"digest,omitempty"`
}

// Valid reports whether the snapshot carries the fields required to fetch
// its content.
func (s Snapshot) Valid() bool {
	return s.Timestamp != "" && s.OriginalURL != ""
}

// Content is the result of fetching one snapshot's archived page.
type Content struct {
	HTML   string `json:"html"`
	Length int    `json:"length"` // always len(HTML)
	URL    string `json:"snapshot_url"`
}

// Index row layout: [urlkey is absent in this form]
// [timestamp, original, mimetype, statuscode, digest, length, ...].
// The first row is a header and is dropped.
const (
	rowTimestamp = 0
	rowOriginal  = 1
	rowMimeType  = 2
	rowStatus    = 3
	rowDigest    = 4
)

// decodeSnapshots parses a CDX JSON body into snapshots.
//
// The index answers with an array of arrays whose first row is a header.
// Anything else (empty body, bare object, plain string) means no captures,
// which is a valid empty result rather than an error.
func decodeSnapshots(data []byte) []Snapshot {
	var rows [][]string
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil
	}
	if len(rows) <= 1 {
		return nil
	}

	out := make([]Snapshot, 0, len(rows)-1)
	for _, row := range rows[1:] {
		s := snapshotFromRow(row)
		if !s.Valid() {
			continue
		}
		out = append(out, s)
	}
	return out
}

func snapshotFromRow(row []string) Snapshot {
	var s Snapshot
	if len(row) > rowTimestamp {
		s.Timestamp = row[rowTimestamp]
	}
	if len(row) > rowOriginal {
		s.OriginalURL = row[rowOriginal]
	}
	if len(row) > rowMimeType {
		s.MimeType = row[rowMimeType]
	}
	if len(row) > rowStatus {
		if code, err := strconv.Atoi(row[rowStatus]); err == nil {
			s.StatusCode = &code
		}
	}
	if len(row) > rowDigest {
		s.Digest = row[rowDigest]
	}
	return s
}
