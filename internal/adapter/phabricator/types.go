package phabricator

import "encoding/json"

// conduitResponse is the envelope every Conduit method returns.
type conduitResponse struct {
	Result    json.RawMessage `json:"result"`
	ErrorCode string          `json:"error_code"`
	ErrorInfo string          `json:"error_info"`
}

// revisionSearchResult is the result payload of
// differential.revision.search.
type revisionSearchResult struct {
	Data []struct {
		ID     int            `json:"id"`
		PHID   string         `json:"phid"`
		Fields revisionFields `json:"fields"`
	} `json:"data"`
}

type revisionFields struct {
	Title    string `json:"title"`
	URI      string `json:"uri"`
	Summary  string `json:"summary"`
	DiffPHID string `json:"diffPHID"`
	Status   struct {
		Name string `json:"name"`
	} `json:"status"`
}

// diffSearchResult is the result payload of differential.diff.search.
type diffSearchResult struct {
	Data []struct {
		ID   int    `json:"id"`
		PHID string `json:"phid"`
	} `json:"data"`
}
