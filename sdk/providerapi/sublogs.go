package providerapi

import "time"

// SubLogEntry is one subscription-traffic log entry. The upstream schema
// varies per provider; this captures the fields common across providers
// that expose a sub-logs endpoint.
type SubLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Upload    int64     `json:"upload"`
	Download  int64     `json:"download"`
	IP        string    `json:"ip"`
	Location  string    `json:"location,omitempty"`
}

// Paginate slices logs by the optional page_current/page_size pair. Per
// §4.J, when only one of the two is supplied, the full unpaginated list is
// returned — this mirrors the upstream behavior rather than "fixing" it.
func Paginate(logs []SubLogEntry, pageCurrent, pageSize *int) []SubLogEntry {
	if pageCurrent == nil || pageSize == nil {
		return logs
	}
	if *pageCurrent < 1 || *pageSize < 1 {
		return logs
	}
	start := (*pageCurrent - 1) * *pageSize
	if start >= len(logs) {
		return nil
	}
	end := start + *pageSize
	if end > len(logs) {
		end = len(logs)
	}
	return logs[start:end]
}
