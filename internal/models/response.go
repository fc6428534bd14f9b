package models

import "time"

// LookupSuccessCode is the code the lookup service returns on success.
const LookupSuccessCode = 200

// LookupResponse is the envelope returned by the lookup service
type LookupResponse struct {
	Code    int            `json:"code"`
	Data    []ListingEntry `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
	Msg     string         `json:"msg,omitempty"`
}

// Succeeded reports whether the envelope carries a listing
func (r LookupResponse) Succeeded() bool {
	return r.Code == LookupSuccessCode
}

// ErrorText returns the service-provided failure message, preferring message over msg.
func (r LookupResponse) ErrorText() string {
	if r.Message != "" {
		return r.Message
	}
	return r.Msg
}

// PanelsResponse mirrors the widget's visible regions
type PanelsResponse struct {
	Loading   bool   `json:"loading"`
	Error     bool   `json:"error"`
	ErrorText string `json:"error_text,omitempty"`
	Result    bool   `json:"result"`
}

// TreeNodeResponse is the JSON form of a rendered tree node
type TreeNodeResponse struct {
	ID          string             `json:"id"`
	Name        string             `json:"name"`
	Folder      bool               `json:"folder"`
	Expanded    bool               `json:"expanded,omitempty"`
	Icon        string             `json:"icon"`
	Category    string             `json:"category,omitempty"`
	Size        string             `json:"size,omitempty"`
	DownloadURL string             `json:"download_url,omitempty"`
	Children    []TreeNodeResponse `json:"children,omitempty"`
}

// LookupResultResponse is returned by the JSON lookup endpoint
type LookupResultResponse struct {
	Key     string             `json:"key,omitempty"`
	Panels  PanelsResponse     `json:"panels"`
	Tree    []TreeNodeResponse `json:"tree"`
	Folders int                `json:"folders"`
	Files   int                `json:"files"`
}

// ThemeResponse reports the applied display theme
type ThemeResponse struct {
	Theme     string `json:"theme"`
	Icon      string `json:"icon"`
	Persisted bool   `json:"persisted"`
}

// ThemeSystemRequest carries a system dark-mode change reported by the browser
type ThemeSystemRequest struct {
	Dark *bool `json:"dark" binding:"required"`
}

// SystemResources represents process resource information
type SystemResources struct {
	CPUCount      int     `json:"cpu_count"`
	CPUPercent    float64 `json:"cpu_percent"`
	MemoryRSS     uint64  `json:"memory_rss"`
	MemoryVMS     uint64  `json:"memory_vms"`
	MemoryPercent float32 `json:"memory_percent"`
	NumGoroutine  int     `json:"num_goroutine"`
}

// ServerInfoResponse represents the server info response
type ServerInfoResponse struct {
	Uptime    float64         `json:"uptime"`
	IdleTime  float64         `json:"idle_time"`
	Lookups   uint64          `json:"lookups"`
	Resources SystemResources `json:"resources"`
}

// ServerInfo represents server information
type ServerInfo struct {
	StartTime      time.Time `json:"start_time"`
	LastLookupTime time.Time `json:"last_lookup_time"`
	Lookups        uint64    `json:"lookups"`
	Endpoint       string    `json:"endpoint"`
}
