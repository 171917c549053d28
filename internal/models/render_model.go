package models

// Frame is one normalized still image materialized in the run workspace.
// Index is its rank in ascending lexicographic order of the field name the
// image arrived under, not upload order.
type Frame struct {
	Index     int
	FieldName string
	Path      string
}

// PlatformResult captures the outcome of one publish attempt. A nil
// *PlatformResult in the report means the target was never attempted
// (disabled), which is distinct from a failed attempt.
type PlatformResult struct {
	Success    bool   `json:"success"`
	StatusCode int    `json:"status_code"`
	Body       string `json:"body,omitempty"`
	Message    string `json:"message,omitempty"`
}

// StorageUploadResult holds the outcome of the two-call Drive protocol.
// Both raw bodies are retained for caller-side diagnostics.
type StorageUploadResult struct {
	Success        bool   `json:"success"`
	FileID         string `json:"file_id,omitempty"`
	PublicURL      string `json:"public_url,omitempty"`
	StatusCode     int    `json:"status_code"`
	CreateBody     string `json:"create_body,omitempty"`
	PermissionBody string `json:"permission_body,omitempty"`
	Message        string `json:"message,omitempty"`
}

// RenderReport is the single response object for one run.
type RenderReport struct {
	Logs       []string             `json:"logs"`
	Video      string               `json:"video,omitempty"` // base64 encoded artifact
	MimeType   string               `json:"mime_type,omitempty"`
	Storage    *StorageUploadResult `json:"storage,omitempty"`
	ArchiveURL string               `json:"archive_url,omitempty"`
	Facebook   *PlatformResult      `json:"facebook,omitempty"`
	Instagram  *PlatformResult      `json:"instagram,omitempty"`
	Tiktok     *PlatformResult      `json:"tiktok,omitempty"`
	Youtube    *PlatformResult      `json:"youtube,omitempty"`
	Error      string               `json:"error,omitempty"`
}
