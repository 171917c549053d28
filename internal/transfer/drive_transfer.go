package transfer

type DriveFileMetadata struct {
	Name     string   `json:"name"`
	MimeType string   `json:"mimeType"`
	Parents  []string `json:"parents,omitempty"`
}

type DriveFileResponse struct {
	ID string `json:"id"`
}

type DrivePermissionRequest struct {
	Role string `json:"role"`
	Type string `json:"type"`
}
