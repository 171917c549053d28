package transfer

// TargetConfig is the per-platform configuration supplied by the caller on
// every invocation. Credentials are never stored server side.
type TargetConfig struct {
	Enabled   bool
	Token     string
	TargetID  string
	Extra     string // call-to-action link, cover image URL or category, per target
	SessionID string
}

// RenderCreation carries the raw form values of one render request.
// FrameDuration stays a string here; parsing with the documented fallback
// happens in the service.
type RenderCreation struct {
	Prompt        string
	Title         string
	Caption       string
	FrameDuration string
	DriveToken    string
	DriveFolder   string
	Facebook      TargetConfig
	Instagram     TargetConfig
	Tiktok        TargetConfig
	Youtube       TargetConfig
}
