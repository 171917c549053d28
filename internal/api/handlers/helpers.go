package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/maheshrc27/clipcast/internal/transfer"
)

// targetConfig reads one platform's form fields by prefix, e.g. fb_enabled,
// fb_token, fb_page_id, fb_extra, fb_session_id. idField is empty for targets
// whose protocol is keyed by the token alone.
func targetConfig(c *fiber.Ctx, prefix, idField string) transfer.TargetConfig {
	tc := transfer.TargetConfig{
		Enabled:   c.FormValue(prefix+"_enabled") == "true",
		Token:     c.FormValue(prefix + "_token"),
		Extra:     c.FormValue(prefix + "_extra"),
		SessionID: c.FormValue(prefix + "_session_id"),
	}
	if idField != "" {
		tc.TargetID = c.FormValue(prefix + "_" + idField)
	}
	return tc
}
