package transfer

type InstagramContainerRequest struct {
	MediaType   string `json:"media_type"`
	VideoURL    string `json:"video_url"`
	Caption     string `json:"caption"`
	CoverURL    string `json:"cover_url,omitempty"`
	AccessToken string `json:"access_token"`
}

type InstagramContainerResponse struct {
	ID string `json:"id"`
}

type InstagramPublishRequest struct {
	CreationID  string `json:"creation_id"`
	AccessToken string `json:"access_token"`
}
