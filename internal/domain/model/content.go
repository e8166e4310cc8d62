package model

import (
	"strings"

	"telegram-post-scheduler/internal/domain"
)

// ContentType is the media kind every item of a schedule shares.
type ContentType string

const (
	ContentText    ContentType = "text"
	ContentPhoto   ContentType = "photo"
	ContentVideo   ContentType = "video"
	ContentSticker ContentType = "sticker"
)

// ParseContentType accepts the stored names plus the "img" alias used by /newimg.
func ParseContentType(s string) (ContentType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return ContentText, nil
	case "photo", "img", "image":
		return ContentPhoto, nil
	case "video":
		return ContentVideo, nil
	case "sticker":
		return ContentSticker, nil
	}
	return "", domain.ErrInvalidArgument
}

func (t ContentType) Valid() bool {
	switch t {
	case ContentText, ContentPhoto, ContentVideo, ContentSticker:
		return true
	}
	return false
}

// Captionable reports whether the platform accepts a caption for this type.
func (t ContentType) Captionable() bool {
	return t == ContentPhoto || t == ContentVideo
}

// ContentItem is one entry of a playlist. Data holds literal text for text
// items and a platform file reference otherwise.
type ContentItem struct {
	Type    ContentType `json:"type"`
	Data    string      `json:"data"`
	Caption string      `json:"caption,omitempty"`
}

func NewContentItem(t ContentType, data, caption string) (ContentItem, error) {
	if !t.Valid() || strings.TrimSpace(data) == "" {
		return ContentItem{}, domain.ErrInvalidArgument
	}
	if !t.Captionable() {
		caption = ""
	}
	return ContentItem{Type: t, Data: data, Caption: caption}, nil
}
