package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Platform string

const (
	PlatformFacebook  Platform = "facebook"
	PlatformTwitter   Platform = "twitter"
	PlatformGoogleAds Platform = "google-ads"
)

// Platforms lists every platform the publish endpoint accepts.
var Platforms = []Platform{PlatformFacebook, PlatformTwitter, PlatformGoogleAds}

func (p Platform) Valid() bool {
	for _, known := range Platforms {
		if p == known {
			return true
		}
	}
	return false
}

// PublishRequest is built from the workflow state at publish time and never stored by the client.
type PublishRequest struct {
	Platform     Platform `json:"platform"`
	AccountID    string   `json:"accountId"`
	IncludeText  bool     `json:"shareText"`
	IncludeImage bool     `json:"shareImage"`
	ProductLink  string   `json:"productLink"`
	AdText       *string  `json:"adText"`
	AdImage      *string  `json:"adImage"`
}

// PublishConfirmation is whatever the publish endpoint chose to tell us.
// Only the fields below are interpreted; Raw keeps the full body.
type PublishConfirmation struct {
	ID       string         `json:"id,omitempty"`
	Platform Platform       `json:"platform,omitempty"`
	Status   string         `json:"status,omitempty"`
	Message  string         `json:"message,omitempty"`
	Raw      map[string]any `json:"-"`
}

type PublishStatus string

const (
	PublishAccepted PublishStatus = "ACCEPTED"
	PublishRejected PublishStatus = "REJECTED"
)

// PublishRecord is the backend's ledger row for every publish attempt.
type PublishRecord struct {
	ID           uuid.UUID      `gorm:"type:uuid;primary_key;" json:"id"`
	Platform     Platform       `gorm:"type:varchar(20);index;not null" json:"platform"`
	AccountID    string         `gorm:"type:varchar(100);index;not null" json:"account_id"`
	ProductLink  string         `gorm:"type:text" json:"product_link"`
	ShareText    bool           `gorm:"default:false" json:"share_text"`
	ShareImage   bool           `gorm:"default:false" json:"share_image"`
	AdText       *string        `gorm:"type:text" json:"ad_text,omitempty"`
	AdImage      *string        `gorm:"type:text" json:"ad_image,omitempty"`
	Status       PublishStatus  `gorm:"type:varchar(20);index;default:'ACCEPTED'" json:"status"`
	Confirmation datatypes.JSON `gorm:"type:jsonb" json:"confirmation"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewPublishRecord(req PublishRequest) *PublishRecord {
	return &PublishRecord{
		ID:          uuid.New(),
		Platform:    req.Platform,
		AccountID:   req.AccountID,
		ProductLink: req.ProductLink,
		ShareText:   req.IncludeText,
		ShareImage:  req.IncludeImage,
		AdText:      req.AdText,
		AdImage:     req.AdImage,
		Status:      PublishAccepted,
		CreatedAt:   time.Now(),
	}
}
