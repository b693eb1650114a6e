package domain

import "time"

// Message is one queued unit of content for a device. Content is opaque to
// the relay. Delivered transitions false→true exactly once, never back.
type Message struct {
	MessageID string    `json:"id" dynamodbav:"message_id"`
	DeviceID  string    `json:"device_id" dynamodbav:"device_id"`
	Header    string    `json:"header" dynamodbav:"header"`
	Content   string    `json:"content" dynamodbav:"content"`
	BlobID    *string   `json:"blob_id" dynamodbav:"blob_id"`
	Delivered bool      `json:"delivered" dynamodbav:"delivered"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

type SendRequest struct {
	PublicKey string  `json:"public_key" validate:"required"`
	Header    string  `json:"header" validate:"required"`
	Content   string  `json:"content" validate:"required"`
	BlobID    *string `json:"blob_id"`
}
