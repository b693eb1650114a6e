package domain

import "time"

// AttachmentMeta records the provenance of a blob stored in the object store.
// One record per blob id; only used for per-device usage accounting.
type AttachmentMeta struct {
	BlobID    string    `json:"blob_id" dynamodbav:"blob_id"`
	DeviceID  string    `json:"device_id" dynamodbav:"device_id"`
	Name      string    `json:"name" dynamodbav:"name"`
	Size      int64     `json:"size" dynamodbav:"size"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}
