package domain

import "time"

// Device is a registered client. The public key is the stable identity a
// sender addresses; the api key is the secret that proves ownership.
type Device struct {
	DeviceID  string    `json:"id" dynamodbav:"device_id"`
	PublicKey string    `json:"public_key" dynamodbav:"public_key"`
	APIKey    string    `json:"-" dynamodbav:"api_key"`
	Active    bool      `json:"active" dynamodbav:"active"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
}

type RegisterRequest struct {
	PublicKey string `json:"public_key" validate:"required"`
}
