package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a shop customer. PasswordHash and the OTP fields never leave the
// service layer; responses use resources.UserView.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password"`
	OTP          string             `bson:"otp,omitempty"`
	OTPExpires   *time.Time         `bson:"otpExpires,omitempty"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

// HasPendingOTP reports whether a reset code is waiting to be used.
func (u User) HasPendingOTP() bool {
	return u.OTP != "" && u.OTPExpires != nil
}
