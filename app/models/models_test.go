package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/planty/app/models"
)

func TestHasPendingOTP(t *testing.T) {
	exp := time.Now().Add(10 * time.Minute)

	assert.False(t, models.User{}.HasPendingOTP())
	assert.False(t, models.User{OTP: "4821QK"}.HasPendingOTP())
	assert.True(t, models.User{OTP: "4821QK", OTPExpires: &exp}.HasPendingOTP())
}

func TestPlantEnums(t *testing.T) {
	for _, c := range []string{models.CategoryIndoor, models.CategoryOutdoor, models.CategorySucculents} {
		assert.True(t, models.ValidCategory(c), c)
	}
	assert.False(t, models.ValidCategory("Indoor"))
	assert.False(t, models.ValidCategory(""))

	assert.True(t, models.ValidPlantStatus("Available"))
	assert.True(t, models.ValidPlantStatus("Not Available"))
	assert.False(t, models.ValidPlantStatus("available"))
}
