package logic

import (
	"github.com/google/uuid"

	"github.com/patrickwarner/interstitial/internal/models"
)

// BuildAdRequest derives the request parameters from the resolved consent.
// Only an explicit grant yields personalized ads.
//
// Callers must resolve consent before building; an Undetermined status here
// means the bootstrap ordering was skipped.
func BuildAdRequest(consent models.ConsentStatus) models.AdRequest {
	return models.AdRequest{
		ID:              uuid.NewString(),
		NonPersonalized: consent != models.ConsentGranted,
	}
}
