package store

import (
	"changepoint/internal/changeevent/models"
	id "changepoint/pkg/domain"
)

// Filter narrows List. Nil fields match everything.
type Filter struct {
	Skip      int
	Take      int
	Status    *models.Status
	CompanyID *id.CompanyID
}
