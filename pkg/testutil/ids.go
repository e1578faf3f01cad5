package testutil

import (
	"github.com/google/uuid"

	id "changepoint/pkg/domain"
)

func NewUserID() id.UserID         { return id.UserID(uuid.New()) }
func NewCompanyID() id.CompanyID   { return id.CompanyID(uuid.New()) }
func NewEventID() id.ChangeEventID { return id.ChangeEventID(uuid.New()) }
func NewItemID() id.TaxonomyItemID { return id.TaxonomyItemID(uuid.New()) }
