package v1

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/budgeter/backend/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// apply copies the fields from src to dst. Both must be pointers to the same
// struct type, fields are the names returned by httputil.GetBodyFields.
func apply(dst, src any, fields []any) {
	d := reflect.ValueOf(dst).Elem()
	s := reflect.ValueOf(src).Elem()

	for _, f := range fields {
		name, ok := f.(string)
		if !ok {
			continue
		}

		field := d.FieldByName(name)
		if !field.IsValid() || !field.CanSet() {
			continue
		}
		field.Set(s.FieldByName(name))
	}
}

// ownedAccount verifies that the account exists and belongs to the owner.
// A nil id is valid.
func ownedAccount(c *gin.Context, id *uuid.UUID) error {
	if id == nil || *id == uuid.Nil {
		return nil
	}

	err := models.DB.Scopes(models.OwnedBy(owner(c)), models.ByID(*id)).First(&models.Account{}).Error
	if errors.Is(err, models.ErrResourceNotFound) {
		return fmt.Errorf("%w: there is no account with ID %s", models.ErrReferenceMissing, id)
	}

	return err
}
