package form

import (
	"fmt"

	"github.com/joescharf/revu/internal/models"
)

// Field names one of the two draft inputs.
type Field string

const (
	FieldProductName Field = "product_name"
	FieldReviewText  Field = "review_text"
)

// ParseField converts an input name to a Field.
func ParseField(name string) (Field, error) {
	switch Field(name) {
	case FieldProductName, FieldReviewText:
		return Field(name), nil
	default:
		return "", fmt.Errorf("unknown draft field: %q", name)
	}
}

// Controller holds the in-progress review draft.
// It is not safe for concurrent use; the owning session serializes access.
type Controller struct {
	draft models.Draft
}

// New returns a controller with an empty draft.
func New() *Controller {
	return &Controller{}
}

// Update sets a single draft field. Values are stored verbatim.
func (c *Controller) Update(field Field, value string) error {
	switch field {
	case FieldProductName:
		c.draft.ProductName = value
	case FieldReviewText:
		c.draft.ReviewText = value
	default:
		return fmt.Errorf("unknown draft field: %q", string(field))
	}
	return nil
}

// Reset clears both fields.
func (c *Controller) Reset() {
	c.draft = models.Draft{}
}

// Draft returns a copy of the current draft.
func (c *Controller) Draft() models.Draft {
	return c.draft
}
