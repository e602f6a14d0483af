package soundbank

import (
	"github.com/tphakala/soundbank/internal/errors"
)

// ComponentSoundBank identifies errors raised by this package
const ComponentSoundBank = "soundbank"

var (
	// ErrDuplicateCategory is returned when two categories share a name
	ErrDuplicateCategory = errors.New(nil).
				Component(ComponentSoundBank).
				Category(errors.CategoryConflict).
				Context("resource", "category").
				Build()

	// ErrDuplicateItem is returned when two items share a name anywhere in the bank
	ErrDuplicateItem = errors.New(nil).
				Component(ComponentSoundBank).
				Category(errors.CategoryConflict).
				Context("resource", "item").
				Build()

	// ErrInvalidSubItem is returned when a sub-item is not exactly one of clip or redirect
	ErrInvalidSubItem = errors.New(nil).
				Component(ComponentSoundBank).
				Category(errors.CategoryValidation).
				Context("resource", "sub_item").
				Build()

	// ErrInvalidValue is returned for out of range volumes, durations and limits
	ErrInvalidValue = errors.New(nil).
			Component(ComponentSoundBank).
			Category(errors.CategoryValidation).
			Context("resource", "value").
			Build()

	// ErrUnknownRedirect is returned when a redirect names an item that does not exist
	ErrUnknownRedirect = errors.New(nil).
				Component(ComponentSoundBank).
				Category(errors.CategoryNotFound).
				Context("resource", "item").
				Build()

	// ErrUnknownPickMode is returned when a pick mode name is not recognised
	ErrUnknownPickMode = errors.New(nil).
				Component(ComponentSoundBank).
				Category(errors.CategoryFileParsing).
				Context("resource", "pick_mode").
				Build()
)
