package playback

import (
	"github.com/tphakala/soundbank/internal/errors"
)

var (
	// ErrItemNotFound is returned when an item name is not in the registry
	ErrItemNotFound = errors.New(nil).
			Component(ComponentPlayback).
			Category(errors.CategoryNotFound).
			Context("resource", "item").
			Build()

	// ErrCategoryNotFound is returned when a category name is not in the registry
	ErrCategoryNotFound = errors.New(nil).
				Component(ComponentPlayback).
				Category(errors.CategoryNotFound).
				Context("resource", "category").
				Build()

	// ErrRedirectDepthExceeded is returned when redirects nest deeper than allowed
	ErrRedirectDepthExceeded = errors.New(nil).
					Component(ComponentPlayback).
					Category(errors.CategoryRedirect).
					Context("resource", "redirect").
					Build()

	// ErrPickDisabled is returned when an item with PickDisabled is played without an index
	ErrPickDisabled = errors.New(nil).
			Component(ComponentPlayback).
			Category(errors.CategoryPolicy).
			Context("resource", "pick_mode").
			Build()

	// ErrSubItemIndex is returned for an explicit pick outside the sub-item range
	ErrSubItemIndex = errors.New(nil).
			Component(ComponentPlayback).
			Category(errors.CategoryValidation).
			Context("resource", "sub_item").
			Build()

	// ErrPoolExhausted is returned when a prefab kind has no capacity left
	ErrPoolExhausted = errors.New(nil).
				Component(ComponentPlayback).
				Category(errors.CategoryResource).
				Context("resource", "voice_pool").
				Build()

	// ErrClipNotFound is returned by backends that cannot open a clip
	ErrClipNotFound = errors.New(nil).
			Component(ComponentPlayback).
			Category(errors.CategoryBackend).
			Context("resource", "clip").
			Build()

	// ErrEngineClosed is returned by operations on a closed engine
	ErrEngineClosed = errors.New(nil).
			Component(ComponentPlayback).
			Category(errors.CategoryState).
			Context("resource", "engine").
			Build()
)

// ErrRateLimited is returned when a trigger arrives inside an item's
// minimum time between calls
var ErrRateLimited = errors.New(nil).
	Component(ComponentPlayback).
	Category(errors.CategoryPolicy).
	Context("resource", "rate_limit").
	Build()
