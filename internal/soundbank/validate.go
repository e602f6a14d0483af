package soundbank

import (
	"fmt"

	"github.com/tphakala/soundbank/internal/errors"
)

// link indexes categories and items and resolves redirects
func (r *Registry) link() error {
	var errs []error

	for _, c := range r.categories {
		if c == nil {
			errs = append(errs, errors.Newf("nil category").Component(ComponentSoundBank).Category(errors.CategoryValidation).Build())
			continue
		}
		if _, dup := r.byCategory[c.Name]; dup {
			errs = append(errs, errors.New(ErrDuplicateCategory).Context("category", c.Name).Build())
			continue
		}
		r.byCategory[c.Name] = c

		for _, item := range c.Items {
			if item == nil {
				continue
			}
			item.Category = c
			if _, dup := r.items[item.Name]; dup {
				errs = append(errs, errors.New(ErrDuplicateItem).Context("item", item.Name).Build())
				continue
			}
			r.items[item.Name] = item
		}
	}

	for _, item := range r.items {
		for idx, sub := range item.SubItems {
			if sub == nil || !sub.IsRedirect() {
				continue
			}
			target, ok := r.items[sub.Redirect]
			if !ok {
				errs = append(errs, errors.New(ErrUnknownRedirect).
					Context("item", item.Name).
					Context("sub_item", idx).
					Context("target", sub.Redirect).
					Build())
				continue
			}
			sub.Target = target
		}
	}

	return errors.Join(errs...)
}

// validate checks value ranges. Redirect cycles are legal here and are
// caught by the selector's depth bound at play time.
func (r *Registry) validate() error {
	var errs []error

	invalid := func(where, format string, args ...any) {
		errs = append(errs, errors.New(ErrInvalidValue).
			Context("where", where).
			Context("problem", fmt.Sprintf(format, args...)).
			Build())
	}

	for _, c := range r.categories {
		if c == nil {
			continue
		}
		if c.Name == "" {
			invalid("category", "name is empty")
		}
		if !inUnitRange(c.Volume) {
			invalid(c.Name, "volume %g outside [0,1]", c.Volume)
		}

		for _, item := range c.Items {
			if item == nil {
				invalid(c.Name, "nil item")
				continue
			}
			where := c.Name + "/" + item.Name
			if item.Name == "" {
				invalid(c.Name, "item name is empty")
			}
			if !inUnitRange(item.Volume) {
				invalid(where, "volume %g outside [0,1]", item.Volume)
			}
			if item.Delay < 0 || item.MinTimeBetween < 0 {
				invalid(where, "negative delay or min_time_between_calls")
			}
			if item.MaxInstances < 0 {
				invalid(where, "max_instances %d is negative", item.MaxInstances)
			}
			if item.PickMode < PickDisabled || item.PickMode > PickTwoSimultaneously {
				invalid(where, "pick mode %d out of range", item.PickMode)
			}
			if len(item.SubItems) == 0 {
				invalid(where, "item has no sub-items")
			}

			for idx, sub := range item.SubItems {
				subWhere := fmt.Sprintf("%s[%d]", where, idx)
				if sub == nil {
					invalid(subWhere, "nil sub-item")
					continue
				}
				if (sub.Clip == "") == (sub.Redirect == "") {
					errs = append(errs, errors.New(ErrInvalidSubItem).
						Context("where", subWhere).
						Build())
				}
				errs = append(errs, validateSubItem(subWhere, sub)...)
			}
		}
	}

	return errors.Join(errs...)
}

func validateSubItem(where string, sub *SubItem) []error {
	var problems []string

	if !inUnitRange(sub.Volume) {
		problems = append(problems, fmt.Sprintf("volume %g outside [0,1]", sub.Volume))
	}
	if sub.RandomVolume < 0 || sub.RandomPitch < 0 {
		problems = append(problems, "negative random jitter")
	}
	if sub.Probability < 0 {
		problems = append(problems, fmt.Sprintf("probability %g is negative", sub.Probability))
	}
	if sub.Pan < -1 || sub.Pan > 1 {
		problems = append(problems, fmt.Sprintf("pan %g outside [-1,1]", sub.Pan))
	}
	if sub.FadeIn < 0 || sub.FadeOut < 0 || sub.ClipStart < 0 || sub.ClipStop < 0 || sub.Delay < 0 {
		problems = append(problems, "negative duration")
	}
	if sub.ClipStop > 0 && sub.ClipStop <= sub.ClipStart {
		problems = append(problems, "clip_stop must be after clip_start")
	}

	errs := make([]error, 0, len(problems))
	for _, p := range problems {
		errs = append(errs, errors.New(ErrInvalidValue).
			Context("where", where).
			Context("problem", p).
			Build())
	}
	return errs
}

func inUnitRange(v float64) bool {
	return v >= 0 && v <= 1
}
