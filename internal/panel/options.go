package panel

import (
	"time"

	"github.com/intu-mobility/service-ride/internal/platform/domain"
)

// RideOption is one selectable row in the drawer: a vehicle class with its
// quoted price.
type RideOption struct {
	ClassID     string  `json:"class_id"`
	Name        string  `json:"name"`
	Icon        string  `json:"icon"`
	Description string  `json:"description"`
	ETAText     string  `json:"eta_text"`
	Price       float64 `json:"price"`
}

// ConfirmFunc receives the chosen option once the confirmation delay has
// elapsed.
type ConfirmFunc func(option RideOption)

// SetOptions replaces the option list. A previous selection survives only if
// its class is still present.
func (d *Drawer) SetOptions(options []RideOption) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.options = append([]RideOption(nil), options...)

	if d.selectedID == "" {
		return
	}
	for _, opt := range d.options {
		if opt.ClassID == d.selectedID {
			return
		}
	}
	d.selectedID = ""
}

// Options returns the rows currently shown.
func (d *Drawer) Options() []RideOption {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]RideOption(nil), d.options...)
}

// Select marks a single option as chosen. Selecting replaces any previous
// choice.
func (d *Drawer) Select(classID string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, opt := range d.options {
		if opt.ClassID == classID {
			d.selectedID = classID
			return nil
		}
	}
	return domain.NewNotFoundError("ride option", classID)
}

// Selected returns the chosen option, if any.
func (d *Drawer) Selected() (RideOption, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for _, opt := range d.options {
		if opt.ClassID == d.selectedID {
			return opt, true
		}
	}
	return RideOption{}, false
}

// CanConfirm reports whether the confirm action is actionable: an option is
// selected and no confirmation is already running.
func (d *Drawer) CanConfirm() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.selectedID != "" && !d.confirming
}

// Confirm starts the ride handoff. After ConfirmLatency the callback
// fires with the chosen option and the drawer closes. A second Confirm while
// one is pending is rejected.
func (d *Drawer) Confirm(onDone ConfirmFunc) error {
	d.mu.Lock()
	if d.confirming {
		d.mu.Unlock()
		return domain.NewValidationError("confirmation already in progress")
	}
	var chosen *RideOption
	for i := range d.options {
		if d.options[i].ClassID == d.selectedID {
			chosen = &d.options[i]
			break
		}
	}
	if chosen == nil {
		d.mu.Unlock()
		return domain.NewValidationError("no ride option selected")
	}
	d.confirming = true
	option := *chosen
	latency := d.cfg.ConfirmLatency
	d.mu.Unlock()

	time.AfterFunc(latency, func() {
		d.mu.Lock()
		stillConfirming := d.confirming
		d.confirming = false
		d.mu.Unlock()
		if !stillConfirming {
			return
		}
		d.Close()
		if onDone != nil {
			onDone(option)
		}
	})
	return nil
}
