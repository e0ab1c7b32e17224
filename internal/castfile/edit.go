package castfile

import (
	"fmt"

	"github.com/dshills/castedit/internal/cast"
	"github.com/dshills/castedit/internal/overlay"
)

// Action is a single edit applied at one anchor.
type Action interface {
	action()
}

// Addition inserts Event before the anchor line.
type Addition struct {
	Event cast.Event
}

// Deletion removes an inserted event or toggles deletion of the original line.
type Deletion struct{}

// ModifyData replaces the data of an inserted event, keeping its time.
type ModifyData struct {
	Data cast.EventData
}

func (Addition) action()   {}
func (Deletion) action()   {}
func (ModifyData) action() {}

// AdvancedAction is a composite edit built from several Actions. Either
// every step is applied or none is.
type AdvancedAction interface {
	advancedAction()
}

// Modify replaces the current event with Event, which may have a new time.
// The old event is deleted and Event is inserted before the next event.
type Modify struct {
	Event cast.Event
}

// Swap exchanges the data of the current event with that of Target. Times
// stay where they are.
type Swap struct {
	Target      cast.Positioned
	TargetOrder int
}

func (Modify) advancedAction() {}
func (Swap) advancedAction()   {}

// Action applies act to the chain anchored at current.Offset.
//
// order selects a position in that chain: indexes below the number of
// insertions address an inserted event, anything else addresses the
// original line. previous is required by Addition to check that the new
// event's time lies strictly between previous and current.
func (f *CastFile) Action(act Action, order int, current cast.Positioned, previous *cast.Positioned) error {
	if f.closed {
		return ErrClosed
	}
	if !f.validOffset(current.Offset) {
		return fmt.Errorf("%w: %d", ErrInvalidOffset, current.Offset)
	}
	return f.overlay.Transaction(func(tx *overlay.Txn) error {
		return f.apply(tx, act, order, current, previous)
	})
}

// AdvancedAction applies a composite edit. next is the event following
// current and is required, along with previous, by Modify.
func (f *CastFile) AdvancedAction(act AdvancedAction, order int, current cast.Positioned, previous, next *cast.Positioned) error {
	if f.closed {
		return ErrClosed
	}
	if !f.validOffset(current.Offset) {
		return fmt.Errorf("%w: %d", ErrInvalidOffset, current.Offset)
	}

	switch a := act.(type) {
	case Modify:
		if previous == nil || next == nil {
			return ErrUnverifiableTime
		}
		if !f.validOffset(next.Offset) {
			return fmt.Errorf("%w: %d", ErrInvalidOffset, next.Offset)
		}
		return f.overlay.Transaction(func(tx *overlay.Txn) error {
			if err := f.apply(tx, Deletion{}, order, current, nil); err != nil {
				return err
			}
			at := orderIn(tx, next.Offset, next.Time)
			return f.apply(tx, Addition{Event: a.Event}, at, *next, previous)
		})

	case Swap:
		if !f.validOffset(a.Target.Offset) {
			return fmt.Errorf("%w: %d", ErrInvalidOffset, a.Target.Offset)
		}
		return f.overlay.Transaction(func(tx *overlay.Txn) error {
			if err := f.apply(tx, ModifyData{Data: a.Target.Data}, order, current, nil); err != nil {
				return err
			}
			return f.apply(tx, ModifyData{Data: current.Data}, a.TargetOrder, a.Target, nil)
		})

	default:
		return fmt.Errorf("%w: unknown action %T", ErrModification, act)
	}
}

// GetOrder returns the position of base within the chain at offset: the
// index of the first insertion with exactly the same time, or the number of
// insertions (the original line) when none matches. It returns 0 when no
// chain exists.
func (f *CastFile) GetOrder(offset int, base cast.Event) int {
	c, ok := f.overlay.Get(offset)
	if !ok {
		return 0
	}
	return c.OrderOf(base.Time)
}

// Insertions returns the number of events inserted before the line at
// offset. Orders below it address insertions; it addresses the line itself.
func (f *CastFile) Insertions(offset int) int {
	c, ok := f.overlay.Get(offset)
	if !ok {
		return 0
	}
	return c.Len()
}

func orderIn(tx *overlay.Txn, offset int, t float64) int {
	c, ok := tx.Peek(offset)
	if !ok {
		return 0
	}
	return c.OrderOf(t)
}

func (f *CastFile) apply(tx *overlay.Txn, act Action, order int, current cast.Positioned, previous *cast.Positioned) error {
	switch a := act.(type) {
	case Addition:
		if previous == nil {
			return ErrUnverifiableTime
		}
		if a.Event.Data == nil {
			return fmt.Errorf("%w: event has no data", ErrModification)
		}
		if !(previous.Time < a.Event.Time && a.Event.Time < current.Time) {
			return fmt.Errorf("%w: %v is not between %v and %v",
				ErrTiming, a.Event.Time, previous.Time, current.Time)
		}
		chain := tx.Entry(current.Offset)
		chain.Insert(order, a.Event)
		return nil

	case Deletion:
		chain := tx.Entry(current.Offset)
		target := overlay.TargetAt(chain.Len(), order)
		if target.IsOriginal() && current.Offset == len(f.data) {
			return fmt.Errorf("%w: no line at end of file", ErrModification)
		}
		chain.Delete(target)
		return nil

	case ModifyData:
		if a.Data == nil {
			return fmt.Errorf("%w: no data", ErrModification)
		}
		chain := tx.Entry(current.Offset)
		if err := chain.SetData(overlay.TargetAt(chain.Len(), order), a.Data); err != nil {
			return fmt.Errorf("%w: order %d at offset %d: %w", ErrModification, order, current.Offset, err)
		}
		return nil

	default:
		return fmt.Errorf("%w: unknown action %T", ErrModification, act)
	}
}
