// Package loop drives per-frame page updates and isolates failures: a frame that fails
// is logged, followed by one repair pass, and the next frame runs normally.
package loop

import (
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"

	"casatour/internal/logger"
)

// Result is the outcome of one frame.
type Result struct {
	Err  error
	Step string // which part of the frame failed, for logs
}

// OK is the result of a successful frame.
func OK() Result {
	return Result{}
}

// Fail returns a failed result for step.
func Fail(step string, err error) Result {
	if err == nil {
		err = errors.New("unspecified failure")
	}
	return Result{Err: err, Step: step}
}

// Failed reports whether the frame failed.
func (r Result) Failed() bool {
	return r.Err != nil
}

// Page is anything the driver can tick. Repair is the recovery step run after a failed
// frame; it should fix what it can and report what it could not.
type Page interface {
	Tick(dt float32) Result
	Repair() error
}

// Stats counts frames for the debug overlay.
type Stats struct {
	Frames   uint64
	Failures uint64
	Repairs  uint64
	LastErr  error
}

// Driver runs frames for one page at a time.
type Driver struct {
	Stats Stats
	log   *logrus.Entry
}

// NewDriver returns a driver logging under the "loop" component.
func NewDriver() *Driver {
	return &Driver{log: logger.For("loop")}
}

// Step runs one frame of p. A panic inside Tick becomes a failed result. A failed frame
// triggers p.Repair; a failing or panicking repair is logged and otherwise ignored.
func (d *Driver) Step(p Page, dt float32) Result {
	d.Stats.Frames++
	res := d.tick(p, dt)
	if !res.Failed() {
		return res
	}
	d.Stats.Failures++
	d.Stats.LastErr = res.Err
	d.log.WithError(res.Err).WithField("step", res.Step).Error("frame failed, repairing")

	if err := d.repair(p); err != nil {
		d.log.WithError(err).Warn("repair incomplete")
	}
	d.Stats.Repairs++
	return res
}

func (d *Driver) tick(p Page, dt float32) (res Result) {
	defer func() {
		if rec := recover(); rec != nil {
			d.log.Debugf("frame panic stack:\n%s", debug.Stack())
			res = Fail("tick", fmt.Errorf("panic: %v", rec))
		}
	}()
	return p.Tick(dt)
}

func (d *Driver) repair(p Page) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("repair panic: %v", rec)
		}
	}()
	return p.Repair()
}
