package prayer

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidDate is wrapped by InvalidDateError.
	ErrInvalidDate = errors.New("invalid calendar date")
	// ErrInvalidCoordinate reports a latitude or longitude out of range.
	ErrInvalidCoordinate = errors.New("invalid coordinate")
	// ErrUnknownMethod is wrapped by UnknownMethodError.
	ErrUnknownMethod = errors.New("unknown calculation method")
	// ErrUnsolvableTime is wrapped by UnsolvableTimeError.
	ErrUnsolvableTime = errors.New("no valid time")
	// ErrInvalidNight reports a night with zero or negative length.
	ErrInvalidNight = errors.New("invalid night: fajr must follow maghrib")
	// ErrOrdering indicates an internal fault: computed prayers are out of order.
	ErrOrdering = errors.New("prayer times out of order")
)

// InvalidDateError is returned for dates that do not exist.
type InvalidDateError struct {
	Year, Month, Day int
}

func (e *InvalidDateError) Error() string {
	return fmt.Sprintf("invalid calendar date %04d-%02d-%02d", e.Year, e.Month, e.Day)
}

func (e *InvalidDateError) Unwrap() error { return ErrInvalidDate }

// UnknownMethodError is returned when a method identifier is not registered.
type UnknownMethodError struct {
	ID string
}

func (e *UnknownMethodError) Error() string {
	return fmt.Sprintf("unknown calculation method %q", e.ID)
}

func (e *UnknownMethodError) Unwrap() error { return ErrUnknownMethod }

// UnsolvableTimeError reports that the Sun never reaches the altitude a prayer
// needs on Date at Latitude, and no high-latitude rule could stand in.
type UnsolvableTimeError struct {
	Prayer   string
	Date     CalendarDate
	Latitude float64
	Altitude float64 // target sun altitude in degrees
}

func (e *UnsolvableTimeError) Error() string {
	return fmt.Sprintf("no valid %s time on %s at latitude %.4f: sun does not reach %.3f°",
		e.Prayer, e.Date, e.Latitude, e.Altitude)
}

func (e *UnsolvableTimeError) Unwrap() error { return ErrUnsolvableTime }
