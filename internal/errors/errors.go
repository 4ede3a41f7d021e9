// Package errors provides structured error types for theia operations.
package errors

import (
	"errors"
	"fmt"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// KindNoSubtitleItems represents an empty or missing subtitle track.
	KindNoSubtitleItems ErrorKind = iota
	// KindMalformedShotCode represents a subtitle item whose first token is empty or invalid.
	KindMalformedShotCode
	// KindNoCounterClip represents a shot span with no intersecting counter clip.
	KindNoCounterClip
	// KindAmbiguousTrackRole represents a track range yielding zero usable element tracks.
	KindAmbiguousTrackRole
	// KindOldTimelineNotFound represents a missing comparison timeline.
	KindOldTimelineNotFound
	// KindTimelineNotFound represents a missing primary timeline.
	KindTimelineNotFound
	// KindSnapshot represents a malformed or unreadable timeline snapshot.
	KindSnapshot
	// KindConfig represents configuration validation errors.
	KindConfig
	// KindStore represents model store failures.
	KindStore
	// KindModelNotFound represents a saved model missing from the store.
	KindModelNotFound
	// KindInconsistentModel represents a reconstructed model failing consistency checks.
	KindInconsistentModel
)

// String returns a string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case KindNoSubtitleItems:
		return "No subtitle items"
	case KindMalformedShotCode:
		return "Malformed shot code"
	case KindNoCounterClip:
		return "No counter clip"
	case KindAmbiguousTrackRole:
		return "Ambiguous track role"
	case KindOldTimelineNotFound:
		return "Old timeline not found"
	case KindTimelineNotFound:
		return "Timeline not found"
	case KindSnapshot:
		return "Snapshot error"
	case KindConfig:
		return "Configuration error"
	case KindStore:
		return "Store error"
	case KindModelNotFound:
		return "Model not found"
	case KindInconsistentModel:
		return "Inconsistent model"
	default:
		return "Unknown error"
	}
}

// CoreError is the main error type for theia operations. ShotCode and Track
// carry the offending context when known.
type CoreError struct {
	Kind       ErrorKind
	Message    string
	ShotCode   string
	Track      int
	Underlying error
}

func (e *CoreError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Message)
	if e.ShotCode != "" {
		msg = fmt.Sprintf("%s (shot %s)", msg, e.ShotCode)
	}
	if e.Track > 0 {
		msg = fmt.Sprintf("%s (track %d)", msg, e.Track)
	}
	if e.Underlying != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Underlying)
	}
	return msg
}

func (e *CoreError) Unwrap() error {
	return e.Underlying
}

// Is reports whether target matches this error's kind.
func (e *CoreError) Is(target error) bool {
	t, ok := target.(*CoreError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewNoSubtitleItemsError creates an error for an empty subtitle track.
func NewNoSubtitleItemsError(timeline string) *CoreError {
	return &CoreError{
		Kind:    KindNoSubtitleItems,
		Message: fmt.Sprintf("no subtitle items found on timeline %q; place shot codes on a subtitle track", timeline),
	}
}

// NewMalformedShotCodeError creates an error for a bad shot code token.
func NewMalformedShotCodeError(message string, shotCode string) *CoreError {
	return &CoreError{Kind: KindMalformedShotCode, Message: message, ShotCode: shotCode}
}

// NewNoCounterClipError creates an error for a shot span without counter coverage.
func NewNoCounterClipError(shotCode string, track int) *CoreError {
	return &CoreError{
		Kind:     KindNoCounterClip,
		Message:  "no counter clip covers the shot boundary",
		ShotCode: shotCode,
		Track:    track,
	}
}

// NewAmbiguousTrackRoleError creates an error for an unusable track range.
func NewAmbiguousTrackRoleError(message string) *CoreError {
	return &CoreError{Kind: KindAmbiguousTrackRole, Message: message}
}

// NewOldTimelineNotFoundError creates an error for a missing comparison timeline.
func NewOldTimelineNotFoundError(name string) *CoreError {
	return &CoreError{Kind: KindOldTimelineNotFound, Message: fmt.Sprintf("comparison timeline %q does not exist", name)}
}

// NewTimelineNotFoundError creates an error for a missing primary timeline.
func NewTimelineNotFoundError(name string) *CoreError {
	return &CoreError{Kind: KindTimelineNotFound, Message: fmt.Sprintf("timeline %q does not exist", name)}
}

// NewSnapshotError creates an error for an unreadable timeline snapshot.
func NewSnapshotError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindSnapshot, Message: message, Underlying: underlying}
}

// NewConfigError creates a new configuration error.
func NewConfigError(message string) *CoreError {
	return &CoreError{Kind: KindConfig, Message: message}
}

// NewStoreError creates a new model store error.
func NewStoreError(message string, underlying error) *CoreError {
	return &CoreError{Kind: KindStore, Message: message, Underlying: underlying}
}

// NewModelNotFoundError creates an error for a saved model missing from the store.
func NewModelNotFoundError(timeline string) *CoreError {
	return &CoreError{Kind: KindModelNotFound, Message: fmt.Sprintf("no saved model for timeline %q", timeline)}
}

// NewInconsistentModelError creates an error for a model failing consistency checks.
func NewInconsistentModelError(message string, shotCode string) *CoreError {
	return &CoreError{Kind: KindInconsistentModel, Message: message, ShotCode: shotCode}
}

// IsKind checks if the error has the specified kind.
func IsKind(err error, kind ErrorKind) bool {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind == kind
	}
	return false
}

// Title returns the short display heading for an error.
func Title(err error) string {
	var coreErr *CoreError
	if errors.As(err, &coreErr) {
		return coreErr.Kind.String()
	}
	return "Error"
}

// Suggestion returns a remediation hint for an error, or empty when there is
// nothing actionable to say.
func Suggestion(err error) string {
	var coreErr *CoreError
	if !errors.As(err, &coreErr) {
		return ""
	}
	switch coreErr.Kind {
	case KindNoSubtitleItems:
		return "add a subtitle track with one item per shot; the first word of each item is the shot code"
	case KindNoCounterClip:
		return "extend the counter track so a counter clip covers every shot boundary"
	case KindAmbiguousTrackRole:
		return "adjust the track range or rename tracks; counter and ref tracks are never element tracks"
	case KindOldTimelineNotFound:
		return "check the old timeline name, or save its model first and compare with --saved"
	case KindConfig:
		return "fix the configuration value and retry"
	default:
		return ""
	}
}

// IsOldTimelineNotFound checks if the error is a missing comparison timeline.
func IsOldTimelineNotFound(err error) bool {
	return IsKind(err, KindOldTimelineNotFound)
}

// IsModelNotFound checks if the error is a missing saved model.
func IsModelNotFound(err error) bool {
	return IsKind(err, KindModelNotFound)
}
