package instancing

import "github.com/charmbracelet/log"

// UploaderBuilderOption is a function that configures an Uploader during construction.
type UploaderBuilderOption func(*Uploader)

// WithLogger sets the logger used for staging growth messages.
func WithLogger(l *log.Logger) UploaderBuilderOption {
	return func(u *Uploader) {
		u.logger = l
	}
}

// WithInitialCapacity sets how many instances the staging buffer holds before its first growth.
//
// Parameters:
//   - instances: the initial capacity, values below 1 are ignored
//
// Returns:
//   - UploaderBuilderOption: a function that applies the capacity to an Uploader
func WithInitialCapacity(instances int) UploaderBuilderOption {
	return func(u *Uploader) {
		if instances > 0 {
			u.initial = instances
		}
	}
}
