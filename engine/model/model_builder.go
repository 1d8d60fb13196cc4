package model

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that overrides the name taken from the imported model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMaxInstances is an option builder that sets the instance buffer capacity.
//
// Parameters:
//   - n: the maximum number of instances drawn in one frame
//
// Returns:
//   - ModelBuilderOption: a function that applies the capacity option to a model
func WithMaxInstances(n int) ModelBuilderOption {
	return func(m *model) {
		m.maxInstances = n
	}
}
