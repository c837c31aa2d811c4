// Package config defines the format-agnostic configuration model for the
// application and the Loader interface that produces it.
//
// The `config.Model` is the single source of truth for the block limits,
// the publishing target and any transactions declared inline. Concrete
// loaders, such as the one for HCL, are provided in separate packages.
package config
