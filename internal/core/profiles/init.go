// Package profiles registers the mapping profiles with the core registry.
// Import this package to ensure all profiles are registered.
//
// Each profile file uses init() to register its mapping. Overrides from a
// mapping file are applied on top of the registered profile by Resolve.
package profiles
