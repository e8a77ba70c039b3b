// Package control
// Author: momentics <momentics@gmail.com>
//
// Configuration, runtime metrics and debug introspection for hioload-ua.
//
// Provides:
//   - YAML configuration loading with defaults
//   - Prometheus collectors for the asynchronous service layer
//   - Debug probe registration and state export
package control
