// Package model defines the core data structures used throughout methodstatus.
//
// This package contains the following main types:
//   - Element: capability interface onto an object in the host model repository
//   - Repository: the entry point that yields the selected solutions
//   - StatusRow and MaturityRow: one row per solution in each output table
//   - StatusReport: the result of one report run, rendered as Tables
//
// Elements are never owned by this module. A report run holds transient
// references that are valid for the duration of that run only.
package model
