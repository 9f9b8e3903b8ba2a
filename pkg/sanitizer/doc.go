// Package sanitizer provides input normalization for user-entered
// profile and booking data.
//
// All normalization functions are idempotent - applying them multiple
// times produces the same result. Functions handle invalid input
// gracefully, typically by returning empty strings or empty slices
// rather than errors. Services normalize before validating and storing.
package sanitizer
