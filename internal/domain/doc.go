// Package domain models normalized geocoding results and the provider
// contract every backend implements.
//
// # Address records
//
// Every backend response is normalized into an [Address]. Fields are
// pointers: nil means the backend did not supply the value, which is
// distinct from an empty string or a 0.0 coordinate. The JSON encoding
// always carries the full key set with null for unset fields.
//
// Loopback lookups short-circuit to [LocalhostDefaults]:
//
//	city, county, region, country = "localhost"
//
// A record with no field set is never returned as a result; providers report
// it as [ErrNoResult] instead.
//
// # Failure kinds
//
// Provider failures fall into a closed set of kinds:
//
//	invalid_credentials   key missing, or rejected by the backend
//	unsupported_operation query shape or direction the backend cannot answer
//	no_result             backend answered without usable data
//
// Match them with errors.Is against [ErrInvalidCredentials],
// [ErrUnsupportedOperation] and [ErrNoResult], or classify any error with
// [KindOf]. Transport failures keep their own type and classify as
// KindUnknown; retrying them or falling back to another provider is the
// caller's decision.
package domain
