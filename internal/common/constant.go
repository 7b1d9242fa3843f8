package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on inbound requests.
const AccessTokenHeaderName = "access_token"

// TimezoneOffsetHeaderName carries the caller's timezone offset in minutes
// (positive west of UTC). Used both as an HTTP header and as gRPC metadata.
const TimezoneOffsetHeaderName = "x-timezone-offset"
