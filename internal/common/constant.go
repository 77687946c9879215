package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the access
// token on outbound requests.
const AccessTokenHeaderName = "access_token"

// AdminTokenHeaderName carries the operator token for maintenance calls.
const AdminTokenHeaderName = "admin_token"
