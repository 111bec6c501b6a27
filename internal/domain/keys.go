package domain

type CtxKey string

const (
	KeyIdentity  CtxKey = "Identity"
	KeyRequestID CtxKey = "RequestID"
)

// AnonymousIdentity is the cache-key identity used when no subject claim is
// present on the request.
const AnonymousIdentity = "anonymous"
