package domain

type ctxKey string

const (
	RequesterIdCtxKey     ctxKey = "rr-requesterId"
	RequesterGroupsCtxKey ctxKey = "rr-requesterGroups"
	RequesterNameCtxKey   ctxKey = "rr-requesterName"
	APIKeyVerifiedCtxKey  ctxKey = "rr-apiKeyVerified"
)

const (
	APIKeyHeader = "X-Api-Key"
)
