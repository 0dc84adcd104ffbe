package auth

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "

	SessionKeyAccountID = "account_id"
	SessionKeyEmail     = "email"

	redisSessionKeyPrefix = "session:"
)
