package errorx

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	TooManyRequests  Code = 100010

	// Claim codes
	UserRejected       Code = 200001
	OnChainRevert      Code = 200002
	ConfirmTimeout     Code = 200003
	VerificationFailed Code = 200004
	ClaimInFlight      Code = 200005
	NothingToClaim     Code = 200006
)
