package domain

// LoginStatus tags the outcome of a password login. A password login
// never yields a full session on its own: the caller must either
// complete registration (face enrollment) or pass the face challenge.
type LoginStatus string

const (
	// LoginNeedsProfile: credentials accepted but the profile is not
	// completed yet; the access token authorizes registration
	// completion only.
	LoginNeedsProfile LoginStatus = "needs_profile"

	// LoginNeedsFaceChallenge: credentials accepted; the access token
	// carries the requires-face-verification flag and authorizes the
	// face challenge only.
	LoginNeedsFaceChallenge LoginStatus = "needs_face_verification"
)

// LoginOutcome is the result of a successful password check. No
// refresh token is issued at this stage.
type LoginOutcome struct {
	Status      LoginStatus
	AccessToken string
	ExpiresIn   int
	User        UserInfo
}

// AuthResult is a fully authenticated session: access plus refresh
// token, produced by face verification or registration completion.
type AuthResult struct {
	Tokens *TokenPair
	User   UserInfo
}
