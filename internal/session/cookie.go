package session

import "net/http"

// CookieName is the session cookie carrying the Google ID token.
const CookieName = "access_token"

// Options captures the environment-dependent cookie attributes.
type Options struct {
	Secure   bool
	SameSite http.SameSite
}

// OptionsForEnv returns the cookie attributes for the given environment.
// Production serves the frontend from another origin, so the cookie must
// be Secure with SameSite=None; everywhere else Lax is enough.
func OptionsForEnv(production bool) Options {
	if production {
		return Options{
			Secure:   true,
			SameSite: http.SameSiteNoneMode,
		}
	}
	return Options{
		Secure:   false,
		SameSite: http.SameSiteLaxMode,
	}
}

// SetToken issues the session cookie. maxAge is the remaining token
// lifetime in seconds.
func SetToken(w http.ResponseWriter, token string, maxAge int, opts Options) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}

// ClearToken removes the session cookie from the client.
func ClearToken(w http.ResponseWriter, opts Options) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   opts.Secure,
		SameSite: opts.SameSite,
	})
}
