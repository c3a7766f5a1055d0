package echoapi

import (
	"net/http"
	"net/url"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/user"
)

const (
	contextTokenKey = "sessionToken"
	contextUserKey  = "user"
	stateCookieName = "oauth_state"
	stateExpiration = 10 * time.Minute
)

var nowFunc = time.Now // mockable

// Claims represents the session claims transmitted via the session cookie.
type Claims struct {
	jwt.StandardClaims
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// sessionManager issues and checks the HS256 session token kept in an HttpOnly cookie.
type sessionManager struct {
	appName    string
	cookie     string
	secret     []byte
	expiration time.Duration
	secure     bool
}

func newSessionManager(conf *core.Config) sessionManager {
	return sessionManager{
		appName:    conf.AppName,
		cookie:     conf.Server.SessionCookie,
		secret:     []byte(conf.Server.SessionSecret),
		expiration: conf.Server.SessionExpiration,
		secure:     conf.IsProduction(),
	}
}

func (sm sessionManager) jwtConfig() middleware.JWTConfig {
	return middleware.JWTConfig{
		SigningKey:    sm.secret,
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    contextTokenKey,
		Claims:        new(Claims),
		TokenLookup:   "cookie:" + sm.cookie,
	}
}

func (sm sessionManager) middleware() echo.MiddlewareFunc {
	return middleware.JWTWithConfig(sm.jwtConfig())
}

func (sm sessionManager) claims(usr user.User) *Claims {
	now := nowFunc()
	return &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    sm.appName,
			Subject:   usr.GoogleID,
			ExpiresAt: now.Add(sm.expiration).Unix(),
			IssuedAt:  now.Unix(),
		},
		Name:  usr.Name,
		Email: usr.Email,
	}
}

// generateToken generates a signed JWT token string representing the user Claims.
func (sm sessionManager) generateToken(claims *Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	ss, err := token.SignedString(sm.secret)
	if err != nil {
		return "", errors.Wrap(err, "signing token")
	}
	return ss, nil
}

func (sm sessionManager) sameSite() http.SameSite {
	if sm.secure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func (sm sessionManager) setCookie(ctx echo.Context, name, value string, maxAge time.Duration) {
	ctx.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Expires:  nowFunc().Add(maxAge),
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: sm.sameSite(),
	})
}

func (sm sessionManager) clearCookie(ctx echo.Context, name string) {
	ctx.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: sm.sameSite(),
	})
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(contextTokenKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

// getContextUser loads the session user once per request.
// A session whose user no longer exists is unauthenticated.
func getContextUser(ctx echo.Context, svc user.ServiceInterface) (user.User, error) {
	if usr, ok := ctx.Get(contextUserKey).(user.User); ok {
		return usr, nil
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return user.User{}, errors.Wrap(err, "getting context claims")
	}

	usr, err := svc.GetByGoogleID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return user.User{}, errUnauthorized
		}
		return user.User{}, errors.Wrap(err, "finding user by google id")
	}
	ctx.Set(contextUserKey, usr)
	return usr, nil
}

type authApi struct {
	sessions    sessionManager
	svc         user.ServiceInterface
	identity    user.IdentityProvider
	frontendURL string
	logger      core.Logger
}

func registerAuthAPI(g *echo.Group, jwt echo.MiddlewareFunc, sessions sessionManager, deps ServerDeps) {
	api := authApi{
		sessions:    sessions,
		svc:         deps.UserSvc,
		identity:    deps.Identity,
		frontendURL: deps.Conf.FrontendURL,
		logger:      deps.Logger,
	}

	g.GET("/google", api.login)
	g.GET("/google/callback", api.callback)
	g.POST("/logout", api.logout)
	g.GET("/me", api.me, jwt)
}

func (api *authApi) login(ctx echo.Context) error {
	state := uuid.NewString()
	api.sessions.setCookie(ctx, stateCookieName, state, stateExpiration)
	return ctx.Redirect(http.StatusTemporaryRedirect, api.identity.AuthCodeURL(state))
}

// callback finishes the OAuth flow and sends the browser back to the frontend.
// Provider failures redirect with an error query instead of rendering an API error.
func (api *authApi) callback(ctx echo.Context) error {
	if e := ctx.QueryParam("error"); e != "" {
		return api.redirectFailure(ctx, e)
	}

	cookie, err := ctx.Cookie(stateCookieName)
	if err != nil || cookie.Value == "" || cookie.Value != ctx.QueryParam("state") {
		return errInvalidState
	}
	api.sessions.clearCookie(ctx, stateCookieName)

	code := ctx.QueryParam("code")
	if code == "" {
		return errMissingCode
	}

	reqCtx := ctx.Request().Context()
	profile, err := api.identity.Exchange(reqCtx, code)
	if err != nil {
		api.logger.Error("exchanging authorization code", err)
		return api.redirectFailure(ctx, "auth_failed")
	}
	usr, err := api.svc.Login(reqCtx, profile)
	if err != nil {
		return errors.Wrap(err, "logging in")
	}

	token, err := api.sessions.generateToken(api.sessions.claims(usr))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	api.sessions.setCookie(ctx, api.sessions.cookie, token, api.sessions.expiration)

	return ctx.Redirect(http.StatusFound, api.frontendURL)
}

func (api *authApi) redirectFailure(ctx echo.Context, reason string) error {
	u := api.frontendURL + "/?" + url.Values{"error": {reason}}.Encode()
	return ctx.Redirect(http.StatusFound, u)
}

func (api *authApi) logout(ctx echo.Context) error {
	api.sessions.clearCookie(ctx, api.sessions.cookie)
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: true})
}

func (api *authApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}
