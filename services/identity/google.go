package identitysvc

import (
	"context"
	"net/http"

	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/classroom/v1"
	oauth2api "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/trezcool/edutrack/core"
	"github.com/trezcool/edutrack/core/user"
)

const serviceName = "google identity"

// Scopes requested at sign-in: the profile plus read access to the student's Classroom data.
var Scopes = []string{
	"profile",
	"email",
	classroom.ClassroomCoursesReadonlyScope,
	classroom.ClassroomCourseworkMeScope,
}

type GoogleProvider struct {
	conf       *oauth2.Config
	httpClient *http.Client
	opts       []option.ClientOption
}

var _ user.IdentityProvider = (*GoogleProvider)(nil)

func NewGoogleProvider(conf *core.Config, httpClient *http.Client, opts ...option.ClientOption) *GoogleProvider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &GoogleProvider{
		conf: &oauth2.Config{
			ClientID:     conf.Google.ClientID,
			ClientSecret: conf.Google.ClientSecret,
			RedirectURL:  conf.Google.RedirectURL,
			Scopes:       Scopes,
			Endpoint:     google.Endpoint,
		},
		httpClient: httpClient,
		opts:       opts,
	}
}

// WithEndpoint overrides the OAuth endpoint.
func (p *GoogleProvider) WithEndpoint(ep oauth2.Endpoint) *GoogleProvider {
	p.conf.Endpoint = ep
	return p
}

func (p *GoogleProvider) AuthCodeURL(state string) string {
	return p.conf.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for a token and fetches the user's profile.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (user.Profile, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.httpClient)
	tok, err := p.conf.Exchange(ctx, code)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.Response != nil {
			return user.Profile{}, core.NewUpstreamError(serviceName, rErr.Response.StatusCode, string(rErr.Body), err)
		}
		return user.Profile{}, core.NewUpstreamError(serviceName, 0, "", err)
	}

	authed := p.conf.Client(ctx, tok)
	authed.Timeout = p.httpClient.Timeout
	opts := append([]option.ClientOption{option.WithHTTPClient(authed)}, p.opts...)
	svc, err := oauth2api.NewService(ctx, opts...)
	if err != nil {
		return user.Profile{}, errors.Wrap(err, "creating userinfo service")
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return user.Profile{}, core.NewUpstreamError(serviceName, 0, "", errors.Wrap(err, "fetching userinfo"))
	}
	if info.Id == "" {
		return user.Profile{}, core.NewParseError("userinfo", "missing user id", nil)
	}

	return user.Profile{
		GoogleID:    info.Id,
		Name:        info.Name,
		Email:       info.Email,
		AccessToken: tok.AccessToken,
	}, nil
}
