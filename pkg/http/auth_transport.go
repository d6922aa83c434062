package http

import "net/http"

type authTransport struct {
	header    string
	token     string
	transport http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	if t.token != "" {
		reqCopy.Header.Set(t.header, "Bearer "+t.token)
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken attaches a bearer token in the standard Authorization header.
func WithAuthToken(token string) HttpOpts {
	return WithAuthHeader("Authorization", token)
}

// WithAuthHeader attaches a bearer token in a custom header. Vendor APIs that
// authenticate service accounts outside of Authorization (for example
// X-NUCLIA-SERVICEACCOUNT) use this variant.
func WithAuthHeader(header, token string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &authTransport{
			header:    header,
			token:     token,
			transport: rt,
		}
	})
}
