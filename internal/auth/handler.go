// Package auth provides the authentication handlers and the Salesforce
// token exchange used to reach Pardot.
package auth

import (
	"strings"

	"github.com/pardotkit/pardotctl/internal/config"
	"github.com/pardotkit/pardotctl/internal/output"
)

// Kind identifies an authentication scheme.
type Kind string

const (
	// KindTraditional is a first-party Pardot account (username, password,
	// user key).
	KindTraditional Kind = "traditional"

	// KindSSO is a Salesforce identity exchanged for a bearer token scoped
	// to one Pardot business unit.
	KindSSO Kind = "sso"
)

// Handler represents who is authenticating and with what material,
// decoupled from how the material is used. Handlers are immutable value
// objects built fresh from config per access attempt.
type Handler interface {
	Kind() Kind
	Username() string
}

// TraditionalHandler holds credentials for a Pardot-only user.
type TraditionalHandler struct {
	User     string
	Password string
	UserKey  string
}

func (h TraditionalHandler) Kind() Kind       { return KindTraditional }
func (h TraditionalHandler) Username() string { return h.User }

// SSOHandler holds credentials for a Salesforce user accessing Pardot
// through OAuth2 SSO.
type SSOHandler struct {
	User           string
	Password       string
	ConsumerKey    string
	ConsumerSecret string
	BusinessUnitID string

	// Token is the Salesforce security token. The token endpoint expects it
	// appended directly to the password.
	Token string
}

func (h SSOHandler) Kind() Kind       { return KindSSO }
func (h SSOHandler) Username() string { return h.User }

// IdPPassword returns the password as the identity provider expects it:
// account password immediately followed by the security token. The
// concatenation order is part of the Salesforce contract.
func (h SSOHandler) IdPPassword() string {
	return h.Password + h.Token
}

// BuildHandler constructs the handler for a named config section.
//
// The scheme is chosen by an explicit `kind` key in the section when
// present. Sections without one fall back to the historical prefix
// convention: `pardot*` sections are traditional, `salesforce*` sections
// are SSO. Anything else is rejected.
func BuildHandler(store *config.Store, section string) (Handler, error) {
	kind, err := sectionKind(store, section)
	if err != nil {
		return nil, err
	}

	switch kind {
	case KindTraditional:
		return buildTraditional(store, section)
	case KindSSO:
		return buildSSO(store, section)
	default:
		return nil, output.ErrUsageHint(
			"unknown auth kind \""+string(kind)+"\" in section \""+section+"\"",
			"Use kind = traditional or kind = sso",
		)
	}
}

func sectionKind(store *config.Store, section string) (Kind, error) {
	if !store.HasSections(section) {
		return "", output.ErrMissingSection(section)
	}

	if v := store.GetDefault(section, "kind", ""); v != "" {
		return Kind(strings.ToLower(v)), nil
	}

	switch {
	case strings.HasPrefix(section, "pardot"):
		return KindTraditional, nil
	case strings.HasPrefix(section, "salesforce"):
		return KindSSO, nil
	}
	return "", output.ErrUsageHint(
		"cannot determine auth kind for section \""+section+"\"",
		"Name the section pardot* or salesforce*, or add a kind key",
	)
}

func buildTraditional(store *config.Store, section string) (Handler, error) {
	username, err := store.Get(section, "username")
	if err != nil {
		return nil, err
	}
	password, err := store.Get(section, "password")
	if err != nil {
		return nil, err
	}
	userkey, err := store.Get(section, "userkey")
	if err != nil {
		return nil, err
	}
	return TraditionalHandler{
		User:     username,
		Password: password,
		UserKey:  userkey,
	}, nil
}

func buildSSO(store *config.Store, section string) (Handler, error) {
	user, err := store.Get(section, "user")
	if err != nil {
		return nil, err
	}
	password, err := store.Get(section, "password")
	if err != nil {
		return nil, err
	}
	consumerKey, err := store.Get(section, "consumer_key")
	if err != nil {
		return nil, err
	}
	consumerSecret, err := store.Get(section, "consumer_secret")
	if err != nil {
		return nil, err
	}
	businessUnitID, err := store.Get(section, "business_unit_id")
	if err != nil {
		return nil, err
	}
	token, err := store.Get(section, "token")
	if err != nil {
		return nil, err
	}
	return SSOHandler{
		User:           user,
		Password:       password,
		ConsumerKey:    consumerKey,
		ConsumerSecret: consumerSecret,
		BusinessUnitID: businessUnitID,
		Token:          token,
	}, nil
}
