package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/questfit/questfit-server/internal/config"
	"github.com/questfit/questfit-server/internal/models"
	"github.com/questfit/questfit-server/internal/service"
	"github.com/rs/zerolog/log"
)

// LinkHandler exposes the account-linking flow over HTTP. It owns transport
// concerns only: parameter validation, JSON-vs-redirect shaping for popup
// flows, and the mapping from flow error codes to HTTP statuses.
type LinkHandler struct {
	Links  service.LinkFlow
	Config *config.Config
}

func NewLinkHandler(links service.LinkFlow, cfg *config.Config) *LinkHandler {
	return &LinkHandler{Links: links, Config: cfg}
}

// VerifyPrimary handles the primary-assertion step.
func (h *LinkHandler) VerifyPrimary(c echo.Context) error {
	var req models.VerifyPrimaryRequest
	if err := c.Bind(&req); err != nil {
		return h.respondError(c, service.NewFlowError(service.CodeMissingOAuthParams, "invalid request body", err))
	}
	if req.AssertionToken == "" {
		return h.respondError(c, service.NewFlowError(service.CodeMissingOAuthParams, "assertion_token is required", nil))
	}

	outcome, err := h.Links.BeginPrimary(c.Request().Context(), req.AssertionToken, req.FitnessAccessToken)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, outcome)
}

// FitnessCallback handles the redirect back from the fitness provider.
func (h *LinkHandler) FitnessCallback(c echo.Context) error {
	code, state, err := callbackParams(c)
	if err != nil {
		return h.respondError(c, err)
	}

	outcome, err := h.Links.CompleteFitness(c.Request().Context(), code, state)
	if err != nil {
		return h.respondError(c, err)
	}

	if popupMode(c) {
		params := url.Values{}
		params.Set("done", "false")
		params.Set("next", string(outcome.Next))
		params.Set("correlation_token", outcome.CorrelationToken)
		params.Set("authorization_url", outcome.AuthorizationURL)
		return h.redirectToFrontend(c, params)
	}
	return c.JSON(http.StatusOK, outcome)
}

// CodeHostCallback handles the redirect back from the code-hosting provider
// and produces the terminal response shape.
func (h *LinkHandler) CodeHostCallback(c echo.Context) error {
	code, state, err := callbackParams(c)
	if err != nil {
		return h.respondError(c, err)
	}

	result, err := h.Links.CompleteCodeHost(c.Request().Context(), code, state)
	if err != nil {
		return h.respondError(c, err)
	}

	if popupMode(c) {
		params := url.Values{}
		params.Set("success", "true")
		params.Set("session_token", result.SessionToken)
		params.Set("account_id", strconv.FormatInt(result.Account.ID, 10))
		return h.redirectToFrontend(c, params)
	}
	return c.JSON(http.StatusOK, result)
}

// Resume replays the pending provider leg for a client that lost the response
// carrying its correlation token. The token travels as a bearer header.
func (h *LinkHandler) Resume(c echo.Context) error {
	token, err := bearerToken(c)
	if err != nil {
		return h.respondError(c, service.NewFlowError(service.CodeMissingOAuthParams, "a correlation token bearer header is required", nil))
	}

	outcome, err := h.Links.Resume(c.Request().Context(), token)
	if err != nil {
		return h.respondError(c, err)
	}
	return c.JSON(http.StatusOK, outcome)
}

// callbackParams validates the OAuth callback query. A provider-reported
// error or missing parameters fail fast; no downstream call is made.
func callbackParams(c echo.Context) (code, state string, err error) {
	if providerErr := c.QueryParam("error"); providerErr != "" {
		desc := c.QueryParam("error_description")
		if desc == "" {
			desc = providerErr
		}
		return "", "", service.NewFlowError(service.CodeOAuthProviderError, "provider reported an error: "+desc, nil)
	}

	code = c.QueryParam("code")
	state = c.QueryParam("state")
	if code == "" || state == "" {
		return "", "", service.NewFlowError(service.CodeMissingOAuthParams, "code and state query parameters are required", nil)
	}
	return code, state, nil
}

// popupMode reports whether the caller asked for the redirect response shape.
func popupMode(c echo.Context) bool {
	return c.QueryParam("mode") == "popup"
}

func (h *LinkHandler) redirectToFrontend(c echo.Context, params url.Values) error {
	target, err := url.Parse(h.Config.FrontendCallbackURL)
	if err != nil || h.Config.FrontendCallbackURL == "" {
		// Popup shaping is best effort; fall back to JSON.
		return c.JSON(http.StatusOK, params)
	}
	target.RawQuery = params.Encode()
	return c.Redirect(http.StatusTemporaryRedirect, target.String())
}

func (h *LinkHandler) respondError(c echo.Context, err error) error {
	var fe *service.FlowError
	if !errors.As(err, &fe) {
		log.Error().Err(err).Msg("Unclassified linking failure")
		fe = service.NewFlowError(service.CodeOAuthProviderError, "internal error", err)
		body := models.ErrorResponse{Success: false, ErrorCode: string(fe.Code), Message: "internal error"}
		return c.JSON(http.StatusInternalServerError, body)
	}

	status := statusForCode(fe.Code)
	log.Warn().Str("errorCode", string(fe.Code)).Int("status", status).Err(err).Msg("Linking flow failed")

	if popupMode(c) {
		params := url.Values{}
		params.Set("success", "false")
		params.Set("error_code", string(fe.Code))
		params.Set("message", fe.Message)
		return h.redirectToFrontend(c, params)
	}
	return c.JSON(status, models.ErrorResponse{Success: false, ErrorCode: string(fe.Code), Message: fe.Message})
}

// statusForCode maps the stable error vocabulary onto HTTP statuses.
func statusForCode(code service.ErrorCode) int {
	switch code {
	case service.CodeMissingOAuthParams, service.CodeTokenMalformed:
		return http.StatusBadRequest
	case service.CodeTokenExpired, service.CodeTokenWrongKind:
		return http.StatusUnauthorized
	case service.CodeEmailMismatch:
		return http.StatusForbidden
	case service.CodeLinkDataMissing:
		return http.StatusGone
	case service.CodeTokenExchangeFailed, service.CodeIdentityFetchFailed, service.CodeOAuthProviderError:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
