package authtransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/ratelimit"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/todoevo/backend/authsvc"
	"github.com/todoevo/backend/authsvc/pkg/authendpoint"
	"github.com/todoevo/backend/authsvc/pkg/authservice"
	"github.com/todoevo/backend/usersvc"
	"github.com/todoevo/backend/validate"
)

func NewHTTPHandler(endpoints authendpoint.Set, codec *securecookie.SecureCookie, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(errorEncoder),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
	}

	registerHandler := httptransport.NewServer(
		endpoints.RegisterEndpoint,
		decodeHTTPRegisterRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	loginHandler := httptransport.NewServer(
		endpoints.LoginEndpoint,
		decodeHTTPLoginRequest,
		encodeHTTPLoginResponse(codec),
		options...,
	)

	changePasswordHandler := httptransport.NewServer(
		endpoints.ChangePasswordEndpoint,
		decodeHTTPChangePasswordRequest,
		encodeHTTPGenericResponse,
		append(options, httptransport.ServerBefore(TokenToContext(codec)))...,
	)

	r := mux.NewRouter()

	r.Methods("POST").Path("/register").Handler(registerHandler)
	r.Methods("POST").Path("/login").Handler(loginHandler)
	r.Methods("PUT").Path("/password").Handler(changePasswordHandler)

	return r
}

func errorEncoder(_ context.Context, err error, w http.ResponseWriter) {
	code := err2code(err)
	if code == http.StatusInternalServerError {
		// Persistence and other internal failures stay opaque.
		err = errors.New("internal server error")
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(errorWrapper{Error: err.Error()})
}

type errorWrapper struct {
	Error string `json:"error"`
}

func err2code(err error) int {
	var ve *validate.Error
	if errors.As(err, &ve) {
		return http.StatusBadRequest
	}

	switch {
	case errors.Is(err, authsvc.ErrAuthentication),
		errors.Is(err, authsvc.ErrTokenContextMissing),
		errors.Is(err, authsvc.ErrOwnerContextMissing),
		errors.Is(err, usersvc.ErrUserNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, usersvc.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, authsvc.ErrInvalidArgument),
		errors.Is(err, usersvc.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, ratelimit.ErrLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func decodeHTTPRegisterRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req authendpoint.RegisterRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

func decodeHTTPLoginRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req authendpoint.LoginRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

func decodeHTTPChangePasswordRequest(_ context.Context, r *http.Request) (interface{}, error) {
	var req authendpoint.ChangePasswordRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	return req, err
}

// encodeHTTPLoginResponse also stores the issued token in an encoded,
// http-only cookie so browser callers need not manage the header themselves.
func encodeHTTPLoginResponse(codec *securecookie.SecureCookie) httptransport.EncodeResponseFunc {
	return func(ctx context.Context, w http.ResponseWriter, response interface{}) error {
		if f, ok := response.(endpoint.Failer); ok && f.Failed() != nil {
			errorEncoder(ctx, f.Failed(), w)
			return nil
		}

		resp := response.(authendpoint.LoginResponse)
		if encoded, err := codec.Encode(SessionCookieName, resp.Token); err == nil {
			http.SetCookie(w, &http.Cookie{
				Name:     SessionCookieName,
				Value:    encoded,
				Path:     "/",
				MaxAge:   int(authservice.AccessTokenExpiry() / time.Second),
				HttpOnly: true,
				SameSite: http.SameSiteStrictMode,
			})
		}

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		return json.NewEncoder(w).Encode(response)
	}
}

func encodeHTTPGenericResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if f, ok := response.(endpoint.Failer); ok && f.Failed() != nil {
		errorEncoder(ctx, f.Failed(), w)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}
