package usertransport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-kit/kit/endpoint"
	"github.com/go-kit/kit/log"
	"github.com/go-kit/kit/ratelimit"
	"github.com/go-kit/kit/transport"
	httptransport "github.com/go-kit/kit/transport/http"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/todoevo/backend/authsvc"
	"github.com/todoevo/backend/authsvc/pkg/authtransport"
	"github.com/todoevo/backend/usersvc"
	"github.com/todoevo/backend/usersvc/pkg/userendpoint"
	"github.com/todoevo/backend/validate"
)

func NewHTTPHandler(endpoints userendpoint.Set, codec *securecookie.SecureCookie, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(errorEncoder),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
		httptransport.ServerBefore(authtransport.TokenToContext(codec)),
	}

	userHandler := httptransport.NewServer(
		endpoints.UserEndpoint,
		decodeHTTPUserRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	updateNameHandler := httptransport.NewServer(
		endpoints.UpdateNameEndpoint,
		decodeHTTPUpdateNameRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	r := mux.NewRouter()

	r.Methods("GET").Path("/users/{user_id}").Handler(userHandler)
	r.Methods("PUT").Path("/users/{user_id}/name").Handler(updateNameHandler)

	return r
}

func errorEncoder(_ context.Context, err error, w http.ResponseWriter) {
	code := err2code(err)
	if code == http.StatusInternalServerError {
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
		errors.Is(err, authsvc.ErrOwnerContextMissing):
		return http.StatusUnauthorized
	case errors.Is(err, usersvc.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, usersvc.ErrInvalidArgument), errors.Is(err, ErrBadRouting):
		return http.StatusBadRequest
	case errors.Is(err, ratelimit.ErrLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func decodeHTTPUserRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["user_id"], 10, 64)
	if err != nil {
		return nil, ErrBadRouting
	}

	return userendpoint.UserRequest{UserID: id}, nil
}

func decodeHTTPUpdateNameRequest(_ context.Context, r *http.Request) (interface{}, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["user_id"], 10, 64)
	if err != nil {
		return nil, ErrBadRouting
	}

	var req userendpoint.UpdateNameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, usersvc.ErrInvalidArgument
	}
	req.UserID = id

	return req, nil
}

// ErrBadRouting is returned when an expected path variable is missing.
// It always indicates programmer error.
var ErrBadRouting = errors.New("inconsistent mapping between route and handler (programmer error)")

func encodeHTTPGenericResponse(ctx context.Context, w http.ResponseWriter, response interface{}) error {
	if f, ok := response.(endpoint.Failer); ok && f.Failed() != nil {
		errorEncoder(ctx, f.Failed(), w)
		return nil
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	return json.NewEncoder(w).Encode(response)
}
