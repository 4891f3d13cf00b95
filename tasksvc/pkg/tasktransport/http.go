package tasktransport

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
	"github.com/todoevo/backend/tasksvc"
	"github.com/todoevo/backend/tasksvc/pkg/taskendpoint"
	"github.com/todoevo/backend/usersvc"
	"github.com/todoevo/backend/validate"
)

func NewHTTPHandler(endpoints taskendpoint.Set, codec *securecookie.SecureCookie, logger log.Logger) http.Handler {
	options := []httptransport.ServerOption{
		httptransport.ServerErrorEncoder(errorEncoder),
		httptransport.ServerErrorHandler(transport.NewLogErrorHandler(logger)),
		httptransport.ServerBefore(authtransport.TokenToContext(codec)),
	}

	createTaskHandler := httptransport.NewServer(
		endpoints.CreateTaskEndpoint,
		decodeHTTPCreateTaskRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	tasksHandler := httptransport.NewServer(
		endpoints.TasksEndpoint,
		decodeHTTPTasksRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	taskHandler := httptransport.NewServer(
		endpoints.TaskEndpoint,
		decodeHTTPTaskRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	updateTaskHandler := httptransport.NewServer(
		endpoints.UpdateTaskEndpoint,
		decodeHTTPUpdateTaskRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	toggleTaskHandler := httptransport.NewServer(
		endpoints.ToggleTaskEndpoint,
		decodeHTTPToggleTaskRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	deleteTaskHandler := httptransport.NewServer(
		endpoints.DeleteTaskEndpoint,
		decodeHTTPDeleteTaskRequest,
		encodeHTTPGenericResponse,
		options...,
	)

	r := mux.NewRouter()

	r.Methods("POST").Path("/users/{user_id}/tasks").Handler(createTaskHandler)
	r.Methods("GET").Path("/users/{user_id}/tasks").Handler(tasksHandler)
	r.Methods("GET").Path("/users/{user_id}/tasks/{task_id}").Handler(taskHandler)
	r.Methods("PUT").Path("/users/{user_id}/tasks/{task_id}").Handler(updateTaskHandler)
	r.Methods("PATCH").Path("/users/{user_id}/tasks/{task_id}/complete").Handler(toggleTaskHandler)
	r.Methods("DELETE").Path("/users/{user_id}/tasks/{task_id}").Handler(deleteTaskHandler)

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
		errors.Is(err, authsvc.ErrOwnerContextMissing),
		errors.Is(err, usersvc.ErrUserNotFound):
		return http.StatusUnauthorized
	case errors.Is(err, tasksvc.ErrTaskNotFound):
		return http.StatusNotFound
	case errors.Is(err, tasksvc.ErrInvalidArgument), errors.Is(err, ErrBadRouting):
		return http.StatusBadRequest
	case errors.Is(err, ratelimit.ErrLimited):
		return http.StatusTooManyRequests
	}
	return http.StatusInternalServerError
}

func ownerID(r *http.Request) (uint64, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["user_id"], 10, 64)
	if err != nil {
		return 0, ErrBadRouting
	}
	return id, nil
}

func taskID(r *http.Request) (uint64, error) {
	vars := mux.Vars(r)
	id, err := strconv.ParseUint(vars["task_id"], 10, 64)
	if err != nil {
		return 0, ErrBadRouting
	}
	return id, nil
}

func decodeHTTPCreateTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	owner, err := ownerID(r)
	if err != nil {
		return nil, err
	}

	var req taskendpoint.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, tasksvc.ErrInvalidArgument
	}
	req.OwnerID = owner

	return req, nil
}

func decodeHTTPTasksRequest(_ context.Context, r *http.Request) (interface{}, error) {
	owner, err := ownerID(r)
	if err != nil {
		return nil, err
	}

	return taskendpoint.TasksRequest{OwnerID: owner}, nil
}

func decodeHTTPTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	owner, err := ownerID(r)
	if err != nil {
		return nil, err
	}

	task, err := taskID(r)
	if err != nil {
		return nil, err
	}

	return taskendpoint.TaskRequest{OwnerID: owner, TaskID: task}, nil
}

func decodeHTTPUpdateTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	owner, err := ownerID(r)
	if err != nil {
		return nil, err
	}

	task, err := taskID(r)
	if err != nil {
		return nil, err
	}

	var req taskendpoint.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, tasksvc.ErrInvalidArgument
	}
	req.OwnerID = owner
	req.TaskID = task

	return req, nil
}

func decodeHTTPToggleTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	owner, err := ownerID(r)
	if err != nil {
		return nil, err
	}

	task, err := taskID(r)
	if err != nil {
		return nil, err
	}

	return taskendpoint.ToggleTaskRequest{OwnerID: owner, TaskID: task}, nil
}

func decodeHTTPDeleteTaskRequest(_ context.Context, r *http.Request) (interface{}, error) {
	owner, err := ownerID(r)
	if err != nil {
		return nil, err
	}

	task, err := taskID(r)
	if err != nil {
		return nil, err
	}

	return taskendpoint.DeleteTaskRequest{OwnerID: owner, TaskID: task}, nil
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
