package main

import (
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/go-kit/kit/log"
	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/gorilla/mux"
	"github.com/gorilla/securecookie"
	"github.com/oklog/oklog/pkg/group"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	libgorm "gorm.io/gorm"

	"github.com/todoevo/backend/authsvc"
	"github.com/todoevo/backend/authsvc/pkg/authendpoint"
	"github.com/todoevo/backend/authsvc/pkg/authservice"
	"github.com/todoevo/backend/authsvc/pkg/authtransport"
	"github.com/todoevo/backend/tasksvc"
	taskdb "github.com/todoevo/backend/tasksvc/db/gorm"
	"github.com/todoevo/backend/tasksvc/pkg/taskendpoint"
	"github.com/todoevo/backend/tasksvc/pkg/taskservice"
	"github.com/todoevo/backend/tasksvc/pkg/tasktransport"
	"github.com/todoevo/backend/usersvc"
	userdb "github.com/todoevo/backend/usersvc/db/gorm"
	"github.com/todoevo/backend/usersvc/pkg/userendpoint"
	"github.com/todoevo/backend/usersvc/pkg/userservice"
	"github.com/todoevo/backend/usersvc/pkg/usertransport"
)

func main() {
	fs := flag.NewFlagSet("todoevo", flag.ExitOnError)
	var (
		httpAddr = fs.String(
			"http.addr",
			getEnv("HTTP_ADDR", ":8000"),
			"HTTP listen address",
		)
		databaseURL = fs.String(
			"database.url",
			getEnv("DATABASE_URL", ""),
			"Database URL (postgres); sqlite file when empty",
		)
		sqlitePath = fs.String(
			"sqlite.path",
			getEnv("SQLITE_PATH", "todoevo.db"),
			"SQLite database file, used when database.url is empty",
		)
	)

	fs.Usage = usageFor(fs, os.Args[0]+" [flags]")
	fs.Parse(os.Args[1:])

	var logger log.Logger
	{
		logger = log.NewLogfmtLogger(os.Stderr)
		logger = log.With(logger, "ts", log.DefaultTimestampUTC)
		logger = log.With(logger, "caller", log.DefaultCaller)
	}

	var db *libgorm.DB
	var err error
	{
		config := &libgorm.Config{TranslateError: true}
		if *databaseURL != "" {
			db, err = libgorm.Open(postgres.Open(*databaseURL), config)
		} else {
			db, err = libgorm.Open(sqlite.Open(*sqlitePath), config)
		}
		if err != nil {
			logger.Log("err", err)
			os.Exit(1)
		}
	}

	if err := db.AutoMigrate(&usersvc.User{}, &tasksvc.Task{}); err != nil {
		logger.Log("during", "AutoMigrate", "err", err)
		os.Exit(1)
	}

	userRepository := userdb.NewUserRepository(db)
	taskRepository := taskdb.NewTaskRepository(db)

	codec := securecookie.New([]byte(authsvc.CookieHashKey), []byte(authsvc.CookieBlockKey))
	tokenizer := authservice.NewTokenizer([]byte(authsvc.AccessSecret), authservice.AccessTokenExpiry())

	var authService authservice.Service
	{
		counter := kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "todoevo",
			Subsystem: "auth_service",
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, []string{"method"})
		latency := kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "todoevo",
			Subsystem: "auth_service",
			Name:      "request_latency_seconds",
			Help:      "Total duration of requests in seconds.",
		}, []string{"method"})
		authService = authservice.New(userRepository, tokenizer, log.With(logger, "service", "auth"), counter, latency)
	}

	var userService userservice.Service
	{
		counter := kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "todoevo",
			Subsystem: "user_service",
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, []string{"method"})
		latency := kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "todoevo",
			Subsystem: "user_service",
			Name:      "request_latency_seconds",
			Help:      "Total duration of requests in seconds.",
		}, []string{"method"})
		userService = userservice.New(userRepository, log.With(logger, "service", "user"), counter, latency)
	}

	var taskService taskservice.Service
	{
		counter := kitprometheus.NewCounterFrom(stdprometheus.CounterOpts{
			Namespace: "todoevo",
			Subsystem: "task_service",
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, []string{"method"})
		latency := kitprometheus.NewSummaryFrom(stdprometheus.SummaryOpts{
			Namespace: "todoevo",
			Subsystem: "task_service",
			Name:      "request_latency_seconds",
			Help:      "Total duration of requests in seconds.",
		}, []string{"method"})
		taskService = taskservice.New(taskRepository, log.With(logger, "service", "task"), counter, latency)
		taskService = taskservice.OwnerCheckMiddleware(userRepository)(taskService)
	}

	var (
		authEndpoints = authendpoint.New(authService, tokenizer, log.With(logger, "component", "authendpoint"))
		userEndpoints = userendpoint.New(userService, authService, log.With(logger, "component", "userendpoint"))
		taskEndpoints = taskendpoint.New(taskService, authService, log.With(logger, "component", "taskendpoint"))
	)

	r := mux.NewRouter()
	{
		handler := authtransport.NewHTTPHandler(authEndpoints, codec, logger)
		r.PathPrefix("/auth/v1").Handler(http.StripPrefix("/auth/v1", handler))
	}
	{
		handler := usertransport.NewHTTPHandler(userEndpoints, codec, logger)
		r.PathPrefix("/user/v1").Handler(http.StripPrefix("/user/v1", handler))
	}
	{
		handler := tasktransport.NewHTTPHandler(taskEndpoints, codec, logger)
		r.PathPrefix("/task/v1").Handler(http.StripPrefix("/task/v1", handler))
	}
	r.Methods("GET").Path("/healthz").HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Methods("GET").Path("/metrics").Handler(promhttp.Handler())

	var g group.Group
	{
		httpListener, err := net.Listen("tcp", *httpAddr)
		if err != nil {
			logger.Log("transport", "HTTP", "during", "Listen", "err", err)
			os.Exit(1)
		}
		g.Add(func() error {
			logger.Log("transport", "HTTP", "addr", *httpAddr)
			return http.Serve(httpListener, r)
		}, func(error) {
			httpListener.Close()
		})
	}
	{
		// This function just sits and waits for ctrl-C.
		cancelInterrupt := make(chan struct{})
		g.Add(func() error {
			c := make(chan os.Signal, 1)
			signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
			select {
			case sig := <-c:
				return fmt.Errorf("received signal %s", sig)
			case <-cancelInterrupt:
				return nil
			}
		}, func(error) {
			close(cancelInterrupt)
		})
	}
	logger.Log("exit", g.Run())
}

func usageFor(fs *flag.FlagSet, short string) func() {
	return func() {
		fmt.Fprintf(os.Stderr, "USAGE\n")
		fmt.Fprintf(os.Stderr, "  %s\n", short)
		fmt.Fprintf(os.Stderr, "\n")
		fmt.Fprintf(os.Stderr, "FLAGS\n")
		w := tabwriter.NewWriter(os.Stderr, 0, 2, 2, ' ', 0)
		fs.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(w, "\t-%s %s\t%s\n", f.Name, f.DefValue, f.Usage)
		})
		w.Flush()
		fmt.Fprintf(os.Stderr, "\n")
	}
}

func getEnv(key, fallback string) string {
	value, exists := os.LookupEnv(key)
	if !exists {
		value = fallback
	}
	return value
}
