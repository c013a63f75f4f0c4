package rpc

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/meridian-network/meridian/network"
)

// Meridian RPC Paths
const (
	VersionRoutePath     = "/v1/"
	TxRoutePath          = "/v1/tx"
	HealthRoutePath      = "/v1/health"
	PendingRoutePath     = "/v1/query/pending"
	MempoolInfoRoutePath = "/v1/query/mempool"
	GossipRoutePath      = network.SubmitRoutePath
	// debug
	DebugBlockedRoutePath   = "/debug/blocked"
	DebugHeapRoutePath      = "/debug/heap"
	DebugCPURoutePath       = "/debug/cpu"
	DebugGoroutineRoutePath = "/debug/goroutine"
	// admin
	CommitRoutePath        = "/v1/admin/commit"
	ResourceUsageRoutePath = "/v1/admin/resource-usage"
	ConfigRoutePath        = "/v1/admin/config"
	LogsRoutePath          = "/v1/admin/log"
)

const (
	VersionRouteName     = "version"
	TxRouteName          = "tx"
	HealthRouteName      = "health"
	PendingRouteName     = "pending"
	MempoolInfoRouteName = "mempool"
	GossipRouteName      = "gossip"
	// debug
	DebugBlockedRouteName   = "blocked"
	DebugHeapRouteName      = "heap"
	DebugCPURouteName       = "cpu"
	DebugGoroutineRouteName = "goroutine"
	// admin
	CommitRouteName        = "commit"
	ResourceUsageRouteName = "resource-usage"
	ConfigRouteName        = "config"
	LogsRouteName          = "logs"
)

// routes contains the method and path for a meridian command
type routes map[string]struct {
	Method string
	Path   string
}

// routePaths is a mapping from route names to their corresponding HTTP methods and paths.
var routePaths = routes{
	VersionRouteName:     {Method: http.MethodGet, Path: VersionRoutePath},
	TxRouteName:          {Method: http.MethodPost, Path: TxRoutePath},
	HealthRouteName:      {Method: http.MethodGet, Path: HealthRoutePath},
	PendingRouteName:     {Method: http.MethodPost, Path: PendingRoutePath},
	MempoolInfoRouteName: {Method: http.MethodGet, Path: MempoolInfoRoutePath},
	GossipRouteName:      {Method: http.MethodPost, Path: GossipRoutePath},
	// debug
	DebugBlockedRouteName:   {Method: http.MethodGet, Path: DebugBlockedRoutePath},
	DebugHeapRouteName:      {Method: http.MethodGet, Path: DebugHeapRoutePath},
	DebugCPURouteName:       {Method: http.MethodGet, Path: DebugCPURoutePath},
	DebugGoroutineRouteName: {Method: http.MethodGet, Path: DebugGoroutineRoutePath},
	// admin
	CommitRouteName:        {Method: http.MethodPost, Path: CommitRoutePath},
	ResourceUsageRouteName: {Method: http.MethodGet, Path: ResourceUsageRoutePath},
	ConfigRouteName:        {Method: http.MethodGet, Path: ConfigRoutePath},
	LogsRouteName:          {Method: http.MethodGet, Path: LogsRoutePath},
}

// httpRouteHandlers is a custom type that maps strings to httprouter handle functions
type httpRouteHandlers map[string]httprouter.Handle

// createRouter initializes and returns a new HTTP router with predefined route handlers.
func createRouter(s *Server) *httprouter.Router {
	var r = httpRouteHandlers{
		VersionRouteName:     s.Version,
		TxRouteName:          s.Transaction,
		HealthRouteName:      s.Health,
		PendingRouteName:     s.Pending,
		MempoolInfoRouteName: s.MempoolInfo,
		GossipRouteName:      s.Gossip,
	}

	// Initialize a new router using the httprouter package.
	router := httprouter.New()

	for name, handler := range r {
		// Retrieve the path configuration for the current route name.
		path := routePaths[name]

		// Add the handler for the specific path and HTTP method to the router.
		router.Handle(path.Method, path.Path, logHandler{path.Path, handler}.Handle)
	}

	return router
}

// createAdminRouter initializes and returns a new HTTP router with the operator-only route handlers.
func createAdminRouter(s *Server) *httprouter.Router {
	var r = httpRouteHandlers{
		CommitRouteName:        s.Commit,
		ResourceUsageRouteName: s.ResourceUsage,
		ConfigRouteName:        s.Config,
		LogsRouteName:          logsHandler(s),
		// debug
		DebugBlockedRouteName:   debugHandler(DebugBlockedRouteName),
		DebugHeapRouteName:      debugHandler(DebugHeapRouteName),
		DebugCPURouteName:       debugHandler(DebugCPURouteName),
		DebugGoroutineRouteName: debugHandler(DebugGoroutineRouteName),
	}

	// Initialize a new router using the httprouter package.
	router := httprouter.New()

	for name, handler := range r {
		// Retrieve the path configuration for the current route name.
		path := routePaths[name]

		// Add the handler for the specific path and HTTP method to the router.
		router.Handle(path.Method, path.Path, logHandler{path.Path, handler}.Handle)
	}

	return router
}
