package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"

	"github.com/Sternrassler/rbx-client/pkg/client"
	"github.com/Sternrassler/rbx-client/pkg/cooldown"
	"github.com/Sternrassler/rbx-client/pkg/egress"
	"github.com/Sternrassler/rbx-client/pkg/metrics"
	"github.com/Sternrassler/rbx-client/pkg/roblox"
	"github.com/rs/zerolog"
)

// callerHeader identifies the caller for cooldown purposes. Requests without
// it are keyed by remote IP.
const callerHeader = "X-Caller-ID"

// gateway serves the resource accessors over HTTP.
type gateway struct {
	service *roblox.Service
	pool    *egress.Pool
	tracker *cooldown.Tracker
	logger  zerolog.Logger
}

func newGateway(service *roblox.Service, pool *egress.Pool, tracker *cooldown.Tracker, logger zerolog.Logger) *gateway {
	return &gateway{
		service: service,
		pool:    pool,
		tracker: tracker,
		logger:  logger,
	}
}

func (g *gateway) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", healthHandler)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /proxy", g.proxyStatusHandler)

	api := http.NewServeMux()
	api.HandleFunc("GET /users/{id}/profile", g.profileHandler)
	api.HandleFunc("GET /users/{id}/{collection}", g.collectionHandler)
	api.HandleFunc("GET /resolve/{input}", g.resolveHandler)
	api.HandleFunc("GET /search/users", g.searchHandler)
	api.HandleFunc("GET /places/{id}/universe", g.placeHandler)
	api.HandleFunc("GET /assets/{id}/download", g.downloadHandler)
	api.HandleFunc("GET /{kind}/{id}", g.singleHandler)

	mux.Handle("/", g.withCooldown(api))
	return mux
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// withCooldown rejects callers that are still cooling down. Store failures
// are logged and the request is let through.
func (g *gateway) withCooldown(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		caller := callerID(r)

		decision, err := g.tracker.Allow(r.Context(), caller)
		if err != nil {
			g.logger.Warn().Err(err).Str("caller", caller).Msg("Cooldown check failed, allowing request")
			next.ServeHTTP(w, r)
			return
		}

		if !decision.Allowed {
			secs := decision.RetryAfterSeconds()
			w.Header().Set("Retry-After", strconv.Itoa(secs))
			writeJSON(w, http.StatusTooManyRequests, errorBody{
				Error: fmt.Sprintf("Wait %d s before the next request.", secs),
				Class: "cooldown",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}

func callerID(r *http.Request) string {
	if id := r.Header.Get(callerHeader); id != "" {
		return id
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func (g *gateway) proxyStatusHandler(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("format") == "json" {
		writeJSON(w, http.StatusOK, g.pool.Snapshot())
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, g.pool.StatusReport())
}

func (g *gateway) collectionHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	kind, err := roblox.ParseCollectionKind(r.PathValue("collection"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Class: "bad_request"})
		return
	}

	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		page, err = strconv.Atoi(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: "page must be an integer", Class: "bad_request"})
			return
		}
	}

	result, err := g.service.FetchUserCollection(r.Context(), kind, userID, page)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (g *gateway) singleHandler(w http.ResponseWriter, r *http.Request) {
	kind, err := roblox.ParseSingleKind(r.PathValue("kind"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error(), Class: "bad_request"})
		return
	}

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	raw, err := g.service.FetchSingle(r.Context(), kind, id)
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(raw)
}

func (g *gateway) profileHandler(w http.ResponseWriter, r *http.Request) {
	userID, ok := pathID(w, r)
	if !ok {
		return
	}

	profile, err := g.service.Profile(r.Context(), userID)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (g *gateway) resolveHandler(w http.ResponseWriter, r *http.Request) {
	user, err := g.service.ResolveUser(r.Context(), r.PathValue("input"))
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (g *gateway) searchHandler(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")
	if keyword == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "keyword is required", Class: "bad_request"})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	users, err := g.service.SearchUsers(r.Context(), keyword, limit)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"data": users})
}

func (g *gateway) placeHandler(w http.ResponseWriter, r *http.Request) {
	placeID, ok := pathID(w, r)
	if !ok {
		return
	}

	universeID, err := g.service.PlaceToUniverse(r.Context(), placeID)
	if err != nil {
		g.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"place_id": placeID, "universe_id": universeID})
}

func (g *gateway) downloadHandler(w http.ResponseWriter, r *http.Request) {
	assetID, ok := pathID(w, r)
	if !ok {
		return
	}

	d, err := g.service.DownloadAsset(r.Context(), assetID)
	if err != nil {
		g.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Filename))
	w.Header().Set("X-Asset-Type", d.TypeName())
	w.WriteHeader(http.StatusOK)
	w.Write(d.Data)
}

// pathID parses the {id} path value, answering 400 when it is not a
// positive integer.
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "id must be a positive integer", Class: "bad_request"})
		return 0, false
	}
	return id, true
}

type errorBody struct {
	Error string `json:"error"`
	Class string `json:"class"`
}

// statusFor maps an error class to the gateway response status.
func statusFor(class client.ErrorClass) int {
	switch class {
	case client.ErrorClassNotFound:
		return http.StatusNotFound
	case client.ErrorClassRateLimited:
		return http.StatusTooManyRequests
	case client.ErrorClassTimeout:
		return http.StatusGatewayTimeout
	case "":
		return http.StatusInternalServerError
	default:
		return http.StatusBadGateway
	}
}

func (g *gateway) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, client.ErrInvalidRequest) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Class: "bad_request"})
		return
	}

	class := client.ClassOf(err)
	status := statusFor(class)

	event := g.logger.Warn()
	if status >= http.StatusInternalServerError {
		event = g.logger.Error()
	}
	event.Err(err).
		Str("path", r.URL.Path).
		Str("error_class", string(class)).
		Int("status_code", status).
		Msg("Request failed")

	writeJSON(w, status, errorBody{Error: client.UserMessage(err), Class: string(class)})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		fmt.Fprintf(w, `{"error":%q}`, err.Error())
	}
}
