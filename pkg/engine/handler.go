// Core HTTP request handler for the virtualization engine.

package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/virtmock/virtmock/internal/dispatch"
	"github.com/virtmock/virtmock/internal/storage"
	"github.com/virtmock/virtmock/pkg/event"
	"github.com/virtmock/virtmock/pkg/logging"
	"github.com/virtmock/virtmock/pkg/metrics"
	"github.com/virtmock/virtmock/pkg/render"
	"github.com/virtmock/virtmock/pkg/virt"
)

// MaxRequestBodySize caps request bodies passed into dispatch
// computation and rendering (10MB).
const MaxRequestBodySize = 10 << 20

// Handler services mock requests: it resolves the target operation,
// validates parameter constraints, computes the dispatch criteria,
// selects a stored response and materializes it. Each request is
// handled independently; the stores are the only shared state.
type Handler struct {
	services  storage.ServiceStore
	responses storage.ResponseStore
	scripts   dispatch.ScriptEvaluator
	computer  *dispatch.Computer
	renderer  render.Renderer
	publisher event.Publisher
	metrics   *metrics.Metrics
	log       *slog.Logger

	mountPath        string
	enableCORSPolicy bool
}

// NewHandler creates a Handler over the given stores with defaults:
// mount path "/rest", CORS policy disabled, no-op logger and publisher,
// built-in template renderer, no script evaluator.
func NewHandler(services storage.ServiceStore, responses storage.ResponseStore) *Handler {
	log := logging.Nop()
	return &Handler{
		services:  services,
		responses: responses,
		computer:  dispatch.NewComputer(nil, log),
		renderer:  render.New(),
		publisher: event.NopPublisher{},
		log:       log,
		mountPath: "/rest",
	}
}

// SetLogger sets the operational logger.
func (h *Handler) SetLogger(log *slog.Logger) {
	if log == nil {
		log = logging.Nop()
	}
	h.log = log
	h.computer = dispatch.NewComputer(h.scripts, log)
}

// SetScriptEvaluator wires the evaluator used by SCRIPT dispatchers.
func (h *Handler) SetScriptEvaluator(scripts dispatch.ScriptEvaluator) {
	h.scripts = scripts
	h.computer = dispatch.NewComputer(scripts, h.log)
}

// SetRenderer replaces the response content renderer.
func (h *Handler) SetRenderer(r render.Renderer) {
	if r != nil {
		h.renderer = r
	}
}

// SetPublisher wires the invocation event publisher.
func (h *Handler) SetPublisher(p event.Publisher) {
	if p != nil {
		h.publisher = p
	}
}

// SetMetrics wires optional engine metrics.
func (h *Handler) SetMetrics(m *metrics.Metrics) {
	h.metrics = m
}

// SetMountPath sets the URL prefix mock services are served under.
func (h *Handler) SetMountPath(mount string) {
	if mount != "" {
		h.mountPath = mount
	}
}

// SetCORSPolicy toggles preflight handling for unmatched OPTIONS requests.
func (h *Handler) SetCORSPolicy(enabled bool) {
	h.enableCORSPolicy = enabled
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
	bodyBytes, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.log.Warn("request body too large", "path", r.URL.Path, "limit", int64(MaxRequestBodySize))
			http.Error(w, "Request body exceeds maximum allowed size", http.StatusRequestEntityTooLarge)
			return
		}
		h.log.Warn("failed to read request body", "path", r.URL.Path, "error", err)
	}
	body := string(bodyBytes)

	path, ok := splitMockPath(h.mountPath, r.URL.EscapedPath())
	if !ok {
		h.finishUnmatched(w, r)
		return
	}

	h.log.Info("servicing mock response",
		"service", path.serviceName,
		"version", path.version,
		"uri", r.URL.RequestURI(),
		"verb", r.Method,
	)

	service, err := h.services.FindByNameAndVersion(path.serviceName, path.version)
	if err != nil {
		h.log.Error("service store lookup failed", "service", path.serviceName, "error", err)
		http.Error(w, "mock store unavailable", http.StatusInternalServerError)
		return
	}
	if service == nil {
		h.finishUnmatched(w, r)
		return
	}

	operation := resolveOperation(service, r.Method, path.resourcePath)
	if operation == nil {
		h.finishUnmatched(w, r)
		return
	}
	h.log.Debug("found a valid operation", "operation", operation.Name, "rules", operation.DispatcherRules)

	if violation := validateParameterConstraints(operation, r); violation != "" {
		http.Error(w, violation+". Check parameter constraints.", http.StatusBadRequest)
		return
	}

	// The resource path stays encoded for operation matching and is
	// decoded only now, for criteria extraction and rendering.
	decodedPath, err := url.PathUnescape(path.resourcePath)
	if err != nil {
		decodedPath = path.resourcePath
	}

	criteria, hasCriteria := h.computer.Compute(operation, operation.URIPattern(), decodedPath, r, body)
	if !hasCriteria && operation.Dispatcher != virt.DispatchNone && h.metrics != nil {
		h.metrics.RecordDispatchFailure(operation.Dispatcher)
	}
	h.log.Debug("dispatch criteria for finding response", "criteria", criteria)

	response, err := selectResponse(h.responses, virt.BuildOperationID(service, operation), criteria, hasCriteria, r)
	if err != nil {
		h.log.Error("response store lookup failed", "operation", operation.Name, "error", err)
		http.Error(w, "mock store unavailable", http.StatusInternalServerError)
		return
	}
	if response == nil {
		h.log.Debug("no response found for operation", "operation", operation.Name)
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	h.writeMockResponse(w, r, path, operation, response, body, decodedPath, start)

	h.publisher.Publish(event.NewInvocation(service, response, responseStatus(response), start))
}

// writeMockResponse materializes the selected response: status, stored
// headers (with Location rewriting), recopied constraint headers,
// rendered content and artificial delay.
func (h *Handler) writeMockResponse(w http.ResponseWriter, r *http.Request, path mockPath, operation *virt.Operation, response *virt.Response, body, decodedPath string, start time.Time) {
	header := w.Header()
	if response.MediaType != "" {
		header.Set("Content-Type", response.MediaType+";charset=UTF-8")
	}

	for _, stored := range response.Headers {
		switch {
		case stored.Name == "Location" && len(stored.Values) > 0:
			// Stored fixtures use relative locations; rebuild an
			// absolute URL from the client's perspective.
			location := requestScheme(r) + "://" + r.Host + h.mountPath + path.serviceAndVersion() + stored.Values[0]
			header.Add("Location", location)
		case strings.EqualFold(stored.Name, "Transfer-Encoding"):
			// Never propagate framing headers from fixtures.
		default:
			for _, value := range stored.Values {
				header.Add(stored.Name, value)
			}
		}
	}

	// Recopied request headers win over stored ones.
	recopyHeadersFromConstraints(operation, r, header)

	content := h.renderer.Render(body, decodedPath, r, response)

	delay := resolveDelay(r, operation)
	if !waitForDelay(r.Context(), start, delay) {
		// Client went away during the delay; abandon the response.
		h.log.Debug("client disconnected during mock delay", "operation", operation.Name)
		return
	}

	w.WriteHeader(responseStatus(response))
	if content != "" {
		_, _ = w.Write([]byte(content))
	}
}

// finishUnmatched terminates a request no operation answered: a CORS
// preflight when policy allows, a plain 404 otherwise.
func (h *Handler) finishUnmatched(w http.ResponseWriter, r *http.Request) {
	if h.enableCORSPolicy && r.Method == http.MethodOptions {
		h.log.Debug("no valid operation found, applying CORS policy", "uri", r.URL.RequestURI())
		writeCORSPreflight(w, r)
		return
	}
	h.log.Debug("no valid operation found", "uri", r.URL.RequestURI())
	w.WriteHeader(http.StatusNotFound)
}

// responseStatus parses the stored status string, defaulting to 200.
func responseStatus(response *virt.Response) int {
	if response.Status == "" {
		return http.StatusOK
	}
	status, err := strconv.Atoi(response.Status)
	if err != nil || status < 100 || status > 599 {
		return http.StatusOK
	}
	return status
}

// resolveDelay returns the artificial delay in milliseconds: the
// request's delay query parameter when present, otherwise the
// operation's default.
func resolveDelay(r *http.Request, operation *virt.Operation) int64 {
	if raw := r.URL.Query().Get("delay"); raw != "" {
		if delay, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return delay
		}
	}
	if operation.DefaultDelay != nil {
		return *operation.DefaultDelay
	}
	return 0
}

// waitForDelay suspends the current request until start+delay has
// elapsed. Only this request waits; returns false when the request
// context is cancelled first.
func waitForDelay(ctx context.Context, start time.Time, delayMs int64) bool {
	if delayMs <= 0 {
		return true
	}
	remaining := time.Until(start.Add(time.Duration(delayMs) * time.Millisecond))
	if remaining <= 0 {
		return true
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// requestScheme reports the scheme the client used.
func requestScheme(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-Proto"); forwarded != "" {
		return forwarded
	}
	if r.TLS != nil {
		return "https"
	}
	return "http"
}
